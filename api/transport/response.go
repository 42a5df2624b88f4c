package transport

// Envelope wraps every API response. Error carries a human readable message
// and Code the domain error code, so clients branch on Code only.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta accompanies list payloads.
type ListMeta struct {
	Count int `json:"count"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: "success", Data: data, Meta: meta}
}

// NewList wraps a fully collected listing. A nil slice is sent as [] so
// clients never see "data": null for an empty queue.
func NewList[T any](items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	return NewSuccess(items, ListMeta{Count: len(items)})
}

func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{Status: "error", Code: code, Error: message, Meta: meta}
}
