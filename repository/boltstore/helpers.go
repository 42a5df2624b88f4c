package boltstore

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	bolt "go.etcd.io/bbolt"
)

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func nextID(b *bolt.Bucket) (int64, error) {
	seq, err := b.NextSequence()
	if err != nil {
		return 0, err
	}
	return int64(seq), nil
}

func put(b *bolt.Bucket, key []byte, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put(key, payload)
}

// get decodes the value stored under key into dest. It reports false when
// the key is absent.
func get(b *bolt.Bucket, key []byte, dest interface{}) (bool, error) {
	raw := b.Get(key)
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func submissionKey(taskID int64, userID string) []byte {
	return []byte(strconv.FormatInt(taskID, 10) + "/" + userID)
}

func unmarshal(raw []byte, dest interface{}) error {
	return json.Unmarshal(raw, dest)
}
