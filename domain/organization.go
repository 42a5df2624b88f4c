package domain

import "time"

// Organization is a team that posts tasks and owns roles.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (o *Organization) IsOwner(userID string) bool {
	return o != nil && userID != "" && o.OwnerID == userID
}

// OrgStats summarises the review queue of an organization.
type OrgStats struct {
	OrgID              int64 `json:"org_id"`
	ActiveTasks        int   `json:"active_tasks"`
	PendingSubmissions int   `json:"pending_submissions"`
}

// Role is an org-scoped permission bundle.
type Role struct {
	ID            int64     `json:"id"`
	OrgID         int64     `json:"org_id"`
	Name          string    `json:"name"`
	Rank          int       `json:"rank"`
	CanCreateTask bool      `json:"can_create_task"`
	CreatedAt     time.Time `json:"created_at"`
}

// BelongsTo reports whether the role is scoped to orgID.
func (r *Role) BelongsTo(orgID int64) bool {
	return r != nil && r.OrgID == orgID
}
