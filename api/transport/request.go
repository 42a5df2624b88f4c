package transport

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

type OrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// OrganizationUpdateRequest leaves absent fields untouched.
type OrganizationUpdateRequest struct {
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

type RoleRequest struct {
	Name          string `json:"name"`
	Rank          int    `json:"rank"`
	CanCreateTask bool   `json:"can_create_task"`
}

// AssignRoleRequest clears the member's role when RoleID is null.
type AssignRoleRequest struct {
	UserID string `json:"user_id"`
	RoleID *int64 `json:"role_id"`
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	XPReward    int64  `json:"xp_reward"`
	Difficulty  string `json:"difficulty"`
	// Deadline is a calendar date, YYYY-MM-DD.
	Deadline string `json:"deadline"`
}

type SubmissionRequest struct {
	ProofLink string `json:"proof_link"`
}

type ReviewRequest struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback"`
}
