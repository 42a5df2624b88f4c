package domain

import (
	"math"
	"strings"
	"time"
)

// User represents a registered member of the platform. TotalXP is the running
// XP ledger; it only grows through an approved submission.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TotalXP      int64     `json:"total_xp"`
	OrgID        *int64    `json:"org_id,omitempty"`
	RoleID       *int64    `json:"role_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserIDFromUsername derives the stable identity key for a username.
func UserIDFromUsername(username string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(username)), " ", "_")
}

// IsMemberOf reports whether the user currently belongs to orgID.
func (u *User) IsMemberOf(orgID int64) bool {
	return u != nil && u.OrgID != nil && *u.OrgID == orgID
}

// ClearMembership drops both organization and role, which always leave together.
func (u *User) ClearMembership() {
	if u == nil {
		return
	}
	u.OrgID = nil
	u.RoleID = nil
}

// Level returns the derived tier for the user's XP.
func (u *User) Level() int64 {
	if u == nil {
		return 1
	}
	return Level(u.TotalXP)
}

// CreditXP returns total plus reward. The ledger never goes negative, so a
// credit that would overflow int64 is refused.
func CreditXP(total, reward int64) (int64, error) {
	if reward <= 0 {
		return total, Errorf(ErrCodeInvalid, "xp reward %d must be positive", reward)
	}
	if total < 0 || total > math.MaxInt64-reward {
		return total, ErrXPOverflow
	}
	return total + reward, nil
}
