package domain

// XPPerLevel is the XP span of one level.
const XPPerLevel = 100

// MaxXPReward bounds the reward of a single task.
const MaxXPReward = 1_000_000

// LeaderboardSize caps the leaderboard listing.
const LeaderboardSize = 10

// Level returns 1 + floor(xp/100). Negative input is treated as zero.
func Level(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/XPPerLevel
}

// Rank is one plus the number of users holding strictly more XP.
func Rank(strictlyAbove int) int {
	if strictlyAbove < 0 {
		strictlyAbove = 0
	}
	return strictlyAbove + 1
}

// Profile is the read model behind the profile page.
type Profile struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	TotalXP  int64          `json:"total_xp"`
	Level    int64          `json:"level"`
	Rank     int            `json:"rank"`
	OrgID    *int64         `json:"org_id,omitempty"`
	History  []HistoryEntry `json:"history"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	Position int    `json:"position"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	TotalXP  int64  `json:"total_xp"`
	Level    int64  `json:"level"`
}
