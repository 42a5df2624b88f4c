package domain

import (
	"strings"
	"time"
)

// Difficulty grades a task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts the canonical spelling in any letter case.
func ParseDifficulty(value string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", Errorf(ErrCodeInvalid, "difficulty %q must be one of Easy, Medium, Hard", value)
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task. Only OPEN exists today.
type TaskStatus string

const TaskOpen TaskStatus = "OPEN"

// Task is a unit of work posted by an organization.
type Task struct {
	ID          int64      `json:"id"`
	OrgID       int64      `json:"org_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	XPReward    int64      `json:"xp_reward"`
	Difficulty  Difficulty `json:"difficulty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t *Task) IsOpen() bool {
	return t != nil && t.Status == TaskOpen
}

// Validate checks what a task must satisfy before it is stored.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if t.XPReward <= 0 {
		return NewError(ErrCodeInvalid, "xp_reward must be positive")
	}
	if t.XPReward > MaxXPReward {
		return Errorf(ErrCodeInvalid, "xp_reward must not exceed %d", MaxXPReward)
	}
	if !t.Difficulty.Valid() {
		return Errorf(ErrCodeInvalid, "difficulty %q must be one of Easy, Medium, Hard", t.Difficulty)
	}
	return nil
}

// TaskSummary is an open task annotated with its organization's name.
type TaskSummary struct {
	Task
	OrgName string `json:"org_name"`
}
