package domain

import (
	"strings"
	"time"
)

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Decision is a reviewer's verdict.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// ParseDecision accepts APPROVE or REJECT in any letter case.
func ParseDecision(value string) (Decision, error) {
	switch Decision(strings.ToUpper(strings.TrimSpace(value))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", Errorf(ErrCodeInvalid, "decision %q must be APPROVE or REJECT", value)
}

// Outcome maps a decision to the terminal status it produces.
func (d Decision) Outcome() SubmissionStatus {
	if d == DecisionApprove {
		return SubmissionApproved
	}
	return SubmissionRejected
}

// Submission is a member's claim that a task is done.
type Submission struct {
	ID         int64            `json:"id"`
	TaskID     int64            `json:"task_id"`
	UserID     string           `json:"user_id"`
	ProofRef   string           `json:"proof_ref"`
	Status     SubmissionStatus `json:"status"`
	Feedback   string           `json:"feedback,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`
}

// Transition moves a pending submission into the terminal state for decision.
func (s *Submission) Transition(decision Decision, feedback string, at time.Time) error {
	if s == nil {
		return ErrSubmissionNotFound
	}
	if s.Status != SubmissionPending {
		return ErrSubmissionNotPending
	}
	s.Status = decision.Outcome()
	s.Feedback = feedback
	s.ReviewedAt = &at
	return nil
}

// ReviewItem is a pending submission joined with the data a reviewer needs.
type ReviewItem struct {
	SubmissionID  int64     `json:"submission_id"`
	TaskID        int64     `json:"task_id"`
	TaskTitle     string    `json:"task_title"`
	XPReward      int64     `json:"xp_reward"`
	SubmitterID   string    `json:"submitter_id"`
	SubmitterName string    `json:"submitter_name"`
	ProofRef      string    `json:"proof_ref"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// HistoryEntry is one of a user's own submissions as shown on their profile.
type HistoryEntry struct {
	SubmissionID int64            `json:"submission_id"`
	TaskID       int64            `json:"task_id"`
	TaskTitle    string           `json:"title"`
	Status       SubmissionStatus `json:"status"`
	Feedback     string           `json:"feedback,omitempty"`
	XPReward     int64            `json:"xp_reward"`
}
