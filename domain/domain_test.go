package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestUserIDFromUsername(t *testing.T) {
	cases := map[string]string{
		"alice":        "alice",
		"Bob Smith":    "bob_smith",
		"  Carol  ":    "carol",
		"DAVE the 2nd": "dave_the_2nd",
	}
	for in, want := range cases {
		if got := UserIDFromUsername(in); got != want {
			t.Errorf("UserIDFromUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevel(t *testing.T) {
	cases := []struct {
		xp   int64
		want int64
	}{
		{0, 1}, {50, 1}, {99, 1}, {100, 2}, {199, 2}, {250, 3}, {-5, 1},
	}
	for _, tc := range cases {
		if got := Level(tc.xp); got != tc.want {
			t.Errorf("Level(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestRank(t *testing.T) {
	if Rank(0) != 1 || Rank(3) != 4 || Rank(-1) != 1 {
		t.Fatalf("unexpected rank values")
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, in := range []string{"Easy", "medium", "HARD"} {
		if _, err := ParseDifficulty(in); err != nil {
			t.Errorf("ParseDifficulty(%q) returned %v", in, err)
		}
	}
	_, err := ParseDifficulty("Legendary")
	if !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{Title: "Scout the ridge", XPReward: 50, Difficulty: DifficultyEasy}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []Task{
		{Title: "", XPReward: 50, Difficulty: DifficultyEasy},
		{Title: "t", XPReward: 0, Difficulty: DifficultyEasy},
		{Title: "t", XPReward: -3, Difficulty: DifficultyEasy},
		{Title: "t", XPReward: 10, Difficulty: "Impossible"},
		{Title: "t", XPReward: MaxXPReward + 1, Difficulty: DifficultyEasy},
		{Title: "t", XPReward: math.MaxInt64, Difficulty: DifficultyEasy},
	}
	for i, tc := range cases {
		if err := tc.Validate(); !IsDomainError(err, ErrCodeInvalid) {
			t.Errorf("case %d: expected INVALID, got %v", i, err)
		}
	}
}

func TestCreditXP(t *testing.T) {
	total, err := CreditXP(40, 60)
	if err != nil || total != 100 {
		t.Fatalf("expected 100, got %d err=%v", total, err)
	}
	total, err = CreditXP(math.MaxInt64-MaxXPReward, MaxXPReward)
	if err != nil || total != math.MaxInt64 {
		t.Fatalf("credit up to the int64 limit should succeed, got %d err=%v", total, err)
	}

	if total, err := CreditXP(math.MaxInt64-5, 6); !errors.Is(err, ErrXPOverflow) || total != math.MaxInt64-5 {
		t.Fatalf("expected overflow refusal with total unchanged, got %d err=%v", total, err)
	}
	if _, err := CreditXP(-1, 1); !errors.Is(err, ErrXPOverflow) {
		t.Fatalf("negative ledger must be refused, got %v", err)
	}
	if _, err := CreditXP(10, 0); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for zero reward, got %v", err)
	}
}

func TestSubmissionTransition(t *testing.T) {
	now := time.Now()
	sub := &Submission{Status: SubmissionPending}

	if err := sub.Transition(DecisionApprove, "nice", now); err != nil {
		t.Fatalf("expected valid transition, got %v", err)
	}
	if sub.Status != SubmissionApproved || sub.Feedback != "nice" || sub.ReviewedAt == nil {
		t.Fatalf("unexpected submission state: %+v", sub)
	}

	// Terminal states never move again.
	err := sub.Transition(DecisionReject, "", now)
	if !errors.Is(err, ErrSubmissionNotPending) {
		t.Fatalf("expected ErrSubmissionNotPending, got %v", err)
	}
	if sub.Status != SubmissionApproved {
		t.Fatalf("status changed after terminal: %s", sub.Status)
	}
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("approve")
	if err != nil || d != DecisionApprove || d.Outcome() != SubmissionApproved {
		t.Fatalf("unexpected approve parse: %v %v", d, err)
	}
	d, err = ParseDecision("REJECT")
	if err != nil || d.Outcome() != SubmissionRejected {
		t.Fatalf("unexpected reject parse: %v %v", d, err)
	}
	if _, err := ParseDecision("maybe"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

func TestErrorIsSurvivesWrapping(t *testing.T) {
	wrapped := WrapError(ErrCodeInternal, "review failed", ErrSubmissionNotPending)
	if !errors.Is(wrapped, ErrSubmissionNotPending) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if !IsDomainError(ErrDuplicateSubmission, ErrCodeDuplicateSubmission) {
		t.Fatalf("expected duplicate submission code")
	}
}
