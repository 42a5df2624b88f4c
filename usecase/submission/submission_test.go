package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/testutil"
	"github.com/fastygo/urquest/repository"
	redisrepo "github.com/fastygo/urquest/repository/redis"
	"github.com/fastygo/urquest/usecase/access"
	"github.com/fastygo/urquest/usecase/auth"
	"github.com/fastygo/urquest/usecase/org"
	"github.com/fastygo/urquest/usecase/profile"
	"github.com/fastygo/urquest/usecase/task"
)

type fixture struct {
	store       *repository.Store
	leaderboard repository.LeaderboardCache
	redis       *redislib.Client
	uc          *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := testutil.NewStore(t)
	cache := redisrepo.NewLeaderboardCache(client, time.Minute)
	eval := access.NewEvaluator(store.Users, store.Organizations, store.Roles)
	return &fixture{
		store:       store,
		leaderboard: cache,
		redis:       client,
		uc:          New(store.Tasks, store.Users, store.Submissions, cache, eval, zaptest.NewLogger(t)),
	}
}

func (f *fixture) xp(t *testing.T, userID string) int64 {
	t.Helper()
	user, err := f.store.Users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get user %s: %v", userID, err)
	}
	return user.TotalXP
}

// The full register → organize → post → submit → review flow.
func TestScenario_ScoutTheRidge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	logger := zaptest.NewLogger(t)
	eval := access.NewEvaluator(f.store.Users, f.store.Organizations, f.store.Roles)

	authUC := auth.New(f.store.Users, f.store.Organizations, redisrepo.NewSessionRepository(f.redis, time.Hour),
		auth.NewTokenManager("secret", "urquest"), time.Hour, logger, auth.WithHashCost(bcrypt.MinCost))
	orgUC := org.New(f.store.Users, f.store.Organizations, f.store.Roles, eval, logger)
	taskUC := task.New(f.store.Tasks, eval, logger)
	profileUC := profile.New(f.store.Users, f.store.Submissions, f.leaderboard, logger)

	alice, err := authUC.Register(ctx, "alice", "password1")
	if err != nil || alice.ID != "alice" {
		t.Fatalf("register alice: %+v %v", alice, err)
	}
	order, err := orgUC.CreateOrganization(ctx, alice.ID, "Order", "", "")
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	scout, err := taskUC.CreateTask(ctx, alice.ID, &domain.Task{
		OrgID: order.ID, Title: "Scout the ridge", XPReward: 50, Difficulty: domain.DifficultyEasy,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	bob, err := authUC.Register(ctx, "bob", "password2")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if err := orgUC.Join(ctx, bob.ID, order.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	sub, err := f.uc.Submit(ctx, scout.ID, bob.ID, "photo1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != domain.SubmissionPending {
		t.Fatalf("expected pending, got %s", sub.Status)
	}

	var pending []domain.ReviewItem
	for item, err := range f.uc.ListPendingForOrg(ctx, order.ID) {
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		pending = append(pending, item)
	}
	if len(pending) != 1 || pending[0].SubmitterName != "bob" || pending[0].ProofRef != "photo1" || pending[0].XPReward != 50 {
		t.Fatalf("unexpected pending queue %+v", pending)
	}

	approved, err := f.uc.ReviewAs(ctx, alice.ID, sub.ID, domain.DecisionApprove, "nice")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.SubmissionApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	bobProfile, err := profileUC.Profile(ctx, bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if bobProfile.TotalXP != 50 || bobProfile.Level != 1 || bobProfile.Rank != 1 {
		t.Fatalf("unexpected profile %+v", bobProfile)
	}

	if _, err := f.uc.Submit(ctx, scout.ID, bob.ID, "photo2"); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}
	if _, err := f.uc.ReviewAs(ctx, alice.ID, sub.ID, domain.DecisionApprove, ""); !errors.Is(err, domain.ErrSubmissionNotPending) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if got := f.xp(t, bob.ID); got != 50 {
		t.Fatalf("expected xp to stay 50, got %d", got)
	}
}

func TestSubmit_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "bob")
	o := testutil.Org(t, f.store, "alice", "Acme")
	tk := testutil.Task(t, f.store, o.ID, "Task", 10)

	if _, err := f.uc.Submit(ctx, tk.ID+99, "bob", "proof"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected task not found, got %v", err)
	}
	if _, err := f.uc.Submit(ctx, tk.ID, "ghost", "proof"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := f.uc.Submit(ctx, tk.ID, "bob", "   "); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReview_RejectKeepsXP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "bob")
	o := testutil.Org(t, f.store, "alice", "Acme")
	tk := testutil.Task(t, f.store, o.ID, "Task", 10)

	sub, err := f.uc.Submit(ctx, tk.ID, "bob", "proof")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected, err := f.uc.Review(ctx, sub.ID, domain.DecisionReject, " blurry ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.SubmissionRejected || rejected.Feedback != "blurry" || rejected.ReviewedAt == nil {
		t.Fatalf("unexpected submission %+v", rejected)
	}
	if got := f.xp(t, "bob"); got != 0 {
		t.Fatalf("reject changed xp to %d", got)
	}
	if _, err := f.uc.Review(ctx, sub.ID, domain.DecisionApprove, ""); !errors.Is(err, domain.ErrSubmissionNotPending) {
		t.Fatalf("expected terminal submission, got %v", err)
	}
	if got := f.xp(t, "bob"); got != 0 {
		t.Fatalf("approve after reject credited %d", got)
	}
	if _, err := f.uc.Review(ctx, 999, domain.DecisionApprove, ""); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.uc.Review(ctx, sub.ID, domain.Decision("MAYBE"), ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid decision, got %v", err)
	}
}

func TestReview_ConcurrentApproveCreditsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "bob")
	o := testutil.Org(t, f.store, "alice", "Acme")
	tk := testutil.Task(t, f.store, o.ID, "Task", 75)
	sub, err := f.uc.Submit(ctx, tk.ID, "bob", "proof")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Review(ctx, sub.ID, domain.DecisionApprove, "")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrSubmissionNotPending) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one approval, got %d", succeeded)
	}
	if got := f.xp(t, "bob"); got != 75 {
		t.Fatalf("expected 75 xp, got %d", got)
	}
}

func TestSubmit_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "bob")
	o := testutil.Org(t, f.store, "alice", "Acme")
	tk := testutil.Task(t, f.store, o.ID, "Task", 10)

	const workers = 6
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Submit(ctx, tk.ID, "bob", "proof")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateSubmission):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d/%d", workers-1, ok, dup)
	}
}

func TestReviewAs_RequiresStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "lead")
	testutil.User(t, f.store, "bob")
	testutil.User(t, f.store, "carol")
	acme := testutil.Org(t, f.store, "alice", "Acme")
	testutil.Org(t, f.store, "carol", "Globex")
	for _, id := range []string{"lead", "bob"} {
		if err := f.store.Users.Join(ctx, id, acme.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	testutil.Role(t, f.store, acme.ID, "Lead", true, "lead")
	tk := testutil.Task(t, f.store, acme.ID, "Task", 20)

	sub, err := f.uc.Submit(ctx, tk.ID, "bob", "proof")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	for _, actor := range []string{"bob", "carol"} {
		if _, err := f.uc.ReviewAs(ctx, actor, sub.ID, domain.DecisionApprove, ""); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", actor, err)
		}
		if _, err := f.uc.ListPendingFor(ctx, actor, acme.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden listing, got %v", actor, err)
		}
	}
	if got := f.xp(t, "bob"); got != 0 {
		t.Fatalf("forbidden review changed xp to %d", got)
	}

	seq, err := f.uc.ListPendingFor(ctx, "lead", acme.ID)
	if err != nil {
		t.Fatalf("staff listing: %v", err)
	}
	count := 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("expected one pending item, got %d", count)
	}

	if _, err := f.uc.ReviewAs(ctx, "lead", sub.ID, domain.DecisionApprove, ""); err != nil {
		t.Fatalf("staff approve: %v", err)
	}
	if got := f.xp(t, "bob"); got != 20 {
		t.Fatalf("expected 20 xp, got %d", got)
	}
}

func TestReview_ApprovalInvalidatesLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.User(t, f.store, "alice")
	testutil.User(t, f.store, "bob")
	o := testutil.Org(t, f.store, "alice", "Acme")
	tk := testutil.Task(t, f.store, o.ID, "Task", 10)
	other := testutil.Task(t, f.store, o.ID, "Other", 10)

	epoch, err := f.leaderboard.Epoch(ctx)
	if err != nil {
		t.Fatalf("epoch: %v", err)
	}
	if _, err := f.leaderboard.Set(ctx, epoch, []domain.LeaderboardEntry{{Position: 1, UserID: "alice"}}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	rejected, _ := f.uc.Submit(ctx, other.ID, "bob", "proof")
	if _, err := f.uc.Review(ctx, rejected.ID, domain.DecisionReject, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, ok, _ := f.leaderboard.Get(ctx); !ok {
		t.Fatal("rejection must not invalidate the leaderboard")
	}

	sub, _ := f.uc.Submit(ctx, tk.ID, "bob", "proof")
	if _, err := f.uc.Review(ctx, sub.ID, domain.DecisionApprove, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, ok, _ := f.leaderboard.Get(ctx); ok {
		t.Fatal("approval must invalidate the leaderboard")
	}
}
