package access

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/testutil"
)

func TestCanCreateTask(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	eval := NewEvaluator(store.Users, store.Organizations, store.Roles)

	owner := testutil.User(t, store, "owner")
	staff := testutil.User(t, store, "staff")
	member := testutil.User(t, store, "member")
	viewer := testutil.User(t, store, "viewer")
	outsider := testutil.User(t, store, "outsider")
	org := testutil.Org(t, store, owner.ID, "Acme")

	for _, id := range []string{staff.ID, member.ID, viewer.ID} {
		if err := store.Users.Join(ctx, id, org.ID); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	testutil.Role(t, store, org.ID, "Lead", true, staff.ID)
	testutil.Role(t, store, org.ID, "Viewer", false, viewer.ID)

	cases := []struct {
		user string
		want bool
	}{
		{owner.ID, true},
		{staff.ID, true},
		{member.ID, false},
		{viewer.ID, false},
		{outsider.ID, false},
	}
	for _, tc := range cases {
		got, err := eval.CanCreateTask(ctx, tc.user, org.ID)
		if err != nil {
			t.Fatalf("%s: %v", tc.user, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.user, tc.want, got)
		}
		review, err := eval.CanReview(ctx, tc.user, org.ID)
		if err != nil || review != tc.want {
			t.Fatalf("%s: CanReview = %v, %v", tc.user, review, err)
		}
	}
}

func TestCanCreateTask_RoleFromOtherOrgGrantsNothing(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	eval := NewEvaluator(store.Users, store.Organizations, store.Roles)

	alpha := testutil.User(t, store, "alpha")
	beta := testutil.User(t, store, "beta")
	lead := testutil.User(t, store, "lead")
	orgA := testutil.Org(t, store, alpha.ID, "A")
	orgB := testutil.Org(t, store, beta.ID, "B")

	if err := store.Users.Join(ctx, lead.ID, orgA.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	testutil.Role(t, store, orgA.ID, "Lead", true, lead.ID)

	ok, err := eval.CanCreateTask(ctx, lead.ID, orgB.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("role of org A must not grant rights in org B")
	}
}

func TestCanCreateTask_NotFound(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	eval := NewEvaluator(store.Users, store.Organizations, store.Roles)
	owner := testutil.User(t, store, "owner")
	org := testutil.Org(t, store, owner.ID, "Acme")

	if _, err := eval.CanCreateTask(ctx, owner.ID, org.ID+100); !errors.Is(err, domain.ErrOrganizationNotFound) {
		t.Fatalf("expected org not found, got %v", err)
	}
	if _, err := eval.CanCreateTask(ctx, "ghost", org.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	eval := NewEvaluator(store.Users, store.Organizations, store.Roles)
	owner := testutil.User(t, store, "owner")
	other := testutil.User(t, store, "other")
	org := testutil.Org(t, store, owner.ID, "Acme")

	if _, err := eval.RequireOwner(ctx, owner.ID, org.ID); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	if _, err := eval.RequireOwner(ctx, other.ID, org.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
