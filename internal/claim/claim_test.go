package claim

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eris-monitor/backend/internal/models"
)

var (
	alice = Actor{ID: uuid.New(), Role: models.RoleDeveloper}
	bob   = Actor{ID: uuid.New(), Role: models.RoleDeveloper}
	admin = Actor{ID: uuid.New(), Role: models.RoleAdmin}
)

func openLog() *models.ErrorLog {
	return &models.ErrorLog{ID: uuid.New(), Status: models.StatusOpen}
}

func inProgressLog(by Actor) *models.ErrorLog {
	at := time.Now().Add(-time.Hour)
	return &models.ErrorLog{
		ID:           uuid.New(),
		Status:       models.StatusInProgress,
		InProgressBy: &by.ID,
		InProgressAt: &at,
	}
}

func resolvedLog(workedBy, resolvedBy Actor) *models.ErrorLog {
	workedAt := time.Now().Add(-2 * time.Hour)
	resolvedAt := time.Now().Add(-time.Hour)
	return &models.ErrorLog{
		ID:           uuid.New(),
		Status:       models.StatusResolved,
		InProgressBy: &workedBy.ID,
		InProgressAt: &workedAt,
		ResolvedBy:   &resolvedBy.ID,
		ResolvedAt:   &resolvedAt,
	}
}

func TestEvaluateClaimOpenLog(t *testing.T) {
	now := time.Now()
	m, err := Evaluate(alice, openLog(), models.StatusInProgress, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in_progress", m.Status)
	}
	if m.InProgressBy == nil || *m.InProgressBy != alice.ID {
		t.Errorf("in_progress_by = %v, want %s", m.InProgressBy, alice.ID)
	}
	if m.InProgressAt == nil || !m.InProgressAt.Equal(now) {
		t.Errorf("in_progress_at = %v, want %s", m.InProgressAt, now)
	}
	if m.ResolvedBy != nil || m.ResolvedAt != nil {
		t.Errorf("resolved fields must be nil, got %v/%v", m.ResolvedBy, m.ResolvedAt)
	}
}

func TestEvaluateDeniesClaimedByOther(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		log    *models.ErrorLog
		target models.Status
	}{
		{"dev claims other's in_progress", bob, inProgressLog(alice), models.StatusInProgress},
		{"dev resolves other's in_progress", bob, inProgressLog(alice), models.StatusResolved},
		{"dev reopens other's in_progress", bob, inProgressLog(alice), models.StatusOpen},
		{"admin claims other's in_progress", admin, inProgressLog(alice), models.StatusInProgress},
		{"admin resolves other's in_progress", admin, inProgressLog(alice), models.StatusResolved},
		{"dev re-resolves other's resolved", bob, resolvedLog(alice, alice), models.StatusResolved},
		{"dev reworks other's resolved", bob, resolvedLog(alice, alice), models.StatusInProgress},
		{"admin resolves other's resolved", admin, resolvedLog(alice, alice), models.StatusResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.actor, tt.log, tt.target, time.Now())
			var denied *ClaimedByOtherError
			if !errors.As(err, &denied) {
				t.Fatalf("err = %v, want ClaimedByOtherError", err)
			}
			want := tt.log.ActiveClaimant()
			if denied.ClaimantID != *want {
				t.Errorf("claimant = %s, want %s", denied.ClaimantID, *want)
			}
		})
	}
}

func TestEvaluateOwnerOperations(t *testing.T) {
	now := time.Now()

	t.Run("resolve own claim keeps provenance", func(t *testing.T) {
		log := inProgressLog(alice)
		m, err := Evaluate(alice, log, models.StatusResolved, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Status != models.StatusResolved {
			t.Errorf("status = %s, want resolved", m.Status)
		}
		if m.ResolvedBy == nil || *m.ResolvedBy != alice.ID {
			t.Errorf("resolved_by = %v, want %s", m.ResolvedBy, alice.ID)
		}
		if m.InProgressBy == nil || *m.InProgressBy != alice.ID {
			t.Errorf("in_progress_by = %v, want retained %s", m.InProgressBy, alice.ID)
		}
		if m.InProgressAt == nil || !m.InProgressAt.Equal(*log.InProgressAt) {
			t.Errorf("in_progress_at = %v, want original %v", m.InProgressAt, log.InProgressAt)
		}
	})

	t.Run("reopen own claim clears everything", func(t *testing.T) {
		m, err := Evaluate(alice, inProgressLog(alice), models.StatusOpen, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Status != models.StatusOpen {
			t.Errorf("status = %s, want open", m.Status)
		}
		if m.InProgressBy != nil || m.InProgressAt != nil || m.ResolvedBy != nil || m.ResolvedAt != nil {
			t.Errorf("claim fields must all clear on open, got %+v", m)
		}
	})

	t.Run("rework own resolved clears resolution", func(t *testing.T) {
		m, err := Evaluate(alice, resolvedLog(alice, alice), models.StatusInProgress, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Status != models.StatusInProgress {
			t.Errorf("status = %s, want in_progress", m.Status)
		}
		if m.ResolvedBy != nil || m.ResolvedAt != nil {
			t.Errorf("resolved fields must clear on rework, got %v/%v", m.ResolvedBy, m.ResolvedAt)
		}
		if m.InProgressBy == nil || *m.InProgressBy != alice.ID {
			t.Errorf("in_progress_by = %v, want %s", m.InProgressBy, alice.ID)
		}
	})

	t.Run("reopen own resolved", func(t *testing.T) {
		if _, err := Evaluate(alice, resolvedLog(alice, alice), models.StatusOpen, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("resolve directly from open", func(t *testing.T) {
		m, err := Evaluate(alice, openLog(), models.StatusResolved, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ResolvedBy == nil || *m.ResolvedBy != alice.ID {
			t.Errorf("resolved_by = %v, want %s", m.ResolvedBy, alice.ID)
		}
		if m.InProgressBy != nil {
			t.Errorf("in_progress_by = %v, want nil without prior claim", m.InProgressBy)
		}
	})
}

func TestEvaluateAdminForceRelease(t *testing.T) {
	now := time.Now()
	for _, log := range []*models.ErrorLog{inProgressLog(alice), resolvedLog(alice, alice)} {
		m, err := Evaluate(admin, log, models.StatusOpen, now)
		if err != nil {
			t.Fatalf("force release from %s: %v", log.Status, err)
		}
		if m.Status != models.StatusOpen {
			t.Errorf("status = %s, want open", m.Status)
		}
		if m.InProgressBy != nil || m.ResolvedBy != nil {
			t.Errorf("claims must clear on force release, got %+v", m)
		}
	}
}

// A log already open and unclaimed can always be "moved" to open again, for
// any role. The no-op keeps bulk multi-selects from failing on rows that are
// already where the caller wants them.
func TestEvaluateReopenAlreadyOpen(t *testing.T) {
	now := time.Now()
	for _, actor := range []Actor{alice, admin} {
		m, err := Evaluate(actor, openLog(), models.StatusOpen, now)
		if err != nil {
			t.Fatalf("%s reopening open log: %v", actor.Role, err)
		}
		if m.Status != models.StatusOpen {
			t.Errorf("%s: status = %s, want open", actor.Role, m.Status)
		}
		if m.InProgressBy != nil || m.InProgressAt != nil || m.ResolvedBy != nil || m.ResolvedAt != nil {
			t.Errorf("%s: claim fields must stay nil, got %+v", actor.Role, m)
		}
	}
}

// An in_progress log whose claimant column was nulled (the claimant's account
// was deleted) must still be recoverable: admin force release works, while
// every other transition reports the corrupt record.
func TestEvaluateOrphanedClaim(t *testing.T) {
	now := time.Now()
	orphaned := func() *models.ErrorLog {
		return &models.ErrorLog{ID: uuid.New(), Status: models.StatusInProgress}
	}

	t.Run("admin force release succeeds", func(t *testing.T) {
		m, err := Evaluate(admin, orphaned(), models.StatusOpen, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Status != models.StatusOpen {
			t.Errorf("status = %s, want open", m.Status)
		}
		if m.InProgressBy != nil || m.ResolvedBy != nil {
			t.Errorf("claim fields must clear, got %+v", m)
		}
	})

	t.Run("developer reopen reports invariant violation", func(t *testing.T) {
		log := orphaned()
		_, err := Evaluate(alice, log, models.StatusOpen, now)
		var inv *InvariantError
		if !errors.As(err, &inv) {
			t.Fatalf("err = %v, want InvariantError", err)
		}
		if inv.LogID != log.ID {
			t.Errorf("log id = %s, want %s", inv.LogID, log.ID)
		}
	})

	t.Run("admin resolve reports invariant violation", func(t *testing.T) {
		_, err := Evaluate(admin, orphaned(), models.StatusResolved, now)
		var inv *InvariantError
		if !errors.As(err, &inv) {
			t.Fatalf("err = %v, want InvariantError", err)
		}
	})
}

func TestEvaluateUnknownTarget(t *testing.T) {
	if _, err := Evaluate(alice, openLog(), models.Status("archived"), time.Now()); err == nil {
		t.Fatal("expected error for unknown target status")
	}
}

func TestCheckInvariant(t *testing.T) {
	tests := []struct {
		name string
		log  *models.ErrorLog
		ok   bool
	}{
		{"open unclaimed", openLog(), true},
		{"in_progress claimed", inProgressLog(alice), true},
		{"resolved with provenance", resolvedLog(alice, alice), true},
		{"open with stale claim", &models.ErrorLog{Status: models.StatusOpen, InProgressBy: &alice.ID}, false},
		{"in_progress without claimant", &models.ErrorLog{Status: models.StatusInProgress}, false},
		{"resolved without resolver", &models.ErrorLog{Status: models.StatusResolved, InProgressBy: &alice.ID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvariant(tt.log)
			if (err == nil) != tt.ok {
				t.Errorf("CheckInvariant() = %v, want ok=%t", err, tt.ok)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	if err := CanDelete(admin); err != nil {
		t.Errorf("admin: %v", err)
	}
	if err := CanDelete(alice); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("developer: err = %v, want ErrNotAdmin", err)
	}
}
