package claim

import (
	"errors"
	"testing"
	"time"

	"github.com/eris-monitor/backend/internal/models"
)

func TestEvaluateBulkAllAllowed(t *testing.T) {
	logs := []*models.ErrorLog{openLog(), openLog(), inProgressLog(alice)}
	mutations, err := EvaluateBulk(alice, logs, models.StatusResolved, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mutations) != len(logs) {
		t.Fatalf("got %d mutations, want %d", len(mutations), len(logs))
	}
	for i, m := range mutations {
		if m.Status != models.StatusResolved {
			t.Errorf("mutation %d status = %s, want resolved", i, m.Status)
		}
		if m.ResolvedBy == nil || *m.ResolvedBy != alice.ID {
			t.Errorf("mutation %d resolved_by = %v, want %s", i, m.ResolvedBy, alice.ID)
		}
	}
	// The previously claimed log keeps its provenance, the fresh ones have none.
	if mutations[2].InProgressBy == nil {
		t.Error("mutation 2 lost its in_progress provenance")
	}
	if mutations[0].InProgressBy != nil {
		t.Error("mutation 0 gained provenance from nowhere")
	}
}

func TestEvaluateBulkFirstDenialAborts(t *testing.T) {
	blocked := inProgressLog(bob)
	alsoBlocked := inProgressLog(bob)
	logs := []*models.ErrorLog{openLog(), blocked, alsoBlocked}

	mutations, err := EvaluateBulk(alice, logs, models.StatusResolved, time.Now())
	if mutations != nil {
		t.Errorf("mutations = %v, want nil on denial", mutations)
	}

	var denied *BulkDenied
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want BulkDenied", err)
	}
	if denied.LogID != blocked.ID {
		t.Errorf("denied log = %s, want first failing %s", denied.LogID, blocked.ID)
	}

	var claimed *ClaimedByOtherError
	if !errors.As(err, &claimed) {
		t.Fatalf("reason = %v, want ClaimedByOtherError", denied.Reason)
	}
	if claimed.ClaimantID != bob.ID {
		t.Errorf("claimant = %s, want %s", claimed.ClaimantID, bob.ID)
	}
}

func TestEvaluateBulkEmpty(t *testing.T) {
	mutations, err := EvaluateBulk(alice, nil, models.StatusOpen, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mutations) != 0 {
		t.Errorf("got %d mutations, want 0", len(mutations))
	}
}
