package claim

import (
	"fmt"
	"time"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/google/uuid"
)

// BulkDenied rejects an entire batch because one item failed authorization.
// No item in the batch may be persisted when this is returned.
type BulkDenied struct {
	LogID  uuid.UUID
	Reason error
}

func (e *BulkDenied) Error() string {
	return fmt.Sprintf("log %s: %v", e.LogID, e.Reason)
}

func (e *BulkDenied) Unwrap() error {
	return e.Reason
}

// EvaluateBulk applies Evaluate to every log in input order. The first denial
// aborts the whole batch: one unauthorized item blocks everything rather than
// letting part of a multi-select silently succeed. On success the returned
// mutations are index-aligned with logs.
func EvaluateBulk(actor Actor, logs []*models.ErrorLog, target models.Status, now time.Time) ([]Mutation, error) {
	mutations := make([]Mutation, 0, len(logs))
	for _, log := range logs {
		m, err := Evaluate(actor, log, target, now)
		if err != nil {
			return nil, &BulkDenied{LogID: log.ID, Reason: err}
		}
		mutations = append(mutations, m)
	}
	return mutations, nil
}
