package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

// Guard is the duplicate-application check. It is a read-then-decide check
// with no locking; stores additionally enforce (org, job, email) uniqueness.
type Guard struct {
	store CandidateStore
}

func NewGuard(store CandidateStore) *Guard {
	return &Guard{store: store}
}

// Check reports whether email has already applied to jobID, and returns the
// existing record when it has.
func (g *Guard) Check(ctx context.Context, orgID, jobID, email string) (bool, *models.Candidate, error) {
	email = normalizeEmail(email)

	records, err := g.store.QueryByField(ctx, orgID, "email", email)
	if err != nil {
		return false, nil, fmt.Errorf("query candidates by email: %w", err)
	}

	for i := range records {
		if records[i].JobID == jobID && normalizeEmail(records[i].Email) == email {
			return true, &records[i], nil
		}
	}
	return false, nil, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
