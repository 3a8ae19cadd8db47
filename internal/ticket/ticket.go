// Package ticket creates tracker tickets from issue cards. Creation is
// sequential and fallible per card: one failure never aborts the rest
// of the batch.
package ticket

import (
	"context"
	"fmt"

	"github.com/jmoretti/threadtriage/internal/card"
)

// Creator is one tracker backend.
type Creator interface {
	// Create files a ticket for the card, returning the tracker's
	// ticket ID and a browse URL.
	Create(ctx context.Context, c card.IssueCard) (id, url string, err error)
	Provider() string
}

// Result is the per-card creation outcome.
type Result struct {
	CardNumber int
	Title      string
	TicketID   string
	TicketURL  string
	Err        error
}

// CreateAll files a ticket for each card in order. A failed card is
// reported and the rest are still attempted; a cancelled context marks
// every remaining card as not attempted.
func CreateAll(ctx context.Context, c Creator, cards []card.IssueCard) []Result {
	results := make([]Result, 0, len(cards))
	for _, ic := range cards {
		res := Result{CardNumber: ic.Number, Title: ic.Title}

		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("not attempted: %w", err)
			results = append(results, res)
			continue
		}

		id, url, err := c.Create(ctx, ic)
		if err != nil {
			res.Err = err
		} else {
			res.TicketID = id
			res.TicketURL = url
		}
		results = append(results, res)
	}
	return results
}

// DryRun is a Creator that files nothing. Used for --dry-run and tests.
type DryRun struct{}

func (DryRun) Provider() string { return "dry-run" }

func (DryRun) Create(_ context.Context, c card.IssueCard) (string, string, error) {
	return fmt.Sprintf("DRY-%d", c.Number), "", nil
}
