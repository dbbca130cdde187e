package store

import (
	"fmt"
	"strings"

	"companychallenges/api/models"
)

// MaxEventRows caps any single event log read.
const MaxEventRows = 1_000_000

// buildEventQuery renders the WHERE/ORDER/LIMIT tail of an event log read.
// placeholder returns the bind marker for the n-th (1-based) argument.
func buildEventQuery(f models.EventFilter, placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if f.ChallengeID != "" {
		conds = append(conds, "challenge_id = "+next(f.ChallengeID))
	}
	if len(f.EventTypes) > 0 {
		marks := make([]string, 0, len(f.EventTypes))
		for _, et := range f.EventTypes {
			marks = append(marks, next(string(et)))
		}
		conds = append(conds, "event_type IN ("+strings.Join(marks, ", ")+")")
	}
	if f.From != nil {
		conds = append(conds, "created_at >= "+next(f.From.UTC()))
	}
	if f.To != nil {
		conds = append(conds, "created_at <= "+next(f.To.UTC()))
	}
	if f.WithAssignment {
		conds = append(conds, "assignment_id IS NOT NULL")
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	if f.NewestFirst {
		b.WriteString(" ORDER BY created_at DESC")
	} else {
		b.WriteString(" ORDER BY created_at ASC")
	}

	limit := f.Limit
	if limit <= 0 || limit > MaxEventRows {
		limit = MaxEventRows
	}
	fmt.Fprintf(&b, " LIMIT %d", limit)

	return b.String(), args
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

func nullIfEmpty(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
