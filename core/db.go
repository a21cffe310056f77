package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy renders orderings whose Field is a key of allowed, mapping it to the column expression.
// Unknown fields are dropped; fallback is used when nothing remains.
func OrderBy(orderings []DBOrdering, allowed map[string]string, fallback string) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return fallback
	}
	return strings.Join(clauses, ", ")
}

// Page is a skip/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// NewPage clamps skip and limit: a non-positive limit falls back to def, anything above max is capped.
func NewPage(skip, limit, def, max int) Page {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Page{Skip: skip, Limit: limit}
}
