package core

import "testing"

func TestNewPage(t *testing.T) {
	tests := []struct {
		name        string
		skip, limit int
		want        Page
	}{
		{name: "defaults", want: Page{Skip: 0, Limit: 50}},
		{name: "negative skip", skip: -3, limit: 10, want: Page{Skip: 0, Limit: 10}},
		{name: "negative limit", skip: 5, limit: -1, want: Page{Skip: 5, Limit: 50}},
		{name: "capped", limit: 1000, want: Page{Skip: 0, Limit: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPage(tt.skip, tt.limit, 50, 100); got != tt.want {
				t.Errorf("NewPage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"email": "u.email", "created_at": "u.created_at"}
	fallback := "u.created_at DESC"

	tests := []struct {
		name      string
		orderings []DBOrdering
		want      string
	}{
		{name: "none", want: fallback},
		{name: "unknown only", orderings: []DBOrdering{{Field: "password_hash", Ascending: true}}, want: fallback},
		{
			name:      "mapped",
			orderings: []DBOrdering{{Field: "email", Ascending: true}, {Field: "lol"}, {Field: "created_at"}},
			want:      "u.email ASC, u.created_at DESC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderBy(tt.orderings, allowed, fallback); got != tt.want {
				t.Errorf("OrderBy() = %q, want %q", got, tt.want)
			}
		})
	}
}
