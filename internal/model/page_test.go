package model

import (
	"encoding/json"
	"testing"
)

func TestPageResult_DerivedPagination(t *testing.T) {
	tests := []struct {
		name      string
		totalDocs int
		page      int
		limit     int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", 0, 1, 10, 0, false, false},
		{"exact", 20, 1, 10, 2, true, false},
		{"remainder", 21, 2, 10, 3, true, true},
		{"last page", 21, 3, 10, 3, false, true},
		{"single", 5, 1, 10, 1, false, false},
		{"page beyond total", 5, 4, 10, 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PageResult{TotalDocs: tt.totalDocs, Page: tt.page, Limit: tt.limit}
			if got := r.TotalPages(); got != tt.wantPages {
				t.Fatalf("TotalPages: got %d, want %d", got, tt.wantPages)
			}
			if got := r.HasNextPage(); got != tt.wantNext {
				t.Fatalf("HasNextPage: got %v, want %v", got, tt.wantNext)
			}
			if got := r.HasPrevPage(); got != tt.wantPrev {
				t.Fatalf("HasPrevPage: got %v, want %v", got, tt.wantPrev)
			}
		})
	}
}

func TestTotalPages_MatchesCeilForAllSmallInputs(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for limit := 1; limit <= 12; limit++ {
			want := total / limit
			if total%limit != 0 {
				want++
			}
			if got := TotalPages(total, limit); got != want {
				t.Fatalf("TotalPages(%d,%d): got %d, want %d", total, limit, got, want)
			}
		}
	}
}

func TestPageQuery_NormalizeAndValidate(t *testing.T) {
	q := PageQuery{Term: "  Falcon ", Page: 0, Limit: 0}.Normalize()
	if q.Term != "Falcon" || q.Page != 1 || q.Limit != DefaultPageLimit {
		t.Fatalf("unexpected normalized query: %+v", q)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("normalized query should validate: %v", err)
	}
	if err := (PageQuery{Page: 0, Limit: -1}).Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLaunch_DecodeOutcomeAndLinks(t *testing.T) {
	raw := `{
		"id":"5eb87cd9ffd86e000604b32a",
		"name":"FalconSat",
		"date_utc":"2006-03-24T22:30:00.000Z",
		"success":false,
		"details":null,
		"links":{"patch":{"small":"s.png","large":null},"webcast":"https://youtu.be/0a_00nJ_Y88","flickr":{"original":[]}},
		"rocket":"5e9d0d95eda69955f709d1eb",
		"launchpad":"5e9e4502f5090995de566f86"
	}`
	var l Launch
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.Outcome() != OutcomeFailure {
		t.Fatalf("outcome: got %q, want %q", l.Outcome(), OutcomeFailure)
	}
	if l.Links.Patch.Best() != "s.png" {
		t.Fatalf("patch: got %q", l.Links.Patch.Best())
	}
	if l.DateUTC.Year() != 2006 {
		t.Fatalf("date: got %v", l.DateUTC)
	}

	l.Success = nil
	if l.Outcome() != OutcomeUnknown {
		t.Fatalf("nil success should be unknown, got %q", l.Outcome())
	}
}

func TestLaunchpad_Label(t *testing.T) {
	if got := (Launchpad{Name: "SLC 40", Locality: "Cape Canaveral"}).Label(); got != "SLC 40 (Cape Canaveral)" {
		t.Fatalf("label: got %q", got)
	}
	if got := (Launchpad{Name: "SLC 40"}).Label(); got != "SLC 40" {
		t.Fatalf("label without locality: got %q", got)
	}
	if got := (Launchpad{}).Label(); got != "" {
		t.Fatalf("empty label: got %q", got)
	}
}
