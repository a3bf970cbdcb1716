package models

import (
	"errors"
	"testing"
)

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery(`{"member_id":7}`, `["created_at","DESC"]`, `[0,25]`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if q.Filter["member_id"] != float64(7) {
		t.Errorf("filter member_id = %v, want 7", q.Filter["member_id"])
	}
	if len(q.Sort) != 2 || q.Sort[0] != "created_at" || q.Sort[1] != "DESC" {
		t.Errorf("sort = %v", q.Sort)
	}
	if len(q.Range) != 2 || q.Range[0] != 0 || q.Range[1] != 25 {
		t.Errorf("range = %v", q.Range)
	}
}

func TestParseListQueryEmptyParams(t *testing.T) {
	q, err := ParseListQuery("", "", "")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if q.Filter != nil || q.Sort != nil || q.Range != nil {
		t.Errorf("expected zero query, got %+v", q)
	}
}

func TestParseListQueryRejectsMalformedJSON(t *testing.T) {
	for _, params := range [][3]string{
		{`{member_id:7}`, "", ""},
		{"", `["id"`, ""},
		{"", "", `[0,"x"]`},
	} {
		if _, err := ParseListQuery(params[0], params[1], params[2]); !errors.Is(err, ErrBadListQuery) {
			t.Errorf("params %v: err = %v, want ErrBadListQuery", params, err)
		}
	}
}

func TestApplyRejectsUnknownSortColumn(t *testing.T) {
	q := ListQuery{Sort: []string{"password", "ASC"}}
	if _, err := q.Apply(nil, map[string]bool{"email": true}); err == nil {
		t.Fatal("expected an error for a column outside the allowlist")
	}
}

func TestApplyRejectsInvalidSortOrder(t *testing.T) {
	q := ListQuery{Sort: []string{"email", "SIDEWAYS"}}
	if _, err := q.Apply(nil, map[string]bool{"email": true}); err == nil {
		t.Fatal("expected an error for an invalid sort order")
	}
}
