package repository

import (
	"testing"
)

func float(v float64) *float64 { return &v }
func boolean(v bool) *bool     { return &v }

func TestEmptyFilterHasNoWhereClause(t *testing.T) {
	c := productConjunction("", "", nil, nil, nil)
	if c.where() != "" {
		t.Fatalf("expected empty where clause, got %q", c.where())
	}
	if len(c.args) != 0 {
		t.Fatalf("expected no args, got %v", c.args)
	}
}

func TestSingleCriterion(t *testing.T) {
	c := productConjunction("", "Hardware", nil, nil, nil)
	want := " WHERE category = $1"
	if c.where() != want {
		t.Fatalf("expected %q, got %q", want, c.where())
	}
	if len(c.args) != 1 || c.args[0] != "Hardware" {
		t.Fatalf("unexpected args: %v", c.args)
	}
}

func TestAllCriteriaAreConjoinedInOrder(t *testing.T) {
	c := productConjunction("widget", "Hardware", float(5), float(10), boolean(true))
	want := " WHERE name ILIKE $1 AND category = $2 AND price >= $3 AND price <= $4 AND available = $5"
	if c.where() != want {
		t.Fatalf("expected %q, got %q", want, c.where())
	}
	if len(c.args) != 5 {
		t.Fatalf("expected 5 args, got %v", c.args)
	}
	if c.args[0] != "%widget%" {
		t.Fatalf("expected substring pattern, got %v", c.args[0])
	}
}

func TestEmptyStringCriteriaAreOmittedNotMatched(t *testing.T) {
	// An empty name or category must impose no constraint at all, never
	// match rows with empty values.
	c := productConjunction("", "", nil, float(20), nil)
	want := " WHERE price <= $1"
	if c.where() != want {
		t.Fatalf("expected %q, got %q", want, c.where())
	}
}

func TestPlaceholdersRenumberAfterOmissions(t *testing.T) {
	c := productConjunction("", "Books", nil, nil, boolean(false))
	want := " WHERE category = $1 AND available = $2"
	if c.where() != want {
		t.Fatalf("expected %q, got %q", want, c.where())
	}
	if c.next() != 3 {
		t.Fatalf("expected next placeholder 3, got %d", c.next())
	}
}
