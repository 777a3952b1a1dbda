package repository

import (
	"fmt"
	"strings"
)

// conjunction accumulates optional SQL predicates combined with AND.
// Callers add a predicate only when its input was actually supplied; an
// absent criterion never constrains the query. With no predicates the
// WHERE clause is empty and the query scans the whole table.
type conjunction struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate. The fragment uses %d-style placeholders via
// next(), e.g. c.add(fmt.Sprintf("category = $%d", c.next()), category).
func (c *conjunction) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

// next returns the positional index for the next bound argument.
func (c *conjunction) next() int {
	return len(c.args) + 1
}

// where renders the accumulated predicates, or an empty string when none
// were supplied.
func (c *conjunction) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// productConjunction builds the conjunctive filter shared by Search and
// FindWithFilters. Empty strings and nil pointers are omitted, never
// treated as "match empty".
func productConjunction(name, category string, minPrice, maxPrice *float64, available *bool) *conjunction {
	c := &conjunction{}
	if name != "" {
		c.add(fmt.Sprintf("name ILIKE $%d", c.next()), "%"+name+"%")
	}
	if category != "" {
		c.add(fmt.Sprintf("category = $%d", c.next()), category)
	}
	if minPrice != nil {
		c.add(fmt.Sprintf("price >= $%d", c.next()), *minPrice)
	}
	if maxPrice != nil {
		c.add(fmt.Sprintf("price <= $%d", c.next()), *maxPrice)
	}
	if available != nil {
		c.add(fmt.Sprintf("available = $%d", c.next()), *available)
	}
	return c
}
