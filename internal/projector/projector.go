// Package projector derives the visible subset of a collection from a free-text
// query and a categorical filter.
package projector

import (
	"strings"

	"golang.org/x/text/cases"
)

// Predicate reports whether rec passes the filter parameterised by value.
type Predicate[T any] func(rec T, value string) bool

// Spec describes how a kind is searched and filtered.
type Spec[T any] struct {
	// Fields returns the text fields matched by the search query.
	Fields func(T) []string
	// Filters maps filter operators to predicates.
	Filters map[Op]Predicate[T]
}

// Project returns the records of items passing both the search and the filter
// predicate, in source order. It never mutates items.
func Project[T any](items []T, query string, c Criterion, spec Spec[T]) []T {
	needle := fold(query)
	pred, known := spec.Filters[c.Op]
	out := make([]T, 0, len(items))
	for _, rec := range items {
		if !matchesQuery(rec, needle, spec.Fields) {
			continue
		}
		if !c.IsAll() {
			if !known || !pred(rec, c.Value) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func matchesQuery[T any](rec T, needle string, fields func(T) []string) bool {
	if needle == "" {
		return true
	}
	if fields == nil {
		return false
	}
	for _, f := range fields(rec) {
		if strings.Contains(fold(f), needle) {
			return true
		}
	}
	return false
}

// fold returns the case-folded form of s. A fresh caser is taken per call
// because cases.Caser is not safe for concurrent use.
func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
