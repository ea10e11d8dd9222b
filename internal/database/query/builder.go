// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package query provides SQL WHERE clause construction for the database package.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// Column names are interpolated and must be trusted constants; values are
// always bound as arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEqual("owner_type", "video")
//	wb.AddInt64In("owner_id", []int64{4, 8})
//	whereClause, args := wb.Build()
//	// owner_type = ? AND owner_id IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEqual adds "column = ?". A nil value is skipped.
func (wb *WhereBuilder) AddEqual(column string, value interface{}) *WhereBuilder {
	if value == nil {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddInt64In adds "column IN (?, ...)". An empty slice is skipped.
func (wb *WhereBuilder) AddInt64In(column string, values []int64) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build returns the combined WHERE clause (without the WHERE keyword) and
// its arguments. An empty builder yields "1=1".
//
//	whereClause, args := wb.Build()
//	query := fmt.Sprintf("SELECT * FROM embeddings WHERE %s", whereClause)
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
