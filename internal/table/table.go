// Package table turns a snapshot of transactions into one page of the
// transactions view. All state arrives in the Query, nothing is persisted
// between requests.
package table

import (
	"sort"
	"strings"

	"github.com/work4inventions/financeInsight/internal/core"
)

// Column identifies a sortable, hideable table column.
type Column string

const (
	ColName   Column = "name"
	ColType   Column = "type"
	ColAmount Column = "amount"
	ColDate   Column = "date"
	ColTag    Column = "tag"
)

// Columns is the display order.
var Columns = []Column{ColName, ColType, ColAmount, ColDate, ColTag}

func (c Column) IsValid() bool {
	switch c {
	case ColName, ColType, ColAmount, ColDate, ColTag:
		return true
	default:
		return false
	}
}

// TypeFilter narrows the rows before the text search runs.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

func (f TypeFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterIncome, FilterExpense:
		return true
	default:
		return false
	}
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query is the full per-request view state.
type Query struct {
	Type     TypeFilter
	Search   string
	SortBy   Column
	SortDesc bool
	Page     int // 1-based
	PageSize int
	Hidden   map[Column]bool
}

// Page is one rendered slice of the filtered rows.
type Page struct {
	Rows      []core.Transaction
	Columns   []Column // visible columns in display order
	Page      int
	PageCount int
	Total     int // rows after filtering, before pagination
}

// Build applies type filter, then search, then sort, then pagination.
// Out-of-range query values are clamped rather than rejected.
func Build(all []core.Transaction, q Query) Page {
	rows := filterType(all, q.Type)
	rows = filterSearch(rows, q.Search)

	if q.SortBy.IsValid() {
		sortRows(rows, q.SortBy, q.SortDesc)
	}

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(rows)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	var visible []Column
	for _, c := range Columns {
		if !q.Hidden[c] {
			visible = append(visible, c)
		}
	}

	return Page{
		Rows:      rows[start:end],
		Columns:   visible,
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	}
}

func filterType(all []core.Transaction, f TypeFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		switch f {
		case FilterIncome:
			if t.Type != core.Income {
				continue
			}
		case FilterExpense:
			if t.Type != core.Expense {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func filterSearch(rows []core.Transaction, search string) []core.Transaction {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return rows
	}
	out := rows[:0]
	for _, t := range rows {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
		}
	}
	return out
}

func sortRows(rows []core.Transaction, by Column, desc bool) {
	less := func(a, b core.Transaction) bool {
		switch by {
		case ColName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case ColType:
			return a.Type < b.Type
		case ColAmount:
			return a.Amount.Cents < b.Amount.Cents
		case ColDate:
			return a.Date.Before(b.Date.Time)
		case ColTag:
			return strings.ToLower(a.Tag) < strings.ToLower(b.Tag)
		}
		return false
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
