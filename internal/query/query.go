// Package query describes listing reads independently of the store that
// answers them: an ANDed filter, a sort, a pagination window and the set of
// fields to project. Store adapters translate a Query into their own dialect.
package query

import (
	"fmt"
	"math"
	"strings"
)

type Field string

const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldThumbnail   Field = "thumbnail"
	FieldVideoFile   Field = "videoFile"
	FieldViews       Field = "views"
	FieldDuration    Field = "duration"
	FieldCreatedAt   Field = "createdAt"
	FieldOwner       Field = "owner"
	FieldVideo       Field = "video"
	FieldContent     Field = "content"
	FieldUpdatedAt   Field = "updatedAt"
)

type Operator int

const (
	// Equals matches values exactly.
	Equals Operator = iota
	// ContainsFold matches strings containing the value, ignoring case.
	ContainsFold
)

func (o Operator) String() string {
	switch o {
	case Equals:
		return "="
	case ContainsFold:
		return "contains"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

type Condition struct {
	Field    Field
	Operator Operator
	Value    any
}

type Order int

const (
	Descending Order = iota
	Ascending
)

func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

type Sort struct {
	Field Field
	Order Order
}

// Window is the slice of the sorted result a page covers.
type Window struct {
	Skip int
	Take int
}

type Query struct {
	Filter     []Condition
	Sort       Sort
	Window     Window
	Projection []Field

	// Page and Limit are the effective request values the window was
	// derived from; they are echoed in the pagination metadata.
	Page  int
	Limit int
}

// Projects reports whether f is part of the projection.
func (q Query) Projects(f Field) bool {
	for _, p := range q.Projection {
		if p == f {
			return true
		}
	}
	return false
}

func (q Query) String() string {
	conds := make([]string, 0, len(q.Filter))
	for _, c := range q.Filter {
		conds = append(conds, fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value))
	}
	return fmt.Sprintf("filter=[%s] sort=%s:%s skip=%d take=%d",
		strings.Join(conds, " AND "), q.Sort.Field, q.Sort.Order, q.Window.Skip, q.Window.Take)
}

// NewWindow converts a 1-based page and a page size into skip/take. A page
// so far out that the offset would overflow saturates to math.MaxInt, which
// lands past the end of any result.
func NewWindow(page, limit int) Window {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if page-1 > math.MaxInt/limit {
		return Window{Skip: math.MaxInt, Take: limit}
	}
	return Window{Skip: (page - 1) * limit, Take: limit}
}
