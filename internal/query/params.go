package query

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Outcome records how a raw request parameter was interpreted.
type Outcome int

const (
	Valid Outcome = iota
	Defaulted
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Defaulted:
		return "defaulted"
	default:
		return "rejected"
	}
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ParsePositiveInt parses raw as an integer >= 1. Anything else, including
// an empty string, yields def.
func ParsePositiveInt(raw string, def int) (int, Outcome) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def, Defaulted
	}
	return n, Valid
}

func ParsePage(raw string) (int, Outcome) {
	return ParsePositiveInt(raw, DefaultPage)
}

func ParseLimit(raw string) (int, Outcome) {
	return ParsePositiveInt(raw, DefaultLimit)
}

// ParseID never substitutes a default: a malformed identifier is Rejected.
func ParseID(raw string) (uuid.UUID, Outcome) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, Rejected
	}
	return id, Valid
}

// ParseSortField accepts createdAt and views; everything else falls back
// to createdAt.
func ParseSortField(raw string) (Field, Outcome) {
	switch Field(raw) {
	case FieldCreatedAt:
		return FieldCreatedAt, Valid
	case FieldViews:
		return FieldViews, Valid
	default:
		return FieldCreatedAt, Defaulted
	}
}

// ParseOrder maps "asc" to Ascending and anything else to Descending.
func ParseOrder(raw string) (Order, Outcome) {
	switch raw {
	case "asc":
		return Ascending, Valid
	case "desc":
		return Descending, Valid
	default:
		return Descending, Defaulted
	}
}
