package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/query"
)

// getter returns the value of a field of one record, or nil when the
// record has no value for it.
type getter func(query.Field) any

func matches(filter []query.Condition, get getter) (bool, error) {
	for _, cond := range filter {
		v := get(cond.Field)
		switch cond.Operator {
		case query.Equals:
			if v == nil || v != cond.Value {
				return false, nil
			}
		case query.ContainsFold:
			s, ok := v.(string)
			needle, ok2 := cond.Value.(string)
			if !ok || !ok2 {
				return false, fmt.Errorf("contains filter on %q needs strings", cond.Field)
			}
			if !strings.Contains(strings.ToLower(s), strings.ToLower(needle)) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %s", cond.Operator)
		}
	}
	return true, nil
}

func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		return x.Compare(b.(time.Time))
	case int64:
		y := b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case uuid.UUID:
		return strings.Compare(x.String(), b.(uuid.UUID).String())
	}
	return 0
}

// apply filters, sorts and windows records the way the Postgres adapter
// does, with the id as a tie-breaker in the sort direction. It returns the
// page and the number of matching records.
func apply[T any](records []T, q query.Query, fields func(T) getter) ([]T, int, error) {
	matched := make([]T, 0, len(records))
	for _, r := range records {
		ok, err := matches(q.Filter, fields(r))
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		gi, gj := fields(matched[i]), fields(matched[j])
		c := compare(gi(q.Sort.Field), gj(q.Sort.Field))
		if c == 0 {
			c = compare(gi(query.FieldID), gj(query.FieldID))
		}
		if q.Sort.Order == query.Ascending {
			return c < 0
		}
		return c > 0
	})

	total := len(matched)
	start := q.Window.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if take := q.Window.Take; take >= 0 && take < total-start {
		end = start + take
	}

	return matched[start:end], total, nil
}
