package store

import (
	"fmt"
	"strings"

	"github.com/grvbrk/videotube_server/internal/query"
)

// listingSQL is a query.Query translated to Postgres. Both statements share
// the filter arguments; SelectArgs additionally carries LIMIT and OFFSET.
type listingSQL struct {
	CountSQL   string
	SelectSQL  string
	CountArgs  []interface{}
	SelectArgs []interface{}
}

// relation describes a table joined with its owner's user row.
type relation struct {
	from    string
	idCol   string
	columns map[query.Field]string
}

const ownerJoin = "LEFT JOIN users u ON u.id = %s"

var videoRelation = relation{
	from:  "videos v",
	idCol: "v.id",
	columns: map[query.Field]string{
		query.FieldID:          "v.id",
		query.FieldTitle:       "v.title",
		query.FieldDescription: "v.description",
		query.FieldThumbnail:   "v.thumbnail_url",
		query.FieldVideoFile:   "v.video_url",
		query.FieldViews:       "v.views",
		query.FieldDuration:    "v.duration",
		query.FieldCreatedAt:   "v.created_at",
		query.FieldUpdatedAt:   "v.updated_at",
		query.FieldOwner:       "v.owner_id",
	},
}

var commentRelation = relation{
	from:  "comments c",
	idCol: "c.id",
	columns: map[query.Field]string{
		query.FieldID:        "c.id",
		query.FieldContent:   "c.content",
		query.FieldVideo:     "c.video_id",
		query.FieldCreatedAt: "c.created_at",
		query.FieldUpdatedAt: "c.updated_at",
		query.FieldOwner:     "c.owner_id",
	},
}

func (rel relation) buildListing(q query.Query) (*listingSQL, error) {
	whereClauses := []string{}
	args := []interface{}{}

	for _, cond := range q.Filter {
		col, ok := rel.columns[cond.Field]
		if !ok {
			return nil, fmt.Errorf("cannot filter on field %q", cond.Field)
		}

		switch cond.Operator {
		case query.Equals:
			args = append(args, cond.Value)
			whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, len(args)))
		case query.ContainsFold:
			s, ok := cond.Value.(string)
			if !ok {
				return nil, fmt.Errorf("contains filter on %q needs a string, got %T", cond.Field, cond.Value)
			}
			args = append(args, "%"+escapeLike(s)+"%")
			whereClauses = append(whereClauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, col, len(args)))
		default:
			return nil, fmt.Errorf("unsupported operator %s", cond.Operator)
		}
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	selectCols := make([]string, 0, len(q.Projection)+2)
	for _, f := range q.Projection {
		if f == query.FieldOwner {
			selectCols = append(selectCols, "u.id", "u.username", "u.avatar")
			continue
		}
		col, ok := rel.columns[f]
		if !ok {
			return nil, fmt.Errorf("cannot project field %q", f)
		}
		selectCols = append(selectCols, col)
	}

	sortCol, ok := rel.columns[q.Sort.Field]
	if !ok {
		return nil, fmt.Errorf("cannot sort on field %q", q.Sort.Field)
	}
	direction := "DESC"
	if q.Sort.Order == query.Ascending {
		direction = "ASC"
	}

	join := fmt.Sprintf(ownerJoin, rel.columns[query.FieldOwner])

	countSQL := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		%s
	`, rel.from, where)

	selectArgs := append(append([]interface{}{}, args...), q.Window.Take, q.Window.Skip)

	selectSQL := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		%s
		ORDER BY %s %s, %s %s
		LIMIT $%d OFFSET $%d
	`, strings.Join(selectCols, ", "), rel.from, join, where,
		sortCol, direction, rel.idCol, direction,
		len(args)+1, len(args)+2)

	return &listingSQL{
		CountSQL:   countSQL,
		SelectSQL:  selectSQL,
		CountArgs:  args,
		SelectArgs: selectArgs,
	}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
