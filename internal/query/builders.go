package query

import (
	"strings"

	"github.com/grvbrk/videotube_server/internal/apperror"
)

// VideoListParams are the raw, untyped query-string values of a video
// listing request.
type VideoListParams struct {
	Search   string
	SortBy   string
	SortType string
	UserID   string
	Page     string
	Limit    string
}

var VideoListProjection = []Field{
	FieldID,
	FieldThumbnail,
	FieldTitle,
	FieldViews,
	FieldDuration,
	FieldCreatedAt,
	FieldOwner,
}

var CommentListProjection = []Field{
	FieldID,
	FieldContent,
	FieldVideo,
	FieldOwner,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// VideoListQuery validates p and builds the listing read. An owner filter
// with a malformed identifier is rejected before anything else happens.
func VideoListQuery(p VideoListParams) (Query, error) {
	var filter []Condition

	if search := strings.TrimSpace(p.Search); search != "" {
		filter = append(filter, Condition{Field: FieldTitle, Operator: ContainsFold, Value: search})
	}

	if p.UserID != "" {
		ownerID, outcome := ParseID(p.UserID)
		if outcome == Rejected {
			return Query{}, apperror.InvalidArgument("Invalid user id")
		}
		filter = append(filter, Condition{Field: FieldOwner, Operator: Equals, Value: ownerID})
	}

	sortField, _ := ParseSortField(p.SortBy)
	order, _ := ParseOrder(p.SortType)
	page, _ := ParsePage(p.Page)
	limit, _ := ParseLimit(p.Limit)

	return Query{
		Filter:     filter,
		Sort:       Sort{Field: sortField, Order: order},
		Window:     NewWindow(page, limit),
		Projection: VideoListProjection,
		Page:       page,
		Limit:      limit,
	}, nil
}

// CommentListQuery builds the newest-first comment listing of one video.
func CommentListQuery(videoID, rawPage, rawLimit string) (Query, error) {
	id, outcome := ParseID(videoID)
	if outcome == Rejected {
		return Query{}, apperror.InvalidArgument("Invalid video id")
	}

	page, _ := ParsePage(rawPage)
	limit, _ := ParseLimit(rawLimit)

	return Query{
		Filter:     []Condition{{Field: FieldVideo, Operator: Equals, Value: id}},
		Sort:       Sort{Field: FieldCreatedAt, Order: Descending},
		Window:     NewWindow(page, limit),
		Projection: CommentListProjection,
		Page:       page,
		Limit:      limit,
	}, nil
}
