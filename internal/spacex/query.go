package spacex

import (
	"regexp"

	"github.com/Resinat/launchview/internal/model"
)

// QueryBody is the request body of POST /launches/query. Field order is
// fixed so that identical queries serialize to identical bytes.
type QueryBody struct {
	Query   Query        `json:"query"`
	Options QueryOptions `json:"options"`
}

// Query is the server-side filter document.
type Query struct {
	Name    *RegexFilter `json:"name,omitempty"`
	Success *bool        `json:"success,omitempty"`
}

// RegexFilter is a case-insensitive pattern match on one field.
type RegexFilter struct {
	Regex   string `json:"$regex"`
	Options string `json:"$options"`
}

type QueryOptions struct {
	Sort  SortSpec `json:"sort"`
	Limit int      `json:"limit"`
	Page  int      `json:"page"`
}

type SortSpec struct {
	DateUTC string `json:"date_utc"`
}

// BuildQueryBody maps a page query onto the remote query document: newest
// launches first, optionally narrowed to names containing the search term.
func BuildQueryBody(q model.PageQuery) QueryBody {
	q = q.Normalize()
	body := QueryBody{
		Options: QueryOptions{
			Sort:  SortSpec{DateUTC: "desc"},
			Limit: q.Limit,
			Page:  q.Page,
		},
	}
	if q.Term != "" {
		body.Query.Name = &RegexFilter{Regex: regexp.QuoteMeta(q.Term), Options: "i"}
	}
	if q.SuccessOnly {
		success := true
		body.Query.Success = &success
	}
	return body
}

// pageResponse is the paginated envelope returned by the query endpoint.
type pageResponse struct {
	Docs      []model.Launch `json:"docs"`
	TotalDocs int            `json:"totalDocs"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
}
