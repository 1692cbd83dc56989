// Package nav holds the navigable location: the current view plus the page
// query encoded in it, persisted so the query survives restarts.
package nav

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Resinat/launchview/internal/model"
)

const (
	HomePath      = "/"
	ItemsPath     = "/items"
	FavoritesPath = "/favorites"
	ProfilePath   = "/profile"
	OfflinePath   = "/offline"
)

// Location is a path plus query parameters.
type Location struct {
	Path  string     `json:"path"`
	Query url.Values `json:"query,omitempty"`
}

// Home is the root location.
func Home() Location {
	return Location{Path: HomePath}
}

// ParseLocation parses a relative URL such as "/items?q=falcon&page=2".
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Home(), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", raw, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, fmt.Errorf("parse location %q: must be a relative path", raw)
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc := Location{Path: path}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
	}
	return loc, nil
}

// String renders the location as a relative URL.
func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = HomePath
	}
	if len(l.Query) == 0 {
		return path
	}
	return path + "?" + l.Query.Encode()
}

// IsOffline reports whether l is the offline fallback view.
func (l Location) IsOffline() bool {
	return l.Path == OfflinePath || strings.HasPrefix(l.Path, OfflinePath+"/")
}

// OfflineLocation is the offline view remembering where the user came from.
func OfflineLocation(from Location) Location {
	return Location{Path: OfflinePath, Query: url.Values{"from": {from.String()}}}
}

// From returns the location carried by an offline view, or Home.
func (l Location) From() Location {
	if !l.IsOffline() {
		return Home()
	}
	from, err := ParseLocation(l.Query.Get("from"))
	if err != nil || from.IsOffline() {
		return Home()
	}
	return from
}

// ItemsLocation encodes q into the list view location. Defaults are omitted.
func ItemsLocation(q model.PageQuery, defaultLimit int) Location {
	q = q.Normalize()
	values := url.Values{}
	if q.Term != "" {
		values.Set("q", q.Term)
	}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit != defaultLimit {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SuccessOnly {
		values.Set("success", "true")
	}
	loc := Location{Path: ItemsPath}
	if len(values) > 0 {
		loc.Query = values
	}
	return loc
}

// PageQueryFromLocation decodes the list query carried by l. Malformed
// numbers fall back to defaults.
func PageQueryFromLocation(l Location, defaultLimit int) model.PageQuery {
	q := model.PageQuery{Page: 1, Limit: defaultLimit}
	if l.Query == nil {
		return q
	}
	q.Term = strings.TrimSpace(l.Query.Get("q"))
	if n, err := strconv.Atoi(l.Query.Get("page")); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(l.Query.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	q.SuccessOnly, _ = strconv.ParseBool(l.Query.Get("success"))
	return q
}

// DetailLocation is the detail view of one launch.
func DetailLocation(id string) Location {
	return Location{Path: ItemsPath + "/" + url.PathEscape(id)}
}

// DetailID returns the launch id when l is a detail view.
func (l Location) DetailID() (string, bool) {
	rest, ok := strings.CutPrefix(l.Path, ItemsPath+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}
