// Package items is the list/detail state container: a pure reducer over
// intents plus a single goroutine that owns the state and runs the fetches.
package items

import (
	"github.com/Resinat/launchview/internal/model"
)

// User-displayable error messages.
const (
	ErrMsgLoadItems      = "Failed to load items"
	ErrMsgLoadLaunch     = "Failed to load launch"
	ErrMsgLaunchNotFound = "Launch not found"
)

// State is the list and detail view state. Pagination facts are derived.
type State struct {
	Query     model.PageQuery `json:"query"`
	Items     []model.Launch  `json:"items"`
	TotalDocs int             `json:"total_docs"`
	Page      int             `json:"page"`
	Limit     int             `json:"limit"`
	Loading   bool            `json:"loading"`
	Error     string          `json:"error,omitempty"`
	FromCache bool            `json:"from_cache"`

	SelectedID        string        `json:"selected_id,omitempty"`
	Selected          *model.Launch `json:"selected,omitempty"`
	SelectedLoading   bool          `json:"selected_loading"`
	SelectedError     string        `json:"selected_error,omitempty"`
	SelectedFromCache bool          `json:"selected_from_cache"`

	listGen uint64
	itemGen uint64
}

// InitialState is the state before any query.
func InitialState(defaultLimit int) State {
	if defaultLimit <= 0 {
		defaultLimit = model.DefaultPageLimit
	}
	return State{
		Query: model.PageQuery{Page: 1, Limit: defaultLimit},
		Items: []model.Launch{},
		Page:  1,
		Limit: defaultLimit,
	}
}

func (s State) TotalPages() int {
	return model.TotalPages(s.TotalDocs, s.Limit)
}

func (s State) HasNextPage() bool {
	return s.Page < s.TotalPages()
}

func (s State) HasPrevPage() bool {
	return s.Page > 1
}

// Intent is an input to Reduce.
type Intent interface {
	intent()
}

// LoadItems starts loading the list for Query. Gen identifies the load;
// results for any other generation are ignored.
type LoadItems struct {
	Query model.PageQuery
	Gen   uint64
}

type LoadItemsSuccess struct {
	Gen       uint64
	Result    model.PageResult
	FromCache bool
}

type LoadItemsFailure struct {
	Gen   uint64
	Error string
}

// LoadItem starts loading one launch.
type LoadItem struct {
	ID  string
	Gen uint64
}

type LoadItemSuccess struct {
	Gen       uint64
	Item      model.Launch
	FromCache bool
}

type LoadItemFailure struct {
	Gen   uint64
	Error string
}

func (LoadItems) intent()        {}
func (LoadItemsSuccess) intent() {}
func (LoadItemsFailure) intent() {}
func (LoadItem) intent()         {}
func (LoadItemSuccess) intent()  {}
func (LoadItemFailure) intent()  {}

// Reduce returns the state after applying in. It never mutates s.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case LoadItems:
		s.listGen = in.Gen
		s.Query = in.Query
		s.Loading = true
		s.Error = ""
	case LoadItemsSuccess:
		if in.Gen != s.listGen {
			return s
		}
		s.Items = in.Result.Items
		if s.Items == nil {
			s.Items = []model.Launch{}
		}
		s.TotalDocs = in.Result.TotalDocs
		if in.Result.Page > 0 {
			s.Page = in.Result.Page
		}
		if in.Result.Limit > 0 {
			s.Limit = in.Result.Limit
		}
		s.Loading = false
		s.Error = ""
		s.FromCache = in.FromCache
	case LoadItemsFailure:
		if in.Gen != s.listGen {
			return s
		}
		s.Loading = false
		s.Error = in.Error
	case LoadItem:
		s.itemGen = in.Gen
		s.SelectedID = in.ID
		s.Selected = nil
		s.SelectedLoading = true
		s.SelectedError = ""
		s.SelectedFromCache = false
	case LoadItemSuccess:
		if in.Gen != s.itemGen {
			return s
		}
		item := in.Item
		s.Selected = &item
		s.SelectedLoading = false
		s.SelectedError = ""
		s.SelectedFromCache = in.FromCache
	case LoadItemFailure:
		if in.Gen != s.itemGen {
			return s
		}
		s.SelectedLoading = false
		s.SelectedError = in.Error
	}
	return s
}
