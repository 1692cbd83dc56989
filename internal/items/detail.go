package items

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/spacex"
)

// Lookup fetches a launch and the entities it references.
type Lookup interface {
	GetLaunch(ctx context.Context, id string) (model.Launch, spacex.Source, error)
	GetRocket(ctx context.Context, id string) (model.Rocket, error)
	GetLaunchpad(ctx context.Context, id string) (model.Launchpad, error)
}

// DetailView is a launch joined with its rocket and launchpad names.
type DetailView struct {
	Launch         model.Launch  `json:"launch"`
	RocketName     string        `json:"rocket_name"`
	LaunchpadLabel string        `json:"launchpad_label"`
	PatchURL       string        `json:"patch_url,omitempty"`
	Outcome        model.Outcome `json:"outcome"`
	FromCache      bool          `json:"from_cache"`
}

// LoadDetailView fetches launch id, then its rocket and launchpad in
// parallel. A failed related lookup leaves the corresponding name empty.
func LoadDetailView(ctx context.Context, lookup Lookup, id string) (DetailView, error) {
	launch, src, err := lookup.GetLaunch(ctx, id)
	if err != nil {
		return DetailView{}, err
	}
	view := DetailView{
		Launch:    launch,
		PatchURL:  launch.Links.Patch.Best(),
		Outcome:   launch.Outcome(),
		FromCache: src == spacex.SourceCache,
	}

	var g errgroup.Group
	if launch.Rocket != "" {
		g.Go(func() error {
			rocket, err := lookup.GetRocket(ctx, launch.Rocket)
			if err != nil {
				log.Printf("[items] rocket %s for launch %s: %v", launch.Rocket, id, err)
				return nil
			}
			view.RocketName = rocket.Name
			return nil
		})
	}
	if launch.Launchpad != "" {
		g.Go(func() error {
			pad, err := lookup.GetLaunchpad(ctx, launch.Launchpad)
			if err != nil {
				log.Printf("[items] launchpad %s for launch %s: %v", launch.Launchpad, id, err)
				return nil
			}
			view.LaunchpadLabel = pad.Label()
			return nil
		})
	}
	_ = g.Wait()
	return view, nil
}
