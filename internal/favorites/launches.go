package favorites

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/spacex"
)

const maxParallelLookups = 4

// LaunchGetter fetches one launch.
type LaunchGetter interface {
	GetLaunch(ctx context.Context, id string) (model.Launch, spacex.Source, error)
}

// LoadLaunches fetches every id, in order. Any failure fails the whole load.
func LoadLaunches(ctx context.Context, getter LaunchGetter, ids []string) ([]model.Launch, error) {
	out := make([]model.Launch, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, id := range ids {
		g.Go(func() error {
			l, _, err := getter.GetLaunch(ctx, id)
			if err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
