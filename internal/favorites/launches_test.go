package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/spacex"
)

type getterFunc func(ctx context.Context, id string) (model.Launch, spacex.Source, error)

func (f getterFunc) GetLaunch(ctx context.Context, id string) (model.Launch, spacex.Source, error) {
	return f(ctx, id)
}

func TestLoadLaunches_KeepsOrder(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, id string) (model.Launch, spacex.Source, error) {
		return model.Launch{ID: id, Name: "Mission " + id}, spacex.SourceLive, nil
	})
	ids := []string{"e", "d", "c", "b", "a"}
	got, err := LoadLaunches(context.Background(), getter, ids)
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range got {
		if l.ID != ids[i] {
			t.Fatalf("position %d: got %q, want %q", i, l.ID, ids[i])
		}
	}
}

func TestLoadLaunches_FailsOnAnyError(t *testing.T) {
	boom := errors.New("boom")
	getter := getterFunc(func(ctx context.Context, id string) (model.Launch, spacex.Source, error) {
		if id == "bad" {
			return model.Launch{}, "", boom
		}
		return model.Launch{ID: id}, spacex.SourceLive, nil
	})
	if _, err := LoadLaunches(context.Background(), getter, []string{"a", "bad", "c"}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	got, err := LoadLaunches(context.Background(), getter, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty: got %v, %v", got, err)
	}
}
