package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Resinat/launchview/internal/launchwatch"
	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/profile"
	"github.com/Resinat/launchview/internal/session"
)

const sseHeartbeatInterval = 25 * time.Second

// Event names on the state stream.
const (
	EventLaunches     = "launches"
	EventFavorites    = "favorites"
	EventConnectivity = "connectivity"
	EventLocation     = "location"
	EventSession      = "session"
	EventProfile      = "profile"
	EventNewLaunch    = "new_launch"
)

// HandleEvents returns a handler for GET /api/v1/events. The stream opens
// with one snapshot per state owner, then carries every change. The profile
// document of the signed-in principal is followed across session changes.
// ?snapshot=false skips the opening snapshots for clients that reconnect
// with state already in hand.
func HandleEvents(svc Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSnapshot, ok := boolQueryOrWriteInvalid(w, r, "snapshot", true)
		if !ok {
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "streaming unsupported")
			return
		}

		launchesCh, cancelLaunches := svc.Items.Subscribe()
		defer cancelLaunches()
		favoritesCh, cancelFavorites := svc.Favorites.Subscribe()
		defer cancelFavorites()
		connectivityCh, cancelConnectivity := svc.Monitor.Subscribe()
		defer cancelConnectivity()
		locationCh, cancelLocation := svc.Navigator.Subscribe()
		defer cancelLocation()
		sessionCh, cancelSession := svc.Session.Subscribe()
		defer cancelSession()
		ctx := r.Context()
		current := svc.Session.Current()
		profiles := newProfileFeed(svc.Profiles)
		defer profiles.stop()
		doc := profiles.follow(ctx, current)
		var watchCh <-chan []launchwatch.Notice
		if svc.Watch != nil {
			ch, cancel := svc.Watch.Subscribe()
			defer cancel()
			watchCh = ch
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		send := func(event string, data any) bool {
			payload, err := json.Marshal(data)
			if err != nil {
				log.Printf("[api] marshal %s event: %v", event, err)
				return true
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event, payload); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if withSnapshot {
			snapshots := []struct {
				event string
				data  any
			}{
				{EventLaunches, newLaunchesStateResponse(svc.Items.State())},
				{EventFavorites, svc.Favorites.Snapshot()},
				{EventConnectivity, connectivityResponse{Online: svc.Monitor.Online()}},
				{EventLocation, newLocationResponse(svc.Navigator.Current())},
				{EventSession, sessionResponse{SignedIn: current != nil, Principal: current}},
				{EventProfile, profileEventResponse{Profile: doc}},
			}
			for _, s := range snapshots {
				if !send(s.event, s.data) {
					return
				}
			}
		} else {
			flusher.Flush()
		}

		ticker := time.NewTicker(sseHeartbeatInterval)
		defer ticker.Stop()

		for {
			var ok bool
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
				ok = true
			case s, open := <-launchesCh:
				ok = open && send(EventLaunches, newLaunchesStateResponse(s))
			case s, open := <-favoritesCh:
				ok = open && send(EventFavorites, s)
			case online, open := <-connectivityCh:
				ok = open && send(EventConnectivity, connectivityResponse{Online: online})
			case loc, open := <-locationCh:
				ok = open && send(EventLocation, newLocationResponse(loc))
			case ev, open := <-sessionCh:
				ok = open && send(EventSession, sessionEventResponse(ev))
				if ok {
					ok = send(EventProfile, profileEventResponse{Profile: profiles.follow(ctx, ev.Principal)})
				}
			case p, open := <-profiles.ch:
				if !open {
					profiles.ch = nil
					ok = true
					break
				}
				ok = send(EventProfile, profileEventResponse{Profile: p})
			case batch, open := <-watchCh:
				ok = open
				for _, n := range batch {
					if ok = send(EventNewLaunch, n); !ok {
						break
					}
				}
			}
			if !ok {
				return
			}
		}
	}
}

func sessionEventResponse(ev session.AuthEvent) sessionResponse {
	return sessionResponse{SignedIn: ev.Principal != nil, Principal: ev.Principal}
}

// profileEventResponse carries the signed-in principal's document, or null
// when signed out or the document does not exist yet.
type profileEventResponse struct {
	Profile *model.Profile `json:"profile"`
}

// profileFeed follows the profile document of one principal at a time.
type profileFeed struct {
	profiles *profile.Service
	ch       <-chan *model.Profile
	cancel   func()
}

func newProfileFeed(profiles *profile.Service) *profileFeed {
	return &profileFeed{profiles: profiles}
}

// follow switches the feed to principal's document and returns it as it is
// now. A nil principal stops following.
func (f *profileFeed) follow(ctx context.Context, principal *model.Principal) *model.Profile {
	if f.profiles == nil {
		return nil
	}
	if principal == nil {
		f.stop()
		return nil
	}
	f.stop()
	doc, ch, cancel, err := f.profiles.Watch(ctx, principal.UID)
	if err != nil {
		log.Printf("[api] watch profile %s: %v", principal.UID, err)
		return nil
	}
	f.ch, f.cancel = ch, cancel
	return doc
}

func (f *profileFeed) stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.ch, f.cancel = nil, nil
}
