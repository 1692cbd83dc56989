package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/Resinat/launchview/internal/model"
)

// MaxPhotoBytes caps the decoded size of an avatar photo.
const MaxPhotoBytes = 1 << 20

// ErrInvalidPhoto is returned for anything that is not a base64 image data URL.
var ErrInvalidPhoto = errors.New("photo must be a base64 image data URL (jpeg, png or webp)")

var photoPrefixes = []string{
	"data:image/jpeg;base64,",
	"data:image/png;base64,",
	"data:image/webp;base64,",
}

// Service exposes the profile operations of the signed-in user.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Load returns uid's profile, creating it from principal on first sight.
func (s *Service) Load(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	p, err := s.store.Get(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return s.store.Ensure(ctx, principal)
}

// UpdatePhoto validates dataURL and merge-writes it as uid's photo.
func (s *Service) UpdatePhoto(ctx context.Context, uid, dataURL string) error {
	if err := ValidatePhoto(dataURL); err != nil {
		return err
	}
	return s.store.MergePhoto(ctx, uid, &dataURL)
}

// ClearPhoto removes uid's photo.
func (s *Service) ClearPhoto(ctx context.Context, uid string) error {
	return s.store.MergePhoto(ctx, uid, nil)
}

// Watch returns uid's current document and a channel that delivers it after
// every write. Call cancel to stop watching.
func (s *Service) Watch(ctx context.Context, uid string) (*model.Profile, <-chan *model.Profile, func(), error) {
	return s.store.Watch(ctx, uid)
}

// ValidatePhoto checks that dataURL is a well-formed image data URL.
func ValidatePhoto(dataURL string) error {
	var payload string
	for _, prefix := range photoPrefixes {
		if rest, ok := strings.CutPrefix(dataURL, prefix); ok {
			payload = rest
			break
		}
	}
	if payload == "" {
		return ErrInvalidPhoto
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if len(raw) > MaxPhotoBytes {
		return fmt.Errorf("%w: larger than %d bytes", ErrInvalidPhoto, MaxPhotoBytes)
	}
	return nil
}
