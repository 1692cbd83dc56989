package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Resinat/launchview/internal/model"
)

// ProfileRepo wraps the profiles table. Every write is a merge-style partial
// update that creates the document when it does not exist yet.
type ProfileRepo struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

func newProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db, now: time.Now}
}

const selectProfileSQL = `
	SELECT uid, email, display_name, favorites_json, photo_data, created_at_ns
	FROM profiles WHERE uid = ?`

// Get loads the profile document for uid. Returns ErrNotFound when absent.
func (r *ProfileRepo) Get(ctx context.Context, uid string) (*model.Profile, error) {
	return r.get(ctx, r.db, uid)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *ProfileRepo) get(ctx context.Context, q queryRower, uid string) (*model.Profile, error) {
	var (
		p             model.Profile
		favoritesJSON string
		photo         sql.NullString
		createdAtNs   int64
	)
	err := q.QueryRowContext(ctx, selectProfileSQL, uid).Scan(
		&p.UID, &p.Email, &p.DisplayName, &favoritesJSON, &photo, &createdAtNs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}
	if err := json.Unmarshal([]byte(favoritesJSON), &p.Favorites); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s favorites: %w", uid, err)
	}
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	if photo.Valid {
		s := photo.String
		p.PhotoData = &s
	}
	p.CreatedAt = time.Unix(0, createdAtNs).UTC()
	return &p, nil
}

// Ensure creates the profile for principal if missing and refreshes its
// email/display name when the principal carries non-empty values.
func (r *ProfileRepo) Ensure(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	return r.write(ctx, principal.UID, `
		INSERT INTO profiles (uid, email, display_name, created_at_ns, updated_at_ns)
		VALUES (?1, ?2, ?3, ?4, ?4)
		ON CONFLICT(uid) DO UPDATE SET
			email         = CASE WHEN excluded.email = '' THEN profiles.email ELSE excluded.email END,
			display_name  = CASE WHEN excluded.display_name = '' THEN profiles.display_name ELSE excluded.display_name END,
			updated_at_ns = excluded.updated_at_ns`,
		principal.UID, principal.Email, principal.DisplayName, r.now().UnixNano(),
	)
}

// MergeFavorites replaces the favorites field of uid's profile.
func (r *ProfileRepo) MergeFavorites(ctx context.Context, uid string, ids []string) (*model.Profile, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal favorites: %w", err)
	}
	return r.write(ctx, uid, `
		INSERT INTO profiles (uid, favorites_json, created_at_ns, updated_at_ns)
		VALUES (?1, ?2, ?3, ?3)
		ON CONFLICT(uid) DO UPDATE SET
			favorites_json = excluded.favorites_json,
			updated_at_ns  = excluded.updated_at_ns`,
		uid, string(data), r.now().UnixNano(),
	)
}

// MergePhoto replaces the photo field of uid's profile. nil clears it.
func (r *ProfileRepo) MergePhoto(ctx context.Context, uid string, photo *string) (*model.Profile, error) {
	var value sql.NullString
	if photo != nil {
		value = sql.NullString{String: *photo, Valid: true}
	}
	return r.write(ctx, uid, `
		INSERT INTO profiles (uid, photo_data, created_at_ns, updated_at_ns)
		VALUES (?1, ?2, ?3, ?3)
		ON CONFLICT(uid) DO UPDATE SET
			photo_data    = excluded.photo_data,
			updated_at_ns = excluded.updated_at_ns`,
		uid, value, r.now().UnixNano(),
	)
}

// write executes one upsert and returns the document as stored afterwards.
func (r *ProfileRepo) write(ctx context.Context, uid, stmt string, args ...any) (*model.Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("profile write: empty uid")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin profile tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("write profile %s: %w", uid, err)
	}
	p, err := r.get(ctx, tx, uid)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile %s: %w", uid, err)
	}
	return p, nil
}
