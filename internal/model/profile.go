package model

import "time"

// Principal is an authenticated account identity.
type Principal struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Profile is the per-account document kept in the profile store.
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Favorites   []string  `json:"favorites"`
	PhotoData   *string   `json:"photo_data"`
	CreatedAt   time.Time `json:"created_at"`
}
