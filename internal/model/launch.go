// Package model defines the launch records, paging and profile types shared
// across the data client, state container and persistence layers.
package model

import "time"

// Outcome is the tri-state result of a launch.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// Launch is one launch record as returned by the launches API.
// Records are never mutated after decoding.
type Launch struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	DateUTC   time.Time   `json:"date_utc"`
	Success   *bool       `json:"success"`
	Details   string      `json:"details"`
	Links     LaunchLinks `json:"links"`
	Rocket    string      `json:"rocket"`
	Launchpad string      `json:"launchpad"`
}

// Outcome maps the nullable success flag onto the tri-state outcome.
func (l Launch) Outcome() Outcome {
	switch {
	case l.Success == nil:
		return OutcomeUnknown
	case *l.Success:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}

// LaunchLinks groups the external links of a launch.
type LaunchLinks struct {
	Patch   PatchLinks  `json:"patch"`
	Article string      `json:"article"`
	Webcast string      `json:"webcast"`
	Flickr  FlickrLinks `json:"flickr"`
}

// PatchLinks holds the mission patch image variants.
type PatchLinks struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// Best returns the large patch when present, otherwise the small one.
func (p PatchLinks) Best() string {
	if p.Large != "" {
		return p.Large
	}
	return p.Small
}

// FlickrLinks holds the photo gallery.
type FlickrLinks struct {
	Original []string `json:"original"`
}

// Rocket is the subset of a rocket document the viewer displays.
type Rocket struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Launchpad is the subset of a launchpad document the viewer displays.
type Launchpad struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Locality string `json:"locality"`
}

// Label renders "name (locality)", or just the name when locality is unknown.
func (p Launchpad) Label() string {
	if p.Name == "" {
		return ""
	}
	if p.Locality == "" {
		return p.Name
	}
	return p.Name + " (" + p.Locality + ")"
}
