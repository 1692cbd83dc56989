// Package i18n holds the UI language preference.
package i18n

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DeviceKey is the device storage key of the selected language.
const DeviceKey = "app_language"

// Language is a UI language code.
type Language string

const (
	English Language = "en"
	Russian Language = "ru"
	// Kazakh keeps the app's historical "kz" code; its BCP 47 tag is kk.
	Kazakh Language = "kz"
)

// Default is used when nothing else matches.
const Default = English

var supported = []Language{English, Russian, Kazakh}

var supportedTags = []language.Tag{
	language.English,
	language.Russian,
	language.Kazakh,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the supported languages in display order.
func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Tag returns the BCP 47 tag of l.
func (l Language) Tag() language.Tag {
	switch l {
	case Russian:
		return language.Russian
	case Kazakh:
		return language.Kazakh
	default:
		return language.English
	}
}

func fromTag(tag language.Tag) Language {
	base, _ := tag.Base()
	switch base.String() {
	case "ru":
		return Russian
	case "kk":
		return Kazakh
	default:
		return English
	}
}

// Parse accepts an app code ("en", "ru", "kz") or any BCP 47 tag that
// matches a supported language with at least high confidence.
func Parse(value string) (Language, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, l := range supported {
		if value == string(l) {
			return l, true
		}
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	_, idx, conf := tagMatcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return fromTag(supportedTags[idx]), true
}

// MatchAcceptLanguage picks the best supported language for an
// Accept-Language header value.
func MatchAcceptLanguage(header string) Language {
	header = strings.TrimSpace(header)
	if header == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := tagMatcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return fromTag(supportedTags[idx])
}

// DeviceStore is device-local string storage.
type DeviceStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Preference is the persisted language choice.
type Preference struct {
	mu     sync.Mutex
	store  DeviceStore
	lang   Language
	stored bool
}

// NewPreference loads the stored language. Invalid values are ignored.
func NewPreference(store DeviceStore) *Preference {
	p := &Preference{store: store, lang: Default}
	raw, ok, err := store.Get(DeviceKey)
	if err != nil {
		log.Printf("[i18n] read language preference: %v", err)
		return p
	}
	if !ok {
		return p
	}
	if l, ok := Parse(raw); ok {
		p.lang = l
		p.stored = true
	}
	return p
}

// Current returns the selected language and whether the user chose it.
func (p *Preference) Current() (Language, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang, p.stored
}

// Set selects and persists value.
func (p *Preference) Set(value string) (Language, error) {
	l, ok := Parse(value)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", value)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Set(DeviceKey, string(l)); err != nil {
		return "", fmt.Errorf("persist language: %w", err)
	}
	p.lang = l
	p.stored = true
	return l, nil
}

// Resolve returns the stored choice, else the best match for the request's
// Accept-Language header.
func (p *Preference) Resolve(r *http.Request) Language {
	if l, stored := p.Current(); stored || r == nil {
		return l
	}
	return MatchAcceptLanguage(r.Header.Get("Accept-Language"))
}
