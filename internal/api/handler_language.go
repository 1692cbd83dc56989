package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/i18n"
)

type languageResponse struct {
	Language  i18n.Language   `json:"language"`
	Selected  bool            `json:"selected"`
	Supported []i18n.Language `json:"supported"`
}

// HandleGetLanguage returns a handler for GET /api/v1/language.
func HandleGetLanguage(pref *i18n.Preference) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, selected := pref.Current()
		WriteJSON(w, http.StatusOK, languageResponse{
			Language:  pref.Resolve(r),
			Selected:  selected,
			Supported: i18n.Supported(),
		})
	}
}

type setLanguageRequest struct {
	Language string `json:"language"`
}

// HandleSetLanguage returns a handler for PUT /api/v1/language.
func HandleSetLanguage(pref *i18n.Preference) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setLanguageRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		if _, ok := i18n.Parse(req.Language); !ok {
			writeInvalidArgument(w, "language: must be one of en, ru, kz")
			return
		}
		lang, err := pref.Set(req.Language)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, languageResponse{
			Language:  lang,
			Selected:  true,
			Supported: i18n.Supported(),
		})
	}
}
