package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pagechat/internal/db"
)

type SettingHandler struct {
	settings *db.SettingRepository
}

func NewSettingHandler(settings *db.SettingRepository) *SettingHandler {
	return &SettingHandler{settings: settings}
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type updateSettingRequest struct {
	Value        string `json:"value" validate:"required"`
	PageUniqueID string `json:"pageUniqueId"`
}

// Get resolves a setting for the page given in the "page" query
// parameter, falling back to the global value.
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		notFound(w, "Setting not found")
		return
	}

	page := strings.TrimSpace(r.URL.Query().Get("page"))

	value, err := h.settings.Get(r.Context(), key, page)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Setting not found")
		return
	}
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

// Update writes a setting, globally or scoped to one page.
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		notFound(w, "Setting not found")
		return
	}

	var req updateSettingRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.settings.Set(r.Context(), key, strings.TrimSpace(req.PageUniqueID), req.Value); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: req.Value})
}
