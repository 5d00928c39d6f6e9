package api

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pagechat/internal/chat"
	"pagechat/internal/models"
	"pagechat/internal/pageurl"
)

// maxSendBodyBytes bounds one multipart send. The per-file cap is the
// pipeline's; this only stops runaway request bodies while still
// allowing a couple of full-size attachments.
const maxSendBodyBytes = 12 << 20

type MessageHandler struct {
	store    chat.MessageStore
	files    chat.FileStore
	notifier chat.Notifier
	baseURL  string
}

func NewMessageHandler(store chat.MessageStore, files chat.FileStore, notifier chat.Notifier, baseURL string) *MessageHandler {
	return &MessageHandler{
		store:    store,
		files:    files,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// List returns the messages for a page with id greater than the
// caller's high-water mark, ascending. Clients poll this endpoint and
// merge the result into their local feed.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	if page == "" {
		badRequest(w, "Query parameter 'page' is required")
		return
	}

	afterID := int64(0)
	if after := strings.TrimSpace(r.URL.Query().Get("after")); after != "" {
		parsed, err := strconv.ParseInt(after, 10, 64)
		if err != nil || parsed < 0 {
			badRequest(w, "Query parameter 'after' must be a non-negative integer")
			return
		}
		afterID = parsed
	}

	messages, err := h.store.ListMessages(r.Context(), page, afterID)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Send accepts one multipart message: a "text" field with the composed
// markup, an optional "mentions" JSON field, "pageUniqueId" and
// "pageName" fields, and zero or more "files" parts.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r)
	if user == nil {
		unauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			payloadTooLarge(w, "Request body exceeds the upload limit")
			return
		}
		badRequest(w, "Invalid multipart request body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	page := models.PageInfo{
		PageUniqueID: strings.TrimSpace(r.FormValue("pageUniqueId")),
		PageName:     strings.TrimSpace(r.FormValue("pageName")),
	}
	if page.PageUniqueID == "" {
		badRequest(w, "Field 'pageUniqueId' is required")
		return
	}

	mentions, err := parseMentions(r.FormValue("mentions"))
	if err != nil {
		badRequest(w, "Field 'mentions' must be a JSON array of users")
		return
	}

	files, closers, err := stageUploads(r.MultipartForm)
	if err != nil {
		badRequest(w, "Invalid file upload")
		return
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	draft := chat.Draft{
		HTML:     r.FormValue("text"),
		Mentions: mentions,
		Files:    files,
		Page:     page,
	}

	pipeline := chat.NewPipeline(h.store, h.files, h.notifier, *user, func(p models.PageInfo) string {
		return pageurl.DeepLink(h.baseURL, p)
	})

	msg, err := pipeline.Send(r.Context(), draft)
	if err != nil {
		writeSendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func writeSendError(w http.ResponseWriter, err error) {
	var vErr *chat.ValidationError
	var pErr *chat.PermissionError
	switch {
	case errors.As(err, &vErr):
		badRequest(w, vErr.Message)
	case errors.As(err, &pErr):
		forbidden(w, pErr.Error())
	case errors.Is(err, chat.ErrSendInFlight):
		conflict(w, err.Error())
	default:
		internalError(w)
	}
}

func parseMentions(raw string) ([]models.UserMention, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var mentions []models.UserMention
	if err := json.Unmarshal([]byte(raw), &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

func stageUploads(form *multipart.Form) ([]chat.StagedFile, []multipart.File, error) {
	if form == nil {
		return nil, nil, nil
	}

	headers := form.File["files"]
	files := make([]chat.StagedFile, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, err
		}
		closers = append(closers, f)
		files = append(files, chat.StagedFile{
			Name: header.Filename,
			Size: header.Size,
			Data: f,
		})
	}

	return files, closers, nil
}
