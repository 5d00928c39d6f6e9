package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pagechat/internal/blob"
)

type FileHandler struct {
	blobs *blob.Service
}

func NewFileHandler(blobs *blob.Service) *FileHandler {
	return &FileHandler{blobs: blobs}
}

// Get serves one stored attachment. Types a browser can't safely
// render inline are forced to download.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	folder := strings.TrimSpace(chi.URLParam(r, "folder"))
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if folder == "" || name == "" {
		notFound(w, "File not found")
		return
	}

	file, err := h.blobs.Open(path.Join(folder, name))
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, blob.ErrInvalidPath) {
		notFound(w, "File not found")
		return
	}
	if err != nil {
		internalError(w)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		internalError(w)
		return
	}

	mimeType := sniffMimeType(file)

	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Type", mimeType)

	fileName := sanitizeDispositionFilename(name)
	if shouldForceDownload(r) || !shouldRenderInline(mimeType) {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	} else {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", fileName))
	}

	http.ServeContent(w, r, name, info.ModTime(), file)
}

func sniffMimeType(file *os.File) string {
	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	if _, err := file.Seek(0, 0); err != nil {
		return "application/octet-stream"
	}
	if n == 0 {
		return "application/octet-stream"
	}

	contentType := http.DetectContentType(sniff[:n])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}

func sanitizeDispositionFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "download"
	}
	name = strings.ReplaceAll(name, "\\", "")
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	if name == "" {
		return "download"
	}
	return name
}

func shouldRenderInline(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}
	if strings.HasPrefix(mimeType, "video/") {
		return true
	}
	if strings.HasPrefix(mimeType, "audio/") {
		return true
	}
	if mimeType == "application/pdf" || mimeType == "text/plain" {
		return true
	}

	return false
}

func shouldForceDownload(r *http.Request) bool {
	download := strings.TrimSpace(r.URL.Query().Get("download"))
	if download == "" {
		return false
	}

	force, err := strconv.ParseBool(download)
	if err != nil {
		return false
	}

	return force
}
