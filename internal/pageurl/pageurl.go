// Package pageurl builds absolute links into the hosting portal:
// deep links back to a page's conversation and download links for
// stored attachments.
package pageurl

import (
	"net/url"
	"strings"

	"pagechat/internal/models"
)

const FilePathPrefix = "/files/"

// DeepLink returns the absolute URL of the page a message lives on,
// suitable for notification emails.
func DeepLink(baseURL string, page models.PageInfo) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/pages/" + url.PathEscape(page.PageUniqueID)
}

// File returns the absolute URL for a server-relative attachment
// path as produced by the file store.
func File(baseURL, serverRelativeURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(serverRelativeURL, "/") {
		serverRelativeURL = "/" + serverRelativeURL
	}
	return base + serverRelativeURL
}

// ParseFilePath extracts the storage path (folder/name) from a file
// URL or server-relative path. Returns false for anything outside the
// attachment namespace.
func ParseFilePath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	path := u.Path
	if path == "" {
		path = raw
	}

	if !strings.HasPrefix(path, FilePathPrefix) {
		return "", false
	}

	rel := strings.TrimPrefix(path, FilePathPrefix)
	parts := strings.Split(rel, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	if parts[0] == ".." || parts[1] == ".." {
		return "", false
	}

	return rel, true
}
