package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"pagechat/internal/models"
)

var (
	ErrFileTooLarge   = errors.New("attachment too large")
	ErrDisallowedType = errors.New("disallowed attachment mime type")
	ErrExecutableFile = errors.New("executable files are not allowed")
	ErrInvalidPath    = errors.New("invalid attachment path")
)

// Service stores chat attachments on disk, one folder per page. It
// implements chat.FileStore.
type Service struct {
	rootDir        string
	maxUploadBytes int64
}

func NewService(rootDir string, maxUploadBytes int64) (*Service, error) {
	if strings.TrimSpace(rootDir) == "" {
		return nil, fmt.Errorf("attachment root directory is required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be > 0")
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment root directory: %w", err)
	}

	return &Service{
		rootDir:        rootDir,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// UploadFile writes one attachment into the page's folder and returns
// its descriptor. Uploading the same name again overwrites the
// previous file.
func (s *Service) UploadFile(_ context.Context, page models.PageInfo, originalName string, size int64, src io.Reader) (models.FileAttachment, error) {
	var none models.FileAttachment

	if size > s.maxUploadBytes {
		return none, ErrFileTooLarge
	}

	name := sanitizeFileName(originalName)
	folder := PageFolderName(page)
	relPath := path.Join(folder, name)

	absPath, err := s.resolveStoragePath(relPath)
	if err != nil {
		return none, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return none, fmt.Errorf("creating page attachment directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(absPath), name+".tmp-*")
	if err != nil {
		return none, fmt.Errorf("creating temporary attachment file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	sniff := make([]byte, 512)
	sniffN, sniffErr := io.ReadFull(src, sniff)
	if sniffErr != nil && sniffErr != io.EOF && sniffErr != io.ErrUnexpectedEOF {
		return none, fmt.Errorf("reading attachment data: %w", sniffErr)
	}
	sniff = sniff[:sniffN]

	if isExecutableSignature(sniff) {
		return none, ErrExecutableFile
	}
	if !isAllowedMimeType(detectMimeType(sniff)) {
		return none, ErrDisallowedType
	}

	fullReader := io.MultiReader(bytes.NewReader(sniff), src)
	written, err := io.Copy(tmpFile, io.LimitReader(fullReader, s.maxUploadBytes+1))
	if err != nil {
		return none, fmt.Errorf("writing attachment file: %w", err)
	}
	if written > s.maxUploadBytes {
		return none, ErrFileTooLarge
	}
	if err := tmpFile.Close(); err != nil {
		return none, fmt.Errorf("closing temporary attachment file: %w", err)
	}

	if err := os.Rename(tmpPath, absPath); err != nil {
		return none, fmt.Errorf("finalizing attachment file: %w", err)
	}

	return models.FileAttachment{
		Name:              name,
		ServerRelativeURL: "/files/" + relPath,
		Size:              written,
	}, nil
}

// Open returns the stored file for a path previously produced by
// UploadFile, relative to the root (folder/name).
func (s *Service) Open(storagePath string) (*os.File, error) {
	absPath, err := s.resolveStoragePath(storagePath)
	if err != nil {
		return nil, err
	}
	return os.Open(absPath)
}

func (s *Service) resolveStoragePath(storagePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storagePath))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidPath
	}

	return filepath.Join(s.rootDir, clean), nil
}

// PageFolderName derives the per-page folder from the page name,
// falling back to the page id when the name yields nothing usable.
func PageFolderName(page models.PageInfo) string {
	folder := normalizeFolderName(page.PageName)
	if folder == "" {
		folder = normalizeFolderName(page.PageUniqueID)
	}
	if folder == "" {
		folder = "page"
	}
	return folder
}

func normalizeFolderName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(filepath.FromSlash(name)))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload.bin"
	}
	if len(name) > 255 {
		return name[:255]
	}
	return name
}

func detectMimeType(sniff []byte) string {
	if len(sniff) == 0 {
		return "application/octet-stream"
	}

	return trimMimeParams(http.DetectContentType(sniff))
}

func isExecutableSignature(sniff []byte) bool {
	if len(sniff) < 2 {
		return false
	}

	if sniff[0] == 'M' && sniff[1] == 'Z' {
		return true // PE/COFF (Windows)
	}
	if len(sniff) >= 4 {
		if bytes.Equal(sniff[:4], []byte{0x7f, 'E', 'L', 'F'}) {
			return true // ELF
		}

		machoMagics := [][]byte{
			{0xfe, 0xed, 0xfa, 0xce},
			{0xce, 0xfa, 0xed, 0xfe},
			{0xfe, 0xed, 0xfa, 0xcf},
			{0xcf, 0xfa, 0xed, 0xfe},
			{0xca, 0xfe, 0xba, 0xbe},
			{0xbe, 0xba, 0xfe, 0xca},
			{0xca, 0xfe, 0xba, 0xbf},
			{0xbf, 0xba, 0xfe, 0xca},
		}
		for _, magic := range machoMagics {
			if bytes.Equal(sniff[:4], magic) {
				return true
			}
		}
	}

	if sniff[0] == '#' && sniff[1] == '!' {
		return true // shebang scripts
	}

	return false
}

func trimMimeParams(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

func isAllowedMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return false
	}

	disallowed := map[string]struct{}{
		"image/svg+xml":               {},
		"text/html":                   {},
		"application/xhtml+xml":       {},
		"application/javascript":      {},
		"text/javascript":             {},
		"application/x-javascript":    {},
		"text/ecmascript":             {},
		"application/ecmascript":      {},
		"application/x-httpd-php":     {},
		"application/x-sh":            {},
		"application/x-msdownload":    {},
		"application/x-msdos-program": {},
	}
	_, blocked := disallowed[mimeType]
	return !blocked
}
