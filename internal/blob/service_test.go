package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"pagechat/internal/models"
)

var testPage = models.PageInfo{PageUniqueID: "c5e3f1", PageName: "Team Home"}

func TestUploadFileStoresUnderPageFolder(t *testing.T) {
	svc, err := NewService(t.TempDir(), 1024*1024)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	att, err := svc.UploadFile(context.Background(), testPage, "notes.bin", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if att.Name != "notes.bin" {
		t.Fatalf("att.Name = %q, want notes.bin", att.Name)
	}
	if att.ServerRelativeURL != "/files/team-home/notes.bin" {
		t.Fatalf("att.ServerRelativeURL = %q, want /files/team-home/notes.bin", att.ServerRelativeURL)
	}
	if att.Size != int64(len(data)) {
		t.Fatalf("att.Size = %d, want %d", att.Size, len(data))
	}

	f, err := svc.Open("team-home/notes.bin")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	stored, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Fatalf("stored bytes = %v, want %v", stored, data)
	}
}

func TestUploadFileOverwritesSameName(t *testing.T) {
	svc, err := NewService(t.TempDir(), 1024*1024)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	ctx := context.Background()
	first := []byte("first version")
	if _, err := svc.UploadFile(ctx, testPage, "doc.txt", int64(len(first)), bytes.NewReader(first)); err != nil {
		t.Fatalf("first UploadFile() error = %v", err)
	}
	second := []byte("second version")
	if _, err := svc.UploadFile(ctx, testPage, "doc.txt", int64(len(second)), bytes.NewReader(second)); err != nil {
		t.Fatalf("second UploadFile() error = %v", err)
	}

	f, err := svc.Open("team-home/doc.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	stored, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(stored) != "second version" {
		t.Fatalf("stored = %q, want second version", stored)
	}
}

func TestUploadFileRejectsExecutableSignature(t *testing.T) {
	svc, err := NewService(t.TempDir(), 1024*1024)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	data := []byte("MZ\x90\x00\x03\x00")
	_, err = svc.UploadFile(context.Background(), testPage, "payload.png", int64(len(data)), bytes.NewReader(data))
	if !errors.Is(err, ErrExecutableFile) {
		t.Fatalf("UploadFile() error = %v, want ErrExecutableFile", err)
	}
}

func TestUploadFileRejectsOversizedStream(t *testing.T) {
	svc, err := NewService(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	// Declared size fits but the stream is larger than the cap.
	data := strings.Repeat("a", 64)
	_, err = svc.UploadFile(context.Background(), testPage, "big.txt", 8, strings.NewReader(data))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("UploadFile() error = %v, want ErrFileTooLarge", err)
	}

	_, err = svc.UploadFile(context.Background(), testPage, "big.txt", 1024, strings.NewReader(data))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("UploadFile() error = %v, want ErrFileTooLarge", err)
	}
}

func TestUploadFileSanitizesTraversalNames(t *testing.T) {
	root := t.TempDir()
	svc, err := NewService(root, 1024)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	data := []byte("plain text payload")
	att, err := svc.UploadFile(context.Background(), testPage, "../../etc/passwd", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if att.Name != "passwd" {
		t.Fatalf("att.Name = %q, want passwd", att.Name)
	}
	if _, err := os.Stat(root + "/team-home/passwd"); err != nil {
		t.Fatalf("expected file inside page folder: %v", err)
	}
}

func TestOpenRejectsPathsOutsideRoot(t *testing.T) {
	svc, err := NewService(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	for _, p := range []string{"../secrets", "/etc/passwd", "."} {
		if _, err := svc.Open(p); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("Open(%q) error = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestPageFolderName(t *testing.T) {
	tests := []struct {
		name string
		page models.PageInfo
		want string
	}{
		{"plain name", models.PageInfo{PageName: "Team Home"}, "team-home"},
		{"punctuation stripped", models.PageInfo{PageName: "Q3 / Plans!"}, "q3-plans"},
		{"falls back to id", models.PageInfo{PageUniqueID: "abc123", PageName: "///"}, "abc123"},
		{"empty page", models.PageInfo{}, "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageFolderName(tt.page); got != tt.want {
				t.Fatalf("PageFolderName() = %q, want %q", got, tt.want)
			}
		})
	}
}
