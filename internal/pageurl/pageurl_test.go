package pageurl

import (
	"testing"

	"pagechat/internal/models"
)

func TestDeepLink(t *testing.T) {
	page := models.PageInfo{PageUniqueID: "c5e3-f1", PageName: "Team Home"}

	got := DeepLink("https://portal.example.com/", page)
	want := "https://portal.example.com/pages/c5e3-f1"
	if got != want {
		t.Fatalf("DeepLink() = %q, want %q", got, want)
	}
}

func TestFile(t *testing.T) {
	got := File("https://portal.example.com", "/files/team-home/notes.txt")
	want := "https://portal.example.com/files/team-home/notes.txt"
	if got != want {
		t.Fatalf("File() = %q, want %q", got, want)
	}
}

func TestParseFilePath(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"/files/team-home/notes.txt", "team-home/notes.txt", true},
		{"https://portal.example.com/files/team-home/notes.txt", "team-home/notes.txt", true},
		{"/files/notes.txt", "", false},
		{"/files/a/b/c", "", false},
		{"/files/../etc", "", false},
		{"/media/blob123", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseFilePath(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseFilePath(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
