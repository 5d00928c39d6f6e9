package chat_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"pagechat/internal/chat"
	"pagechat/internal/editor"
	"pagechat/internal/feed"
	"pagechat/internal/models"
)

type memStore struct {
	nextID int64
	saved  []models.ChatMessage
}

func (s *memStore) AddMessage(_ context.Context, m *models.ChatMessage) (int64, error) {
	s.nextID++
	s.saved = append(s.saved, *m)
	return s.nextID, nil
}

func (s *memStore) ListMessages(_ context.Context, page string, afterID int64) ([]models.ChatMessage, error) {
	out := make([]models.ChatMessage, 0)
	for i := range s.saved {
		id := int64(i + 1)
		if s.saved[i].PageUniqueID != page || id <= afterID {
			continue
		}
		m := s.saved[i]
		m.ID = &id
		out = append(out, m)
	}
	return out, nil
}

type memFiles struct{}

func (memFiles) UploadFile(_ context.Context, _ models.PageInfo, name string, size int64, src io.Reader) (models.FileAttachment, error) {
	if _, err := io.Copy(io.Discard, src); err != nil {
		return models.FileAttachment{}, err
	}
	return models.FileAttachment{Name: name, ServerRelativeURL: "/files/team-home/" + name, Size: size}, nil
}

type memNotifier struct {
	recipients []models.UserMention
	preview    string
}

func (n *memNotifier) NotifyMentions(_ context.Context, _ string, recipients []models.UserMention, preview, _ string) error {
	n.recipients = recipients
	n.preview = preview
	return nil
}

// Exercises the full path a user takes: type a message, pick a
// mention suggestion, stage a file, send, and see the message appear
// exactly once in the feed regardless of poll timing.
func TestComposeMentionSendAndPoll(t *testing.T) {
	page := models.PageInfo{PageUniqueID: "page-a", PageName: "Team Home"}
	author := models.UserMention{ID: "u1", DisplayName: "Ada Lovelace", Email: "ada@example.com"}
	grace := models.UserMention{ID: "u2", DisplayName: "Grace Hopper", Email: "grace@example.com"}
	members := []models.UserMention{author, grace,
		{ID: "u3", DisplayName: "Paul Allen", Email: "paul@example.com"}}

	comp := editor.NewComposition()
	comp.Focus()
	comp.InsertText("Ping @gr")

	trigger := comp.Trigger()
	if trigger == nil || trigger.Query != "gr" {
		t.Fatalf("trigger = %+v, want active trigger with query gr", trigger)
	}
	suggestions := editor.FilterSuggestions(members, trigger.Query, 0)
	if len(suggestions) != 1 || suggestions[0].Email != grace.Email {
		t.Fatalf("suggestions = %+v, want just Grace", suggestions)
	}

	if err := comp.AcceptSuggestion(suggestions[0]); err != nil {
		t.Fatalf("AcceptSuggestion() error = %v", err)
	}
	if comp.Trigger() != nil {
		t.Fatal("trigger must be cleared after acceptance")
	}
	comp.InsertText("please review")

	if err := comp.StageFile("notes.txt", 11, strings.NewReader("some notes\n")); err != nil {
		t.Fatalf("StageFile() error = %v", err)
	}

	store := &memStore{}
	notifier := &memNotifier{}
	pipeline := chat.NewPipeline(store, memFiles{}, notifier, author, func(p models.PageInfo) string {
		return "https://portal.example.com/pages/" + p.PageUniqueID
	})

	msg, err := pipeline.Send(context.Background(), comp.Draft(page))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.ID == nil {
		t.Fatal("sent message has no id")
	}
	if !strings.Contains(msg.Text, `data-email="grace@example.com"`) {
		t.Fatalf("persisted markup lost the mention marker: %q", msg.Text)
	}
	if len(notifier.recipients) != 1 || notifier.recipients[0].Email != grace.Email {
		t.Fatalf("notified = %+v, want Grace", notifier.recipients)
	}
	if !strings.Contains(notifier.preview, "@Grace Hopper") {
		t.Fatalf("preview = %q, want plain-text mention label", notifier.preview)
	}

	f := feed.New(page.PageUniqueID)
	f.Load(nil)
	f.Append(*msg)
	comp.Reset()

	if comp.HTML() != "<p></p>" || len(comp.Mentions()) != 0 || len(comp.Files()) != 0 {
		t.Fatalf("composition not cleared: html=%q mentions=%d files=%d",
			comp.HTML(), len(comp.Mentions()), len(comp.Files()))
	}

	// The next poll returns the same message; the feed must not show
	// it twice.
	polled, err := store.ListMessages(context.Background(), page.PageUniqueID, 0)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	f.Merge(polled)

	if f.Len() != 1 {
		t.Fatalf("feed length = %d, want 1", f.Len())
	}
	if f.LastMessageID() != *msg.ID {
		t.Fatalf("high-water mark = %d, want %d", f.LastMessageID(), *msg.ID)
	}
}
