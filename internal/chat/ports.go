// Package chat owns the outbound send pipeline and the narrow
// contracts through which the component reaches its host-provided
// collaborators: message store, file store, notification sender, and
// member directory.
package chat

import (
	"context"
	"io"

	"pagechat/internal/models"
)

// MaxAttachmentBytes is the per-file attachment cap, enforced before
// any upload call is made.
const MaxAttachmentBytes = 5 << 20

// MentionPreviewLen is the number of plain-text characters included in
// a mention notification.
const MentionPreviewLen = 200

// MessageStore persists and lists chat messages. AddMessage returns
// the assigned id, monotonically increasing per page scope.
// ListMessages returns messages with id > afterID, ascending by id.
type MessageStore interface {
	AddMessage(ctx context.Context, m *models.ChatMessage) (int64, error)
	ListMessages(ctx context.Context, pageUniqueID string, afterID int64) ([]models.ChatMessage, error)
}

// FileStore uploads one attachment into the page's folder. It applies
// no size policy of its own; the pipeline enforces the cap first.
type FileStore interface {
	UploadFile(ctx context.Context, page models.PageInfo, name string, size int64, src io.Reader) (models.FileAttachment, error)
}

// Notifier delivers a mention notice to every recipient, carrying a
// bounded preview and a deep link back to the originating page.
type Notifier interface {
	NotifyMentions(ctx context.Context, fromDisplayName string, recipients []models.UserMention, preview, deepLink string) error
}

// MemberDirectory enumerates the site members eligible for mention.
type MemberDirectory interface {
	ListMembers(ctx context.Context) ([]models.UserMention, error)
}

// StagedFile is an attachment waiting in a composition for send.
type StagedFile struct {
	Name string
	Size int64
	Data io.Reader
}

// Draft is the immutable input to one send: the composed markup, the
// accumulated mention set, the staged files, and the page scope.
type Draft struct {
	HTML     string
	Mentions []models.UserMention
	Files    []StagedFile
	Page     models.PageInfo
}
