package chat

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"pagechat/internal/models"
	"pagechat/internal/richtext"
)

// Pipeline orchestrates one outbound send: sanitize, upload staged
// attachments, persist the message, notify mentioned users. A
// pipeline is single-flight; a send started while another is in
// flight is rejected, not queued.
type Pipeline struct {
	store    MessageStore
	files    FileStore
	notifier Notifier
	author   models.UserMention
	deepLink func(models.PageInfo) string

	busy atomic.Bool
}

func NewPipeline(store MessageStore, files FileStore, notifier Notifier, author models.UserMention, deepLink func(models.PageInfo) string) *Pipeline {
	return &Pipeline{
		store:    store,
		files:    files,
		notifier: notifier,
		author:   author,
		deepLink: deepLink,
	}
}

// Send runs the pipeline for draft. On success the returned message
// carries the store-assigned id and is ready for optimistic display.
// On any failure the caller's composition state must be left intact
// for retry; partial side effects (files uploaded before a later step
// failed) are not rolled back.
func (p *Pipeline) Send(ctx context.Context, draft Draft) (*models.ChatMessage, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer p.busy.Store(false)

	safe := richtext.Sanitize(draft.HTML)
	plain := richtext.PlainText(safe)

	if richtext.IsBlank(safe) && len(draft.Files) == 0 {
		return nil, NewValidationError("Write a message or attach a file")
	}

	for _, f := range draft.Files {
		if f.Size > MaxAttachmentBytes {
			return nil, NewValidationError("File %s exceeds 5MB", f.Name)
		}
	}

	attachments := make([]models.FileAttachment, 0, len(draft.Files))
	for _, f := range draft.Files {
		uploaded, err := p.files.UploadFile(ctx, draft.Page, f.Name, f.Size, f.Data)
		if err != nil {
			return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
		}
		attachments = append(attachments, uploaded)
	}

	msg := &models.ChatMessage{
		Text:         safe,
		Created:      time.Now().UTC(),
		Author:       p.author,
		Mentions:     append([]models.UserMention(nil), draft.Mentions...),
		Attachments:  attachments,
		PageUniqueID: draft.Page.PageUniqueID,
		PageName:     draft.Page.PageName,
	}

	id, err := p.store.AddMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("persisting message: %w", err)
	}
	msg.ID = &id

	if len(msg.Mentions) > 0 {
		preview := truncateRunes(plain, MentionPreviewLen)
		link := ""
		if p.deepLink != nil {
			link = p.deepLink(draft.Page)
		}
		if err := p.notifier.NotifyMentions(ctx, p.author.DisplayName, msg.Mentions, preview, link); err != nil {
			// The message is already persisted; it stands regardless
			// of the notification outcome and shows up on the next
			// poll even though this send reports the failure.
			return nil, fmt.Errorf("notifying mentioned users: %w", err)
		}
	}

	return msg, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
