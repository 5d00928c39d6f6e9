package db

import (
	"context"
	"encoding/json"
	"fmt"

	"pagechat/internal/models"
	"pagechat/internal/richtext"
)

// MessageRepository is the message-store collaborator: it persists
// chat entries and lists them per page scope, ascending by id.
type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// AddMessage inserts m and returns the assigned id. The markup field
// passes through the storage policy as a second gate; mention and
// attachment lists are stored as opaque JSON, the way the original
// list columns held them.
func (r *MessageRepository) AddMessage(ctx context.Context, m *models.ChatMessage) (int64, error) {
	mentions, err := json.Marshal(emptyIfNilMentions(m.Mentions))
	if err != nil {
		return 0, fmt.Errorf("encoding mentions: %w", err)
	}
	attachments, err := json.Marshal(emptyIfNilAttachments(m.Attachments))
	if err != nil {
		return 0, fmt.Errorf("encoding attachments: %w", err)
	}

	safe := richtext.StorePolicy().Sanitize(m.Text)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (author_id, author_name, author_email, message, mentions_json, attachments_json, page_unique_id, page_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Author.ID, m.Author.DisplayName, m.Author.Email,
		safe, string(mentions), string(attachments),
		m.PageUniqueID, m.PageName, m.Created,
	)
	if err != nil {
		return 0, fmt.Errorf("creating message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading assigned message id: %w", err)
	}
	return id, nil
}

// ListMessages returns the messages of one page scope with id >
// afterID, ascending by id.
func (r *MessageRepository) ListMessages(ctx context.Context, pageUniqueID string, afterID int64) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author_id, author_name, author_email, message, mentions_json, attachments_json, page_unique_id, page_name, created_at
		 FROM messages
		 WHERE page_unique_id = ? AND id > ?
		 ORDER BY id ASC`,
		pageUniqueID, afterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var (
			m           models.ChatMessage
			id          int64
			mentions    string
			attachments string
		)
		err := rows.Scan(&id, &m.Author.ID, &m.Author.DisplayName, &m.Author.Email,
			&m.Text, &mentions, &attachments, &m.PageUniqueID, &m.PageName, &m.Created)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		m.ID = &id
		if err := json.Unmarshal([]byte(mentions), &m.Mentions); err != nil {
			return nil, fmt.Errorf("decoding mentions for message %d: %w", id, err)
		}
		if err := json.Unmarshal([]byte(attachments), &m.Attachments); err != nil {
			return nil, fmt.Errorf("decoding attachments for message %d: %w", id, err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}

func emptyIfNilMentions(s []models.UserMention) []models.UserMention {
	if s == nil {
		return []models.UserMention{}
	}
	return s
}

func emptyIfNilAttachments(s []models.FileAttachment) []models.FileAttachment {
	if s == nil {
		return []models.FileAttachment{}
	}
	return s
}
