package models

import "time"

// UserMention is a lightweight reference to a site member, used both
// for message authors and for users referenced inside a message.
type UserMention struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// FileAttachment describes an uploaded file. ServerRelativeURL is a
// location handle owned by the file store; Size is bytes.
type FileAttachment struct {
	Name              string `json:"name"`
	ServerRelativeURL string `json:"serverRelativeUrl"`
	Size              int64  `json:"size"`
}

// PageInfo identifies the page whose conversation a message belongs to.
type PageInfo struct {
	PageUniqueID string `json:"pageUniqueId"`
	PageName     string `json:"pageName"`
}

// ChatMessage is one posted entry. ID is nil until the store assigns
// one; messages are immutable once created (no edit or delete).
type ChatMessage struct {
	ID           *int64           `json:"id,omitempty"`
	Text         string           `json:"text"`
	Created      time.Time        `json:"created"`
	Author       UserMention      `json:"author"`
	Mentions     []UserMention    `json:"mentions"`
	Attachments  []FileAttachment `json:"attachments"`
	PageUniqueID string           `json:"pageUniqueId"`
	PageName     string           `json:"pageName"`
}
