package db

import (
	"context"
	"fmt"

	"pagechat/internal/models"
)

// MemberRepository is the member-directory collaborator: the pool of
// users eligible for mention. Members are unique by email,
// case-insensitively.
type MemberRepository struct {
	db *DB
}

func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListMembers returns all members in insertion order, which the
// suggestion picker preserves.
func (r *MemberRepository) ListMembers(ctx context.Context) ([]models.UserMention, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, display_name, email FROM members ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	members := make([]models.UserMention, 0)
	for rows.Next() {
		var m models.UserMention
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.Email); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	return members, nil
}

// Upsert inserts a member unless one with the same email (any
// casing) already exists. The first entry for an email wins.
func (r *MemberRepository) Upsert(ctx context.Context, m models.UserMention) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, display_name, email) VALUES (?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		m.ID, m.DisplayName, m.Email,
	)
	if err != nil {
		return fmt.Errorf("upserting member %s: %w", m.Email, err)
	}
	return nil
}
