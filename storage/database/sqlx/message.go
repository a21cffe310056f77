package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/message"
)

// contactName is the profile name of a user, falling back to the email.
const contactName = `COALESCE(
	t.first_name || ' ' || t.last_name,
	s.first_name || ' ' || s.last_name,
	p.first_name || ' ' || p.last_name,
	u.email)`

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo messageRepository) QueryInbox(ctx context.Context, userID string, page core.Page) ([]message.Message, error) {
	query, args := paginate(`
		SELECT m.*, u.email AS sender_email, '' AS recipient_email
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = ?
		ORDER BY m.created_at DESC`, page, []interface{}{userID})

	messages := []message.Message{}
	err := selectAll(ctx, repo.db, &messages, query, args...)
	return messages, trap(err, message.ErrNotFound, "querying inbox")
}

func (repo messageRepository) QuerySent(ctx context.Context, userID string, page core.Page) ([]message.Message, error) {
	query, args := paginate(`
		SELECT m.*, '' AS sender_email, u.email AS recipient_email
		FROM messages m
		JOIN users u ON u.id = m.recipient_id
		WHERE m.sender_id = ?
		ORDER BY m.created_at DESC`, page, []interface{}{userID})

	messages := []message.Message{}
	err := selectAll(ctx, repo.db, &messages, query, args...)
	return messages, trap(err, message.ErrNotFound, "querying sent messages")
}

func (repo messageRepository) GetMessage(ctx context.Context, id string) (message.Message, error) {
	var m message.Message
	err := get(ctx, repo.db, &m, `
		SELECT m.*, su.email AS sender_email, ru.email AS recipient_email
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.recipient_id
		WHERE m.id = ?`, id)
	return m, trap(err, message.ErrNotFound, "getting message")
}

func (repo messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO messages (id, sender_id, recipient_id, subject, body, is_read, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.RecipientID, m.Subject, m.Body, m.IsRead, m.ReadAt, m.CreatedAt)
	return m, trap(err, message.ErrNotFound, "inserting message")
}

func (repo messageRepository) MarkRead(ctx context.Context, m message.Message) (message.Message, error) {
	_, err := exec(ctx, repo.db, "UPDATE messages SET is_read = ?, read_at = ? WHERE id = ?", m.IsRead, m.ReadAt, m.ID)
	return m, trap(err, message.ErrNotFound, "marking message read")
}

func (repo messageRepository) QueryContacts(ctx context.Context, userID, search string, limit int) ([]message.Contact, error) {
	var cond conditions
	cond.add("u.is_active = ?", true)
	cond.add("u.id <> ?", userID)
	if search != "" {
		val := "%" + search + "%"
		cond.add("(LOWER(u.email) LIKE ? OR LOWER("+contactName+") LIKE ?)", val, val)
	}
	cond.args = append(cond.args, limit)

	contacts := []message.Contact{}
	err := selectAll(ctx, repo.db, &contacts, `
		SELECT u.id, u.email, u.role, `+contactName+` AS display_name
		FROM users u
		LEFT JOIN teachers t ON t.user_id = u.id
		LEFT JOIN students s ON s.user_id = u.id
		LEFT JOIN parents p ON p.user_id = u.id`+cond.where()+`
		ORDER BY LOWER(`+contactName+`), u.email
		LIMIT ?`, cond.args...)
	return contacts, trap(err, message.ErrNotFound, "querying contacts")
}
