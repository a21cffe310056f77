package message

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Folders
const (
	FolderInbox = "inbox"
	FolderSent  = "sent"
)

type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Body        string    `db:"body" json:"body"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	ReadAt      null.Time `db:"read_at" json:"read_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	SenderEmail    string `db:"sender_email" json:"sender_email,omitempty"`
	RecipientEmail string `db:"recipient_email" json:"recipient_email,omitempty"`
}

type NewMessage struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"max=200"`
	Body        string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Body = core.CleanString(nm.Body)
	return validate.Struct(nm)
}

// Contact is a user one can write to.
type Contact struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	Role        string `db:"role" json:"role"`
	DisplayName string `db:"display_name" json:"display_name"`
}
