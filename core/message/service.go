package message

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

const contactsLimit = 50

var (
	// errors
	ErrNotFound         = errors.Wrap(core.ErrNotFound, "message")
	ErrInvalidFolder    = errors.New("folder must be one of: inbox, sent")
	ErrSelfMessage      = errors.New("you cannot send a message to yourself")
	ErrUnknownRecipient = errors.New("recipient not found")
)

type (
	Repository interface {
		// QueryInbox returns the messages received by userID, newest first, with the sender emails.
		QueryInbox(ctx context.Context, userID string, page core.Page) ([]Message, error)
		// QuerySent returns the messages sent by userID, newest first, with the recipient emails.
		QuerySent(ctx context.Context, userID string, page core.Page) ([]Message, error)
		GetMessage(ctx context.Context, id string) (Message, error)
		CreateMessage(ctx context.Context, m Message) (Message, error)
		MarkRead(ctx context.Context, m Message) (Message, error)
		// QueryContacts returns the active users except userID, ordered by display name.
		QueryContacts(ctx context.Context, userID, search string, limit int) ([]Contact, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo      Repository
		users     UserGetter
		publisher core.Publisher
		logger    core.Logger
	}

	// Sent is published for each new message, so notifiers can alert the recipient.
	Sent struct {
		MessageID   string `json:"message_id"`
		SenderID    string `json:"sender_id"`
		RecipientID string `json:"recipient_id"`
		Subject     string `json:"subject"`
	}
)

func NewService(repo Repository, users UserGetter, publisher core.Publisher, logger core.Logger) *Service {
	return &Service{repo: repo, users: users, publisher: publisher, logger: logger}
}

func (svc *Service) Folder(ctx context.Context, actor user.Actor, folder string, page core.Page) ([]Message, error) {
	switch folder {
	case "", FolderInbox:
		return svc.repo.QueryInbox(ctx, actor.UserID, page)
	case FolderSent:
		return svc.repo.QuerySent(ctx, actor.UserID, page)
	}
	return nil, core.NewFieldError("folder", ErrInvalidFolder.Error())
}

// Send delivers a message to an active user other than the sender.
func (svc *Service) Send(ctx context.Context, actor user.Actor, nm NewMessage) (Message, error) {
	if nm.RecipientID == actor.UserID {
		return Message{}, core.NewFieldError("recipient_id", ErrSelfMessage.Error())
	}
	recipient, err := svc.users.GetByID(ctx, nm.RecipientID)
	if err != nil {
		if core.IsNotFound(err) {
			return Message{}, core.NewFieldError("recipient_id", ErrUnknownRecipient.Error())
		}
		return Message{}, errors.Wrap(err, "getting recipient")
	}
	if !recipient.IsActive {
		return Message{}, core.NewFieldError("recipient_id", ErrUnknownRecipient.Error())
	}

	m, err := svc.repo.CreateMessage(ctx, Message{
		ID:          core.NewID(),
		SenderID:    actor.UserID,
		RecipientID: recipient.ID,
		Subject:     nm.Subject,
		Body:        nm.Body,
		CreatedAt:   core.Now(),
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	evt := Sent{MessageID: m.ID, SenderID: m.SenderID, RecipientID: m.RecipientID, Subject: m.Subject}
	if err = svc.publisher.Publish(ctx, core.EventMessageSent, evt); err != nil {
		svc.logger.Error("message: publishing sent message", err, actor.Person())
	}
	return m, nil
}

// Contacts lists up to 50 active users actor may write to, matching search on email or display name.
func (svc *Service) Contacts(ctx context.Context, actor user.Actor, search string) ([]Contact, error) {
	return svc.repo.QueryContacts(ctx, actor.UserID, core.CleanString(search, true /* lower */), contactsLimit)
}

// Get returns a message the actor sent or received. Opening a received message marks it read.
func (svc *Service) Get(ctx context.Context, actor user.Actor, id string) (Message, error) {
	m, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if m.SenderID != actor.UserID && m.RecipientID != actor.UserID {
		return Message{}, core.ErrForbidden
	}
	if m.RecipientID == actor.UserID && !m.IsRead {
		m.IsRead = true
		m.ReadAt = null.TimeFrom(core.Now())
		return svc.repo.MarkRead(ctx, m)
	}
	return m, nil
}
