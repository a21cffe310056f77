package client

import (
	"context"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/message"
)

type MessagesAPI struct{ c *Client }

// Folder lists the "inbox" (default) or "sent" messages of the signed-in user, newest first.
func (api MessagesAPI) Folder(ctx context.Context, folder string, page core.Page) ([]message.Message, error) {
	var msgs []message.Message
	err := api.c.get(ctx, "/messages", pageParams(params("folder", folder), page), &msgs)
	return msgs, err
}

func (api MessagesAPI) Send(ctx context.Context, nm message.NewMessage) (message.Message, error) {
	var m message.Message
	err := api.c.post(ctx, "/messages", nm, &m)
	return m, err
}

// Get opens a message, marking it read when the caller is its recipient.
func (api MessagesAPI) Get(ctx context.Context, id string) (message.Message, error) {
	var m message.Message
	err := api.c.get(ctx, pathID("/messages", id), nil, &m)
	return m, err
}

func (api MessagesAPI) Contacts(ctx context.Context, search string) ([]message.Contact, error) {
	var contacts []message.Contact
	err := api.c.get(ctx, "/messages/users", params("q", search), &contacts)
	return contacts, err
}
