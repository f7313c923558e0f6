package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"go-cultivation/entities"
	"go-cultivation/repository"
)

const (
	MaxChatLength = 200
	ChatHistory   = 50
)

// Chat is the append-only global channel.
type Chat struct {
	store *repository.Store
	repo  *repository.ChatRepo
	log   *zap.Logger
}

func NewChat(store *repository.Store, log *zap.Logger) *Chat {
	return &Chat{store: store, repo: repository.NewChatRepo(store), log: log.Named("chat")}
}

// Send validates and stores a message from the player.
func (c *Chat) Send(ctx context.Context, sender *entities.Player, text string) (entities.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.ChatMessage{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return entities.ChatMessage{}, ErrMessageTooLong
	}
	return c.repo.Append(ctx, entities.ChatMessage{
		SenderID:   sender.PlayerID,
		SenderName: sender.Name,
		Text:       text,
	})
}

// Recent returns the latest messages, oldest first.
func (c *Chat) Recent(ctx context.Context) ([]entities.ChatMessage, error) {
	return c.repo.Recent(ctx, ChatHistory)
}

// Listen calls fn for every new message until ctx is done. It returns once
// the subscription is live, so messages sent afterwards are not missed.
func (c *Chat) Listen(ctx context.Context, fn func(entities.ChatMessage)) error {
	sub, err := c.store.Subscribe(ctx, repository.ChatCollection)
	if err != nil {
		return err
	}
	go func() {
		defer sub.Close()
		for ch := range sub.C {
			msg, err := c.repo.Get(ctx, ch.ID)
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				c.log.Warn("load chat message", zap.String("id", ch.ID), zap.Error(err))
				continue
			}
			fn(msg)
		}
	}()
	return nil
}
