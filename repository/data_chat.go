package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"go-cultivation/entities"
)

const (
	ChatCollection = "chatMessages"
	chatByTimeKey  = "chatMessages:byTime"
)

type ChatRepo struct {
	store *Store
}

func NewChatRepo(store *Store) *ChatRepo {
	return &ChatRepo{store: store}
}

// Append stores a message stamped with server time and returns it with
// its id and timestamp filled in.
func (r *ChatRepo) Append(ctx context.Context, msg entities.ChatMessage) (entities.ChatMessage, error) {
	now, err := r.store.ServerTime(ctx)
	if err != nil {
		return msg, err
	}
	msg.Timestamp = now.UnixMilli()
	err = r.store.RunTransaction(ctx, func(tx *Tx) error {
		id, err := tx.Add(ChatCollection, msg)
		if err != nil {
			return err
		}
		msg.MessageID = id
		ts := msg.Timestamp
		tx.Queue(func(pipe redis.Pipeliner) {
			pipe.ZAdd(tx.Context(), chatByTimeKey, &redis.Z{Score: float64(ts), Member: id})
		})
		return nil
	})
	if err != nil {
		return msg, fmt.Errorf("append chat: %w", err)
	}
	return msg, nil
}

// Get loads one message by id.
func (r *ChatRepo) Get(ctx context.Context, id string) (entities.ChatMessage, error) {
	var msg entities.ChatMessage
	if err := r.store.Get(ctx, ChatCollection, id, &msg); err != nil {
		return msg, err
	}
	msg.MessageID = id
	return msg, nil
}

// Recent returns the last n messages, oldest first.
func (r *ChatRepo) Recent(ctx context.Context, n int) ([]entities.ChatMessage, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := r.store.rdb.ZRevRange(ctx, chatByTimeKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent chat: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = DocKey(ChatCollection, id)
	}
	vals, err := r.store.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}

	out := make([]entities.ChatMessage, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		s, ok := vals[i].(string)
		if !ok {
			continue
		}
		var msg entities.ChatMessage
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			continue
		}
		msg.MessageID = ids[i]
		out = append(out, msg)
	}
	return out, nil
}
