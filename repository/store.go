package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrTxConflict = errors.New("transaction kept conflicting, giving up")
)

// Change is published after a committed write.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Kind       string `json:"kind"`
}

// Store is a small document database over Redis: JSON documents under
// "<collection>:<id>", hash documents for listings, field indexes as
// hashes, and a change feed on "changes:<collection>".
type Store struct {
	rdb        *redis.Client
	maxRetries int
	log        *zap.Logger
}

func NewStore(rdb *redis.Client, maxRetries int, log *zap.Logger) *Store {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Store{rdb: rdb, maxRetries: maxRetries, log: log.Named("store")}
}

func DocKey(collection, id string) string { return fmt.Sprintf("%s:%s", collection, id) }

func indexKey(collection, field string) string {
	return fmt.Sprintf("idx:%s:%s", collection, field)
}

func changeChannel(collection string) string { return "changes:" + collection }

// NewID generates a document id.
func (s *Store) NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ServerTime asks Redis for its clock so every client stamps the same way.
func (s *Store) ServerTime(ctx context.Context) (time.Time, error) {
	t, err := s.rdb.Time(ctx).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", err)
	}
	return t, nil
}

// Get decodes a JSON document.
func (s *Store) Get(ctx context.Context, collection, id string, out interface{}) error {
	raw, err := s.rdb.Get(ctx, DocKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

// Set writes a JSON document and publishes the change.
func (s *Store) Set(ctx context.Context, collection, id string, v interface{}) error {
	return s.RunTransaction(ctx, func(tx *Tx) error {
		return tx.Set(collection, id, v)
	})
}

// Add stores v under a generated id.
func (s *Store) Add(ctx context.Context, collection string, v interface{}) (string, error) {
	var id string
	err := s.RunTransaction(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.Add(collection, v)
		return err
	})
	return id, err
}

// Lookup resolves a unique field value to a document id.
func (s *Store) Lookup(ctx context.Context, collection, field, value string) (string, error) {
	id, err := s.rdb.HGet(ctx, indexKey(collection, field), value).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s.%s: %w", collection, field, err)
	}
	return id, nil
}

// RunTransaction runs fn with optimistic locking. Every document fn reads
// through tx is WATCHed; queued writes commit in one MULTI/EXEC. If another
// client touched a watched key the whole fn runs again, so fn must only
// stage changes and must not mutate caller state.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &Tx{ctx: ctx, rtx: rtx, store: s}
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.ops) == 0 && len(tx.changes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, op := range tx.ops {
					op(pipe)
				}
				for _, ch := range tx.changes {
					payload, _ := json.Marshal(ch)
					pipe.Publish(ctx, changeChannel(ch.Collection), payload)
				}
				return nil
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("transaction conflict, retrying", zap.Int("attempt", attempt))
			continue
		}
		return err
	}
	return ErrTxConflict
}

// Tx is the handle passed to RunTransaction callbacks.
type Tx struct {
	ctx     context.Context
	rtx     *redis.Tx
	store   *Store
	ops     []func(redis.Pipeliner)
	changes []Change
}

func (t *Tx) Context() context.Context { return t.ctx }

func (t *Tx) watch(key string) error {
	if err := t.rtx.Watch(t.ctx, key).Err(); err != nil {
		return fmt.Errorf("watch %s: %w", key, err)
	}
	return nil
}

// Get reads and watches a JSON document.
func (t *Tx) Get(collection, id string, out interface{}) error {
	key := DocKey(collection, id)
	if err := t.watch(key); err != nil {
		return err
	}
	raw, err := t.rtx.Get(t.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Exists watches a document and reports whether it is present.
func (t *Tx) Exists(collection, id string) (bool, error) {
	key := DocKey(collection, id)
	if err := t.watch(key); err != nil {
		return false, err
	}
	n, err := t.rtx.Exists(t.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

// GetHash reads and watches a hash document.
func (t *Tx) GetHash(collection, id string) (map[string]string, error) {
	m, err := t.HashAt(DocKey(collection, id))
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, ErrNotFound
	}
	return m, nil
}

// HashAt reads and watches an arbitrary hash key; a missing key is empty.
func (t *Tx) HashAt(key string) (map[string]string, error) {
	if err := t.watch(key); err != nil {
		return nil, err
	}
	m, err := t.rtx.HGetAll(t.ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return m, nil
}

// Lookup resolves and watches a unique index entry.
func (t *Tx) Lookup(collection, field, value string) (string, error) {
	key := indexKey(collection, field)
	if err := t.watch(key); err != nil {
		return "", err
	}
	id, err := t.rtx.HGet(t.ctx, key, value).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("hget %s: %w", key, err)
	}
	return id, nil
}

// Set queues a JSON document write.
func (t *Tx) Set(collection, id string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	key := DocKey(collection, id)
	t.Queue(func(pipe redis.Pipeliner) {
		pipe.Set(t.ctx, key, raw, 0)
	}, Change{Collection: collection, ID: id, Kind: "set"})
	return nil
}

// Add queues a JSON document under a generated id.
func (t *Tx) Add(collection string, v interface{}) (string, error) {
	id := t.store.NewID()
	if err := t.Set(collection, id, v); err != nil {
		return "", err
	}
	return id, nil
}

// SetHash queues a hash document write.
func (t *Tx) SetHash(collection, id string, fields map[string]interface{}) {
	key := DocKey(collection, id)
	t.Queue(func(pipe redis.Pipeliner) {
		pipe.HSet(t.ctx, key, fields)
	}, Change{Collection: collection, ID: id, Kind: "set"})
}

// SetIndex queues a unique index entry.
func (t *Tx) SetIndex(collection, field, value, id string) {
	key := indexKey(collection, field)
	t.Queue(func(pipe redis.Pipeliner) {
		pipe.HSet(t.ctx, key, value, id)
	})
}

// Queue adds a raw command to the commit pipeline, with optional change
// notifications published after it.
func (t *Tx) Queue(op func(pipe redis.Pipeliner), changes ...Change) {
	t.ops = append(t.ops, op)
	t.changes = append(t.changes, changes...)
}

// Subscription delivers changes until Close or context cancellation.
type Subscription struct {
	C    <-chan Change
	ps   *redis.PubSub
	once sync.Once
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() { err = s.ps.Close() })
	return err
}

// Subscribe listens for changes on the given collections. It returns once
// Redis has confirmed the subscription.
func (s *Store) Subscribe(ctx context.Context, collections ...string) (*Subscription, error) {
	channels := make([]string, len(collections))
	for i, c := range collections {
		channels[i] = changeChannel(c)
	}
	ps := s.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", collections, err)
	}

	out := make(chan Change, 64)
	sub := &Subscription{C: out, ps: ps}
	msgs := ps.Channel()
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ch Change
				if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
					s.log.Warn("bad change payload", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- ch:
				case <-ctx.Done():
					sub.Close()
					return
				}
			}
		}
	}()
	return sub, nil
}
