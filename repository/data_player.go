package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"go-cultivation/entities"
)

const (
	PlayersCollection = "players"
	usernameField     = "username"

	// ChangeCredit is published when another player's transaction credits
	// an inbox.
	ChangeCredit = "credit"
)

var ErrUsernameTaken = errors.New("username already taken")

// InboxKey holds credits owed to a player by other players' transactions.
// Each player document is written only by its owner's session; everyone
// else credits the inbox, which the owner drains on its next save.
func InboxKey(playerID string) string {
	return fmt.Sprintf("players:%s:inbox", playerID)
}

type PlayerRepo struct {
	store *Store
}

func NewPlayerRepo(store *Store) *PlayerRepo {
	return &PlayerRepo{store: store}
}

// Create persists a new player, enforcing a unique username.
func (r *PlayerRepo) Create(ctx context.Context, p *entities.Player) error {
	return r.store.RunTransaction(ctx, func(tx *Tx) error {
		_, err := tx.Lookup(PlayersCollection, usernameField, p.Username)
		switch {
		case err == nil:
			return ErrUsernameTaken
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := tx.Set(PlayersCollection, p.PlayerID, p); err != nil {
			return err
		}
		tx.SetIndex(PlayersCollection, usernameField, p.Username, p.PlayerID)
		return nil
	})
}

// Get loads a player without draining the inbox.
func (r *PlayerRepo) Get(ctx context.Context, playerID string) (*entities.Player, error) {
	var p entities.Player
	if err := r.store.Get(ctx, PlayersCollection, playerID, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// FindByUsername resolves the username index and loads the player.
func (r *PlayerRepo) FindByUsername(ctx context.Context, username string) (*entities.Player, error) {
	id, err := r.store.Lookup(ctx, PlayersCollection, usernameField, username)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Save writes p, folding any pending inbox credits into it atomically.
// The credits are applied to p only after the commit succeeds and are
// returned so the caller can announce them.
func (r *PlayerRepo) Save(ctx context.Context, p *entities.Player) (map[string]int, error) {
	var credits map[string]int
	err := r.store.RunTransaction(ctx, func(tx *Tx) error {
		inbox, err := tx.HashAt(InboxKey(p.PlayerID))
		if err != nil {
			return err
		}
		credits = parseInbox(inbox)
		staged := p.Clone()
		for item, n := range credits {
			staged.AddItem(item, n)
		}
		if err := tx.Set(PlayersCollection, p.PlayerID, staged); err != nil {
			return err
		}
		if len(inbox) > 0 {
			key := InboxKey(p.PlayerID)
			tx.Queue(func(pipe redis.Pipeliner) {
				pipe.Del(tx.Context(), key)
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save player %s: %w", p.PlayerID, err)
	}
	for item, n := range credits {
		p.AddItem(item, n)
	}
	return credits, nil
}

// CreditInbox queues a credit for another player inside tx.
func CreditInbox(tx *Tx, playerID, item string, n int) {
	key := InboxKey(playerID)
	tx.Queue(func(pipe redis.Pipeliner) {
		pipe.HIncrBy(tx.Context(), key, item, int64(n))
	}, Change{Collection: PlayersCollection, ID: playerID, Kind: ChangeCredit})
}

// PutPlayer queues the caller's own player document inside tx.
func PutPlayer(tx *Tx, p *entities.Player) error {
	return tx.Set(PlayersCollection, p.PlayerID, p)
}

// PlayerExists watches and checks a player document inside tx.
func PlayerExists(tx *Tx, playerID string) (bool, error) {
	return tx.Exists(PlayersCollection, playerID)
}

func parseInbox(raw map[string]string) map[string]int {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]int, len(raw))
	for item, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			continue
		}
		out[item] = n
	}
	return out
}
