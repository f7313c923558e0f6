package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-cultivation/entities"
	"go-cultivation/repository"
)

// Accounts creates and authenticates players.
type Accounts struct {
	store   *repository.Store
	players *repository.PlayerRepo
	log     *zap.Logger
}

func NewAccounts(store *repository.Store, log *zap.Logger) *Accounts {
	return &Accounts{store: store, players: repository.NewPlayerRepo(store), log: log.Named("accounts")}
}

// Players exposes the player repository for sessions.
func (a *Accounts) Players() *repository.PlayerRepo { return a.players }

// Create registers a new cultivator with starting stats.
func (a *Accounts) Create(ctx context.Context, username, password, name string) (*entities.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	p := entities.NewPlayer(a.store.NewID(), username, password, strings.TrimSpace(name))
	if err := a.players.Create(ctx, p); err != nil {
		return nil, err
	}
	a.log.Info("player created", zap.String("player", p.PlayerID), zap.String("username", username))
	return p, nil
}

// Login checks the stored credential pair and returns the player.
func (a *Accounts) Login(ctx context.Context, username, password string) (*entities.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	p, err := a.players.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if p.Password != password {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// Load fetches a player for a new session and folds in any pending
// inbox credits.
func (a *Accounts) Load(ctx context.Context, playerID string) (*entities.Player, map[string]int, error) {
	p, err := a.players.Get(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	credits, err := a.players.Save(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return p, credits, nil
}
