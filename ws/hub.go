package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/game"
	"go-cultivation/repository"
	"go-cultivation/service"
	"go-cultivation/utils"
)

const finalSaveTimeout = 5 * time.Second

var ErrAlreadyOnline = errors.New("this cultivator is already connected elsewhere")

type HubConfig struct {
	Store    *repository.Store
	Accounts *service.Accounts
	Market   *service.Market
	Sects    *service.SectRegistry
	Chat     *service.Chat
	Catalog  *catalog.Catalog
	Tokens   *utils.Tokens
	Pacing   time.Duration
	Log      *zap.Logger
}

// Hub tracks every online player and runs their sessions.
type Hub struct {
	ctx      context.Context
	store    *repository.Store
	accounts *service.Accounts
	market   *service.Market
	sects    *service.SectRegistry
	chat     *service.Chat
	cat      *catalog.Catalog
	tokens   *utils.Tokens
	pacing   time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	online map[string]*client
	wg     sync.WaitGroup
}

// NewHub builds a hub whose sessions end when ctx is cancelled.
func NewHub(ctx context.Context, cfg HubConfig) *Hub {
	return &Hub{
		ctx:      ctx,
		store:    cfg.Store,
		accounts: cfg.Accounts,
		market:   cfg.Market,
		sects:    cfg.Sects,
		chat:     cfg.Chat,
		cat:      cfg.Catalog,
		tokens:   cfg.Tokens,
		pacing:   cfg.Pacing,
		log:      cfg.Log.Named("ws"),
		online:   make(map[string]*client),
	}
}

// Online is the number of connected players.
func (h *Hub) Online() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.online)
}

// Wait blocks until every session has made its final save.
func (h *Hub) Wait() { h.wg.Wait() }

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.online[c.playerID]; ok {
		return ErrAlreadyOnline
	}
	h.online[c.playerID] = c
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.online[c.playerID] == c {
		delete(h.online, c.playerID)
	}
}

// HandleWebSocket authenticates the token query parameter and upgrades
// the request into a game session.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	claims, err := h.tokens.Parse(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	conn, err := upgradeConnection(c)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	h.Serve(claims.PlayerID, &dto.RealConn{Conn: conn})
}

// Serve runs one player's session on conn until it disconnects, logs out
// or the hub shuts down.
func (h *Hub) Serve(playerID string, conn ReadWriteConn) {
	h.wg.Add(1)
	defer h.wg.Done()

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	// Claim the id before loading: loading drains the inbox, which would
	// race a session that is already running.
	c := newClient(h, playerID, conn)
	if err := h.register(c); err != nil {
		c.sendError(game.UserMessage(err))
		return
	}
	defer h.unregister(c)

	p, credits, err := h.accounts.Load(ctx, playerID)
	if err != nil {
		c.log.Warn("load player for session", zap.Error(err))
		c.sendError("Could not load your cultivator.")
		return
	}
	c.name = p.Name

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	h.listen(ctx, c)

	s := game.NewSession(game.Config{
		Catalog: h.cat,
		Players: h.accounts.Players(),
		Market:  h.market,
		Sects:   h.sects,
		Display: c,
		Rand:    rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		Pacing:  h.pacing,
		Log:     h.log,
	}, p)

	c.send(dto.EventInit, map[string]interface{}{"playerId": p.PlayerID, "name": p.Name})
	if recent, err := h.chat.Recent(ctx); err == nil {
		for _, msg := range recent {
			c.DisplayChatMessage(msg)
		}
	}
	s.Start(ctx, credits)
	c.log.Info("session started", zap.Int("online", h.Online()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(ctx, s, cancel)
	}()
	c.readLoop(ctx)
	cancel()
	<-done

	saveCtx, cancelSave := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer cancelSave()
	if _, err := h.accounts.Players().Save(saveCtx, p); err != nil {
		c.log.Error("final save failed", zap.Error(err))
	}
	c.log.Info("session ended")
}

// listen wires the chat feed and the player's inbox notifications. Both
// subscriptions are live before it returns.
func (h *Hub) listen(ctx context.Context, c *client) {
	if err := h.chat.Listen(ctx, c.DisplayChatMessage); err != nil {
		c.log.Warn("chat subscription failed", zap.Error(err))
	}
	sub, err := h.store.Subscribe(ctx, repository.PlayersCollection)
	if err != nil {
		c.log.Warn("inbox subscription failed", zap.Error(err))
		return
	}
	go func() {
		defer sub.Close()
		for ch := range sub.C {
			if ch.ID == c.playerID && ch.Kind == repository.ChangeCredit {
				c.queueSync()
			}
		}
	}()
}
