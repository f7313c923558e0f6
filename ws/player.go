package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/game"
)

// job is one unit of work for the session goroutine.
type job struct {
	action string
	args   map[string]interface{}
	sync   bool
}

// client is one connected player. The session is only touched by run;
// everything else talks to it through jobs.
type client struct {
	hub      *Hub
	playerID string
	name     string
	conn     ReadWriteConn
	log      *zap.Logger

	writeMu sync.Mutex
	jobs    chan job
	busy    atomic.Bool

	promptMu  sync.Mutex
	prompt    *pendingPrompt
	promptSeq int
}

func newClient(h *Hub, playerID string, conn ReadWriteConn) *client {
	return &client{
		hub:      h,
		playerID: playerID,
		conn:     conn,
		log:      h.log.With(zap.String("player", playerID)),
		jobs:     make(chan job, 4),
	}
}

func (c *client) send(msgType string, data map[string]interface{}) {
	msg := buildMessage(msgType, data)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		c.log.Debug("write failed", zap.String("type", msgType), zap.Error(err))
	}
}

func (c *client) sendError(message string) {
	c.send(dto.EventError, map[string]interface{}{"message": message})
}

// submit hands an action to the session unless one is already running.
func (c *client) submit(ctx context.Context, action string, args map[string]interface{}) {
	if !c.busy.CompareAndSwap(false, true) {
		c.send(dto.EventBusy, map[string]interface{}{
			"action":  action,
			"message": "Your previous action is still resolving.",
		})
		return
	}
	select {
	case c.jobs <- job{action: action, args: args}:
	case <-ctx.Done():
	}
}

// queueSync asks for a save at the next idle moment. A sync already
// queued covers this one.
func (c *client) queueSync() {
	select {
	case c.jobs <- job{sync: true}:
	default:
	}
}

// run owns the session until ctx ends or the player logs out.
func (c *client) run(ctx context.Context, s *game.Session, logout func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-c.jobs:
			if j.sync {
				s.Sync(ctx)
				continue
			}
			out := s.Handle(ctx, j.action, j.args)
			c.busy.Store(false)
			result := map[string]interface{}{
				"action":  out.Action,
				"ok":      out.Err == nil,
				"unsaved": out.Unsaved,
			}
			if out.Err != nil {
				result["kind"] = out.Kind.String()
			}
			c.send(dto.EventActionResult, result)
			if s.State() == dto.StateLoggedOut {
				c.send(dto.EventLogout, nil)
				logout()
				return
			}
		}
	}
}

type messageHandler func(c *client, ctx context.Context, msgMap map[string]interface{})

var messageHandlers = map[string]messageHandler{
	dto.MsgAction:      handleActionMessage,
	dto.MsgPromptReply: handlePromptReplyMessage,
	dto.MsgPromptClose: handlePromptCancelMessage,
	dto.MsgChat:        handleChatMessage,
}

type actionMessage struct {
	Action string                 `mapstructure:"action"`
	Args   map[string]interface{} `mapstructure:"args"`
}

type promptMessage struct {
	PromptID string `mapstructure:"promptId"`
	Value    string `mapstructure:"value"`
}

type chatMessage struct {
	Text string `mapstructure:"text"`
}

func handleActionMessage(c *client, ctx context.Context, msgMap map[string]interface{}) {
	var m actionMessage
	if err := decodeMessage(msgMap, &m); err != nil || m.Action == "" {
		c.sendError("Malformed action.")
		return
	}
	c.submit(ctx, m.Action, m.Args)
}

func handlePromptReplyMessage(c *client, _ context.Context, msgMap map[string]interface{}) {
	var m promptMessage
	if err := decodeMessage(msgMap, &m); err != nil {
		c.sendError("Malformed reply.")
		return
	}
	c.resolvePrompt(m.PromptID, m.Value, true)
}

func handlePromptCancelMessage(c *client, _ context.Context, msgMap map[string]interface{}) {
	var m promptMessage
	if err := decodeMessage(msgMap, &m); err != nil {
		return
	}
	c.resolvePrompt(m.PromptID, "", false)
}

// handleChatMessage posts as the connected player. Only the id and name
// are used, so the session's document is never read from here.
func handleChatMessage(c *client, ctx context.Context, msgMap map[string]interface{}) {
	var m chatMessage
	if err := decodeMessage(msgMap, &m); err != nil {
		c.sendError("Malformed chat message.")
		return
	}
	sender := entities.NewPlayer(c.playerID, "", "", c.name)
	if _, err := c.hub.chat.Send(ctx, sender, m.Text); err != nil {
		c.log.Debug("chat rejected", zap.Error(err))
		c.sendError(game.UserMessage(err))
	}
}

// readLoop dispatches client messages until the connection fails.
func (c *client) readLoop(ctx context.Context) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug("read ended", zap.Error(err))
			return
		}
		msgMap := make(map[string]interface{})
		if err := json.Unmarshal(msg, &msgMap); err != nil {
			c.log.Debug("bad message", zap.Error(err))
			c.sendError("Malformed message.")
			continue
		}
		msgType, _ := msgMap["type"].(string)
		handler, found := messageHandlers[msgType]
		if !found {
			c.log.Debug("unknown message type", zap.String("type", msgType))
			c.sendError("Unknown message type.")
			continue
		}
		handler(c, ctx, msgMap)
	}
}
