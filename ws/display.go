package ws

import (
	"context"
	"strconv"

	"go-cultivation/dto"
	"go-cultivation/entities"
)

// The client is the session's game.Display: every call becomes one
// JSON event on the socket.

func (c *client) DisplayMessage(text, style string) {
	c.send(dto.EventMessage, map[string]interface{}{"text": text, "style": style})
}

func (c *client) DisplayCombatAction(text, style string) {
	c.send(dto.EventCombatAction, map[string]interface{}{"text": text, "style": style})
}

func (c *client) AppendCombatAction(text, style string) {
	c.send(dto.EventCombatAppend, map[string]interface{}{"text": text, "style": style})
}

func (c *client) UpdateStats(view dto.StatsView) {
	c.send(dto.EventStats, map[string]interface{}{"stats": view})
}

func (c *client) UpdateCombat(view dto.CombatView) {
	c.send(dto.EventCombat, map[string]interface{}{"combat": view})
}

func (c *client) PopulateActions(choices []dto.Choice, target string) {
	if choices == nil {
		choices = []dto.Choice{}
	}
	c.send(dto.EventActions, map[string]interface{}{"choices": choices, "target": target})
}

func (c *client) PopulateInventory(view dto.InventoryView) {
	c.send(dto.EventInventory, map[string]interface{}{"inventory": view})
}

func (c *client) DisplayChatMessage(msg entities.ChatMessage) {
	c.send(dto.EventChat, map[string]interface{}{"message": msg})
}

type promptReply struct {
	value string
	ok    bool
}

type pendingPrompt struct {
	id    string
	reply chan promptReply
}

// Prompt asks the browser for input and waits for the matching reply.
// Dismissal and disconnect both resolve as not ok.
func (c *client) Prompt(ctx context.Context, text, kind string) (string, bool) {
	c.promptMu.Lock()
	c.promptSeq++
	p := &pendingPrompt{id: strconv.Itoa(c.promptSeq), reply: make(chan promptReply, 1)}
	c.prompt = p
	c.promptMu.Unlock()

	defer func() {
		c.promptMu.Lock()
		if c.prompt == p {
			c.prompt = nil
		}
		c.promptMu.Unlock()
	}()

	c.send(dto.EventPrompt, map[string]interface{}{"promptId": p.id, "text": text, "kind": kind})
	select {
	case r := <-p.reply:
		return r.value, r.ok
	case <-ctx.Done():
		return "", false
	}
}

// resolvePrompt answers the open prompt if id still refers to it.
func (c *client) resolvePrompt(id, value string, ok bool) bool {
	c.promptMu.Lock()
	defer c.promptMu.Unlock()
	if c.prompt == nil || c.prompt.id != id {
		return false
	}
	c.prompt.reply <- promptReply{value: value, ok: ok}
	c.prompt = nil
	return true
}
