package dto

import "github.com/gorilla/websocket"

// RealConn adapts a gorilla connection to the session transport.
type RealConn struct {
	*websocket.Conn
}

func (r *RealConn) WriteMessage(messageType int, data []byte) error {
	return r.Conn.WriteMessage(messageType, data)
}

func (r *RealConn) Close() error {
	return r.Conn.Close()
}

// GameState is the coarse state of a player session.
type GameState string

const (
	StateRootPending    GameState = "rootPending"
	StateClassSelection GameState = "classSelection"
	StateMenu           GameState = "menu"
	StateCombat         GameState = "combat"
	StateDevourPrompt   GameState = "devourPrompt"
	StateLoggedOut      GameState = "loggedOut"
)

// Client -> server message types.
const (
	MsgAction      = "action"
	MsgPromptReply = "prompt_reply"
	MsgPromptClose = "prompt_cancel"
	MsgChat        = "chat"
)

// Server -> client event types.
const (
	EventInit          = "init"
	EventMessage       = "message"
	EventCombatAction  = "combat_action"
	EventCombatAppend  = "combat_append"
	EventStats         = "stats"
	EventCombat        = "combat"
	EventActions       = "actions"
	EventPrompt        = "prompt"
	EventInventory     = "inventory"
	EventChat          = "chat"
	EventError         = "error"
	EventBusy          = "busy"
	EventActionResult  = "action_result"
	EventLogout        = "logout"
)

// Choice is one button offered to the player.
type Choice struct {
	Text   string `json:"text"`
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	Style  string `json:"style,omitempty"`
}

// InventorySlot is one stack shown in the inventory grid.
type InventorySlot struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Usable      bool   `json:"usable"`
}

// InventoryView is the full grid.
type InventoryView struct {
	Slots     []InventorySlot `json:"slots"`
	UsedSlots int             `json:"usedSlots"`
	MaxSlots  int             `json:"maxSlots"`
}

// Message style tags understood by the client.
const (
	StyleSystem          = "system"
	StyleNarration       = "narration"
	StyleSuccess         = "success"
	StyleError           = "error"
	StyleImportant       = "important"
	StyleLoot            = "loot"
	StyleMarket          = "market"
	StyleCrafting        = "crafting"
	StyleItemUse         = "item-use"
	StyleQiRecovery      = "qi-recovery"
	StyleClassInfo       = "class-info"
	StyleDemonic         = "demonic"
	StyleSpiritualRoot   = "spiritual-root"
	StylePlayerAction    = "combat-player"
	StyleOpponentAction  = "combat-opponent"
	StylePlayerTurn      = "combat-player-turn"
	StyleOpponentTurn    = "combat-opponent-turn"
	StyleCombatNarration = "combat-narration"
)

// Button containers.
const (
	TargetMain   = "main"
	TargetCombat = "combat"
)

// Prompt kinds for modal input.
const (
	PromptText     = "text"
	PromptNumber   = "number"
	PromptPassword = "password"
)

// StatsView is the side panel.
type StatsView struct {
	Name              string `json:"name"`
	Class             string `json:"class"`
	Realm             string `json:"realm"`
	Level             int    `json:"level"`
	SpiritualRoot     string `json:"spiritualRoot"`
	RootMultiplier    int    `json:"rootMultiplier"`
	Progress          int    `json:"progress"`
	NextLevel         int    `json:"nextLevel"`
	Health            int    `json:"health"`
	MaxHealth         int    `json:"maxHealth"`
	Qi                int    `json:"qi"`
	MaxQi             int    `json:"maxQi"`
	Attack            int    `json:"attack"`
	Defense           int    `json:"defense"`
	SpiritStones      int    `json:"spiritStones"`
	Sect              string `json:"sect"`
	Weapon            string `json:"weapon"`
	DemonicCorruption *int   `json:"demonicCorruption,omitempty"`
}

// CombatantView is one side of the combat panel.
type CombatantView struct {
	Name      string `json:"name"`
	Realm     string `json:"realm"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
}

type CombatView struct {
	Player   CombatantView `json:"player"`
	Opponent CombatantView `json:"opponent"`
	Turn     string        `json:"turn"`
}
