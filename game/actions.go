package game

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"go-cultivation/dto"
	"go-cultivation/service"
)

// Action names sent by the client.
const (
	ActionRollRoot    = "roll_root"
	ActionClassInfo   = "class_info"
	ActionClassSelect = "class_select"
	ActionMainMenu    = "main_menu"
	ActionMeditate    = "meditate"
	ActionExplore     = "explore"
	ActionInventory   = "inventory"
	ActionUseItem     = "use_item"
	ActionInspectItem = "inspect_item"
	ActionViewStats   = "view_stats"
	ActionPvP         = "pvp"
	ActionForge       = "forge_artifact"
	ActionDraw        = "draw_talisman"
	ActionLogout      = "logout"

	ActionAttack       = "combat_attack"
	ActionFlee         = "combat_flee"
	ActionTame         = "combat_tame"
	ActionTalisman     = "combat_talisman"
	ActionCombatItem   = "combat_item"
	ActionDevour       = "devour_essence"
	ActionIgnoreDevour = "ignore_essence"

	ActionConcoctMenu = "concoct_menu"
	ActionConcoct     = "concoct"

	ActionMarketMenu   = "market_menu"
	ActionMarketSell   = "market_sell"
	ActionMarketList   = "market_list_item"
	ActionMarketView   = "market_view"
	ActionMarketBuy    = "market_buy"
	ActionMarketRemove = "market_remove"

	ActionSectMenu   = "sect_menu"
	ActionSectCreate = "sect_create"
	ActionSectList   = "sect_list"
	ActionSectJoin   = "sect_join"
	ActionSectMine   = "sect_mine"
	ActionSectLeave  = "sect_leave"
)

// Args carries the optional arguments of an action.
type Args struct {
	Value    string `mapstructure:"value"`
	Quantity int    `mapstructure:"quantity"`
	Price    int    `mapstructure:"price"`
}

// Outcome reports how an action went.
type Outcome struct {
	Action string
	Err    error
	Kind   service.Kind
	// Unsaved is set when the in-memory state could not be persisted.
	Unsaved bool
}

type actionHandler func(s *Session, ctx context.Context, args Args) error

type action struct {
	gate   func(s *Session) error
	handle actionHandler
}

var actionHandlers = map[string]action{
	ActionRollRoot:    {gateRootPending, handleRollRoot},
	ActionClassInfo:   {gateClassSelection, handleClassInfo},
	ActionClassSelect: {gateClassSelection, handleClassSelect},
	ActionMainMenu:    {gateMenu, handleMainMenu},
	ActionMeditate:    {gateMenu, handleMeditate},
	ActionExplore:     {gateMenu, handleExplore},
	ActionInventory:   {gateAny, handleInventory},
	ActionUseItem:     {gateMenu, handleUseItem},
	ActionInspectItem: {gateAny, handleInspectItem},
	ActionViewStats:   {gateAny, handleViewStats},
	ActionPvP:         {gateMenu, handlePvP},
	ActionForge:       {gateMenu, handleClassCraft(ActionForge)},
	ActionDraw:        {gateMenu, handleClassCraft(ActionDraw)},
	ActionLogout:      {gateAny, handleLogout},

	ActionAttack:       {gateCombat, handleAttack},
	ActionFlee:         {gateCombat, handleFlee},
	ActionTame:         {gateCombat, handleTame},
	ActionTalisman:     {gateCombat, handleTalisman},
	ActionCombatItem:   {gateCombat, handleCombatItem},
	ActionDevour:       {gateDevour, handleDevour},
	ActionIgnoreDevour: {gateDevour, handleIgnoreDevour},

	ActionConcoctMenu: {gateMenu, handleConcoctMenu},
	ActionConcoct:     {gateMenu, handleConcoct},

	ActionMarketMenu:   {gateMenu, handleMarketMenu},
	ActionMarketSell:   {gateMenu, handleMarketSell},
	ActionMarketList:   {gateMenu, handleMarketList},
	ActionMarketView:   {gateMenu, handleMarketView},
	ActionMarketBuy:    {gateMenu, handleMarketBuy},
	ActionMarketRemove: {gateMenu, handleMarketRemove},

	ActionSectMenu:   {gateMenu, handleSectMenu},
	ActionSectCreate: {gateMenu, handleSectCreate},
	ActionSectList:   {gateMenu, handleSectList},
	ActionSectJoin:   {gateMenu, handleSectJoin},
	ActionSectMine:   {gateMenu, handleSectMine},
	ActionSectLeave:  {gateMenu, handleSectLeave},
}

// Handle runs one player intent. Errors are shown to the player, logged
// when they are not the player's fault, and the player is returned to a
// safe menu. Nothing escapes as a panic.
func (s *Session) Handle(ctx context.Context, name string, raw map[string]interface{}) (out Outcome) {
	s.unsaved = false
	out.Action = name
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("action panicked", zap.String("action", name), zap.Any("panic", r), zap.Stack("stack"))
			out.Err = fmt.Errorf("action %s: %v", name, r)
			out.Kind = service.KindPersistence
			s.fail(ctx, name, out.Err)
		}
		out.Unsaved = s.unsaved
	}()

	act, ok := actionHandlers[name]
	if !ok {
		out.Err = ErrUnknownAction
	} else if out.Err = act.gate(s); out.Err == nil {
		var args Args
		if out.Err = decodeArgs(raw, &args); out.Err == nil {
			out.Err = act.handle(s, ctx, args)
		}
	}
	if out.Err != nil {
		out.Kind = ErrorKind(out.Err)
		s.fail(ctx, name, out.Err)
	}
	return out
}

func (s *Session) fail(ctx context.Context, name string, err error) {
	kind := ErrorKind(err)
	switch kind {
	case service.KindValidation:
		s.ui.DisplayMessage(UserMessage(err), dto.StyleError)
	case service.KindNotFound:
		s.ui.DisplayMessage(UserMessage(err)+" It may have been removed.", dto.StyleError)
	case service.KindConflict:
		s.ui.DisplayMessage(UserMessage(err)+" Someone got there first; refresh and try again.", dto.StyleError)
	default:
		s.unsaved = true
		s.log.Error("action failed", zap.String("action", name), zap.Error(err))
		s.ui.DisplayMessage("Something went wrong. Your progress may not have been saved.", dto.StyleError)
	}
	if staleListing(name, kind) && s.state == dto.StateMenu {
		if err := handleMarketView(s, ctx, Args{}); err == nil {
			return
		}
	}
	s.showMenu()
}

// staleListing reports whether a failed market action should send the
// player back to fresh listings rather than the main menu.
func staleListing(name string, kind service.Kind) bool {
	if name != ActionMarketBuy && name != ActionMarketRemove {
		return false
	}
	return kind == service.KindNotFound || kind == service.KindConflict
}

func decodeArgs(raw map[string]interface{}, out *Args) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidQuantity, err)
	}
	return nil
}

// gates

func gateAny(*Session) error { return nil }

func gateMenu(s *Session) error {
	switch s.state {
	case dto.StateRootPending:
		return ErrRootFirst
	case dto.StateClassSelection:
		return ErrClassFirst
	case dto.StateCombat:
		return ErrInCombat
	case dto.StateDevourPrompt:
		return ErrDevourPending
	}
	return nil
}

func gateRootPending(s *Session) error {
	if s.player.HasRolledSpiritualRoot {
		return service.ErrRootAlreadyRolled
	}
	return nil
}

func gateClassSelection(s *Session) error {
	if !s.player.HasRolledSpiritualRoot {
		return ErrRootFirst
	}
	if s.player.HasClassChosen {
		return service.ErrClassAlreadyTaken
	}
	return nil
}

func gateCombat(s *Session) error {
	if s.state == dto.StateDevourPrompt {
		return ErrDevourPending
	}
	if s.state != dto.StateCombat || s.combat == nil {
		return ErrNotInCombat
	}
	return nil
}

func gateDevour(s *Session) error {
	if s.state != dto.StateDevourPrompt || s.combat == nil {
		return ErrNotInCombat
	}
	return nil
}

func handleMainMenu(s *Session, _ context.Context, _ Args) error {
	s.showMenu()
	return nil
}

func handleLogout(s *Session, ctx context.Context, _ Args) error {
	s.save(ctx)
	s.combat = nil
	s.state = dto.StateLoggedOut
	s.ui.DisplayMessage(fmt.Sprintf("Safe travels, %s.", s.player.Name), dto.StyleSystem)
	s.log.Info("player logged out")
	return nil
}
