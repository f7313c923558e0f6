package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// Display is everything the engine needs from the player's screen.
type Display interface {
	DisplayMessage(text, style string)
	DisplayCombatAction(text, style string)
	AppendCombatAction(text, style string)
	UpdateStats(view dto.StatsView)
	UpdateCombat(view dto.CombatView)
	PopulateActions(choices []dto.Choice, target string)
	PopulateInventory(view dto.InventoryView)
	DisplayChatMessage(msg entities.ChatMessage)
	// Prompt blocks for a line of input. ok is false when the player
	// dismissed the prompt or went away.
	Prompt(ctx context.Context, text, kind string) (reply string, ok bool)
}

// Rand is satisfied by *rand.Rand from golang.org/x/exp/rand.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// PlayerStore persists the player document and hands back any inbox
// credits folded in during the save.
type PlayerStore interface {
	Save(ctx context.Context, p *entities.Player) (map[string]int, error)
}

// Marketplace is implemented by *service.Market.
type Marketplace interface {
	List(ctx context.Context, seller *entities.Player, itemKey string, qty, price int) (*entities.MarketListing, error)
	Buy(ctx context.Context, buyer *entities.Player, listingID string, qty int) (*service.Purchase, error)
	Remove(ctx context.Context, caller *entities.Player, listingID string) (*entities.MarketListing, error)
	Listings(ctx context.Context) ([]*entities.MarketListing, error)
	Listing(ctx context.Context, listingID string) (*entities.MarketListing, error)
}

type Config struct {
	Catalog *catalog.Catalog
	Players PlayerStore
	Market  Marketplace
	Sects   *service.SectRegistry
	Display Display
	Rand    Rand
	// Pacing is the pause before the opponent acts.
	Pacing time.Duration
	Log    *zap.Logger
}

// Session owns one logged-in player. It is not safe for concurrent use;
// the transport serializes calls.
type Session struct {
	cat     *catalog.Catalog
	players PlayerStore
	market  Marketplace
	sects   *service.SectRegistry
	ui      Display
	rng     Rand
	pacing  time.Duration
	log     *zap.Logger

	player  *entities.Player
	state   dto.GameState
	combat  *Combat
	unsaved bool
}

func NewSession(cfg Config, p *entities.Player) *Session {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	p.Normalize()
	return &Session{
		cat:     cfg.Catalog,
		players: cfg.Players,
		market:  cfg.Market,
		sects:   cfg.Sects,
		ui:      cfg.Display,
		rng:     cfg.Rand,
		pacing:  cfg.Pacing,
		log:     log.Named("session").With(zap.String("player", p.PlayerID)),
		player:  p,
		state:   dto.StateMenu,
	}
}

func (s *Session) Player() *entities.Player { return s.player }
func (s *Session) State() dto.GameState     { return s.state }
func (s *Session) Combat() *Combat          { return s.combat }

// Start greets the player and shows the menu for wherever they left off.
// credits are inbox payouts collected while loading.
func (s *Session) Start(ctx context.Context, credits map[string]int) {
	s.ui.DisplayMessage("=== Welcome to the Path of the Ascendant Dragon ===", dto.StyleSystem)
	s.ui.DisplayMessage(fmt.Sprintf("Welcome back, %s!", s.player.Name), dto.StyleSuccess)
	s.announceCredits(credits)
	s.showMenu()
}

// Sync saves the player, which also collects marketplace proceeds.
func (s *Session) Sync(ctx context.Context) {
	s.save(ctx)
	s.ui.UpdateStats(s.statsView())
}

func (s *Session) save(ctx context.Context) {
	credits, err := s.players.Save(ctx, s.player)
	if err != nil {
		s.unsaved = true
		s.log.Error("save player", zap.Error(err))
		s.ui.DisplayMessage("Failed to save your progress. Check connection.", dto.StyleError)
		return
	}
	s.announceCredits(credits)
}

func (s *Session) announceCredits(credits map[string]int) {
	keys := make([]string, 0, len(credits))
	for k := range credits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.ui.DisplayMessage(fmt.Sprintf("Marketplace proceeds: received %d %s.", credits[k], s.cat.ItemName(k)), dto.StyleMarket)
	}
}

// showMenu puts the player back into the safe state for their progress.
func (s *Session) showMenu() {
	p := s.player
	switch {
	case s.state == dto.StateLoggedOut:
		return
	case !p.HasRolledSpiritualRoot:
		s.state = dto.StateRootPending
		s.ui.DisplayMessage(fmt.Sprintf("Welcome, %s. Your destiny awaits...", p.Name), dto.StyleNarration)
		s.ui.PopulateActions([]dto.Choice{
			{Text: "Divine Spiritual Roots", Action: ActionRollRoot, Style: "special"},
			{Text: "Logout", Action: ActionLogout, Style: "danger"},
		}, dto.TargetMain)
	case !p.HasClassChosen:
		s.state = dto.StateClassSelection
		s.ui.DisplayMessage("Choose your Cultivation Path:", dto.StyleImportant)
		choices := make([]dto.Choice, 0, len(s.cat.Classes())+1)
		for _, cl := range s.cat.Classes() {
			choices = append(choices, dto.Choice{Text: cl.Name, Action: ActionClassInfo, Value: cl.Key, Style: "class_select"})
		}
		choices = append(choices, dto.Choice{Text: "Logout", Action: ActionLogout, Style: "danger"})
		s.ui.PopulateActions(choices, dto.TargetMain)
	case s.combat != nil && s.state == dto.StateDevourPrompt:
		s.promptDevour()
	case s.combat != nil:
		s.state = dto.StateCombat
		s.promptCombatAction()
	default:
		s.state = dto.StateMenu
		if !p.IsAlive() {
			p.Health = p.MaxHealth / 4
			s.ui.DisplayMessage(fmt.Sprintf("You recover slightly. Health: %d/%d", p.Health, p.MaxHealth), dto.StyleNarration)
		}
		s.ui.UpdateStats(s.statsView())
		s.ui.DisplayMessage(fmt.Sprintf("--- %s, what will you do? ---", p.Name), dto.StyleImportant)
		s.ui.PopulateActions(s.mainChoices(), dto.TargetMain)
	}
}

func (s *Session) mainChoices() []dto.Choice {
	choices := []dto.Choice{
		{Text: "Meditate", Action: ActionMeditate},
		{Text: "Explore", Action: ActionExplore},
		{Text: "Inventory", Action: ActionInventory},
		{Text: "Marketplace", Action: ActionMarketMenu, Style: "market_action"},
		{Text: "Concoct Pills", Action: ActionConcoctMenu},
	}
	for _, cc := range classCrafts {
		if cc.Class == s.player.ChosenClassKey {
			choices = append(choices, dto.Choice{Text: cc.Label, Action: cc.Action, Style: "special"})
		}
	}
	return append(choices,
		dto.Choice{Text: "View Stats", Action: ActionViewStats},
		dto.Choice{Text: "Sect Hall", Action: ActionSectMenu},
		dto.Choice{Text: "Challenge Rival", Action: ActionPvP, Style: "danger"},
		dto.Choice{Text: "Logout", Action: ActionLogout, Style: "danger"},
	)
}

func (s *Session) statsView() dto.StatsView {
	p := s.player
	class := p.ChosenClassName
	if class == "" {
		class = "None"
	}
	weapon := "None"
	if p.EquippedWeapon != "" {
		weapon = fmt.Sprintf("%s (+%d)", s.cat.ItemName(p.EquippedWeapon), p.WeaponAttackBonus)
	}
	v := dto.StatsView{
		Name:           p.Name,
		Class:          class,
		Realm:          p.RealmName(),
		Level:          p.CultivationLevel,
		SpiritualRoot:  p.SpiritualRootName,
		RootMultiplier: p.SpiritualRootMultiplier,
		Progress:       p.CultivationProgress,
		NextLevel:      p.XPForNextLevel(),
		Health:         p.Health,
		MaxHealth:      p.MaxHealth,
		Qi:             p.CurrentQi,
		MaxQi:          p.MaxQi,
		Attack:         p.TotalAttack(),
		Defense:        p.Defense,
		SpiritStones:   p.Count(catalog.SpiritStones),
		Sect:           s.sects.NameOf(p),
		Weapon:         weapon,
	}
	if p.ChosenClassKey == catalog.ClassDemonCultivator {
		corruption := p.DemonicCorruption
		v.DemonicCorruption = &corruption
	}
	return v
}

func (s *Session) inventoryView() dto.InventoryView {
	p := s.player
	view := dto.InventoryView{
		UsedSlots: p.UsedSlots(s.cat.IsCurrency),
		MaxSlots:  p.MaxInventorySlots,
	}
	for key, n := range p.Resources {
		if n <= 0 || s.cat.IsCurrency(key) {
			continue
		}
		it, ok := s.cat.Item(key)
		if !ok {
			it = catalog.Item{Key: key, Name: key, Type: catalog.Material}
		}
		view.Slots = append(view.Slots, dto.InventorySlot{
			Key:         key,
			Name:        it.Name,
			Description: it.Description,
			Type:        string(it.Type),
			Quantity:    n,
			Usable:      it.Usable(),
		})
	}
	sort.Slice(view.Slots, func(i, j int) bool { return view.Slots[i].Name < view.Slots[j].Name })
	return view
}

// prompt wrappers

func (s *Session) ask(ctx context.Context, text string) (string, bool) {
	reply, ok := s.ui.Prompt(ctx, text, dto.PromptText)
	reply = strings.TrimSpace(reply)
	if !ok || reply == "" {
		return "", false
	}
	return reply, true
}

func (s *Session) askQuantity(ctx context.Context, text string) (int, bool, error) {
	reply, ok := s.ui.Prompt(ctx, text, dto.PromptNumber)
	reply = strings.TrimSpace(reply)
	if !ok || reply == "" {
		return 0, false, nil
	}
	n, err := parsePositive(reply)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

func (s *Session) confirm(ctx context.Context, text string) bool {
	reply, ok := s.ui.Prompt(ctx, text+" (yes/no)", dto.PromptText)
	if !ok {
		return false
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "yes" || reply == "y"
}

func (s *Session) cancelled() {
	s.ui.DisplayMessage("Cancelled.", dto.StyleNarration)
}
