package entities

import (
	"errors"
	"sort"
)

// New player defaults.
const (
	StartingHealth         = 100
	StartingAttack         = 10
	StartingDefense        = 5
	StartingLevel          = 1
	StartingQi             = 50
	StartingInventorySlots = 50
	DefaultPlayerName      = "Nameless One"
)

var (
	ErrRootAlreadyRolled = errors.New("spiritual root already revealed")
	ErrClassAlreadyTaken = errors.New("cultivation path already chosen")
	ErrInsufficientItems = errors.New("not enough items")
	ErrInsufficientQi    = errors.New("not enough qi")
)

// Player is the persisted cultivator document.
type Player struct {
	Character

	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	// Password is compared as stored; credential hardening is out of scope.
	Password string `json:"password"`

	Resources         map[string]int `json:"resources"`
	MaxInventorySlots int            `json:"maxInventorySlots"`

	SpiritualRootName       string `json:"spiritualRootName"`
	SpiritualRootMultiplier int    `json:"spiritualRootMultiplier"`
	HasRolledSpiritualRoot  bool   `json:"hasRolledSpiritualRoot"`

	ChosenClassKey  string `json:"chosenClassKey"`
	ChosenClassName string `json:"chosenClassName"`
	HasClassChosen  bool   `json:"hasClassChosen"`

	CurrentQi         int `json:"currentQi"`
	MaxQi             int `json:"maxQi"`
	DemonicCorruption int `json:"demonicCorruption"`

	EquippedWeapon    string `json:"equippedWeapon"`
	WeaponAttackBonus int    `json:"weaponAttackBonus"`

	SectID       string   `json:"sectId"`
	KnownRecipes []string `json:"knownRecipes"`
}

// NewPlayer builds a freshly created cultivator.
func NewPlayer(playerID, username, password, name string) *Player {
	if name == "" {
		name = DefaultPlayerName
	}
	return &Player{
		Character:               NewCharacter(name, StartingHealth, StartingAttack, StartingDefense, StartingLevel),
		PlayerID:                playerID,
		Username:                username,
		Password:                password,
		Resources:               map[string]int{},
		MaxInventorySlots:       StartingInventorySlots,
		SpiritualRootName:       "Undetermined",
		SpiritualRootMultiplier: 1,
		CurrentQi:               StartingQi,
		MaxQi:                   StartingQi,
		KnownRecipes:            []string{},
	}
}

// Normalize repairs fields a loaded document may be missing.
func (p *Player) Normalize() {
	if p.Resources == nil {
		p.Resources = map[string]int{}
	}
	if p.KnownRecipes == nil {
		p.KnownRecipes = []string{}
	}
	if p.SpiritualRootMultiplier <= 0 {
		p.SpiritualRootMultiplier = 1
	}
	if p.MaxInventorySlots <= 0 {
		p.MaxInventorySlots = StartingInventorySlots
	}
	if p.Name == "" {
		p.Name = DefaultPlayerName
	}
}

// Clone returns a deep copy, used to stage transactional changes.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Resources = make(map[string]int, len(p.Resources))
	for k, v := range p.Resources {
		cp.Resources[k] = v
	}
	cp.KnownRecipes = append([]string(nil), p.KnownRecipes...)
	return &cp
}

// TotalAttack includes the equipped weapon.
func (p *Player) TotalAttack() int { return p.Attack + p.WeaponAttackBonus }

func (p *Player) RealmName() string { return RealmName(p.CultivationLevel) }

// Count returns how many of an item the player holds.
func (p *Player) Count(key string) int { return p.Resources[key] }

// AddItem credits n units; non-positive n is ignored.
func (p *Player) AddItem(key string, n int) {
	if n <= 0 {
		return
	}
	if p.Resources == nil {
		p.Resources = map[string]int{}
	}
	p.Resources[key] += n
}

// RemoveItem debits n units or fails without change.
func (p *Player) RemoveItem(key string, n int) error {
	if n <= 0 || p.Resources[key] < n {
		return ErrInsufficientItems
	}
	p.Resources[key] -= n
	if p.Resources[key] == 0 && p.EquippedWeapon == key {
		p.EquippedWeapon = ""
		p.WeaponAttackBonus = 0
	}
	return nil
}

// SpendQi debits Qi or fails without change.
func (p *Player) SpendQi(n int) error {
	if n < 0 || p.CurrentQi < n {
		return ErrInsufficientQi
	}
	p.CurrentQi -= n
	return nil
}

// RestoreQi adds up to n Qi and returns the amount restored.
func (p *Player) RestoreQi(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.CurrentQi
	p.CurrentQi += n
	if p.CurrentQi > p.MaxQi {
		p.CurrentQi = p.MaxQi
	}
	return p.CurrentQi - before
}

// UsedSlots counts distinct non-currency stacks.
func (p *Player) UsedSlots(isCurrency func(string) bool) int {
	n := 0
	for k, v := range p.Resources {
		if v > 0 && (isCurrency == nil || !isCurrency(k)) {
			n++
		}
	}
	return n
}

// KnowsRecipe reports whether recipeKey has been learned.
func (p *Player) KnowsRecipe(recipeKey string) bool {
	for _, k := range p.KnownRecipes {
		if k == recipeKey {
			return true
		}
	}
	return false
}

// LearnRecipe records recipeKey and reports whether it was new.
func (p *Player) LearnRecipe(recipeKey string) bool {
	if p.KnowsRecipe(recipeKey) {
		return false
	}
	p.KnownRecipes = append(p.KnownRecipes, recipeKey)
	sort.Strings(p.KnownRecipes)
	return true
}

// GainXP applies the spiritual root multiplier and the plateau gate.
func (p *Player) GainXP(amount int) XPGain {
	mult := p.SpiritualRootMultiplier
	if mult <= 0 {
		mult = 1
	}
	return p.advance(amount*mult, true, func() {
		p.MaxQi += LevelQiGain
		p.RestoreQi(LevelQiGain)
	})
}

// MajorBreakthrough consumes nothing itself; the caller removes the pill
// only when this succeeds.
func (p *Player) MajorBreakthrough(plateau int) error {
	if p.CultivationLevel != plateau || !p.AtPlateau() {
		return ErrNotReadyForBreakthrough
	}
	p.CultivationLevel = plateau + 1
	p.CultivationProgress = 0
	p.MaxHealth += BreakthroughHealthGain
	p.Attack += BreakthroughAttackGain
	p.Defense += BreakthroughDefenseGain
	p.MaxQi += BreakthroughQiGain
	p.Health = p.MaxHealth
	p.CurrentQi = p.MaxQi
	p.MaxInventorySlots += BreakthroughSlotGain
	return nil
}

// AssignSpiritualRoot fixes the root once.
func (p *Player) AssignSpiritualRoot(name string, multiplier int) error {
	if p.HasRolledSpiritualRoot {
		return ErrRootAlreadyRolled
	}
	p.SpiritualRootName = name
	p.SpiritualRootMultiplier = multiplier
	p.HasRolledSpiritualRoot = true
	return nil
}

// ChooseClass fixes the cultivation path once. Bonuses are applied by the
// caller.
func (p *Player) ChooseClass(key, name string) error {
	if p.HasClassChosen {
		return ErrClassAlreadyTaken
	}
	p.ChosenClassKey = key
	p.ChosenClassName = name
	p.HasClassChosen = true
	return nil
}
