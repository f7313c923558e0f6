package game

import (
	"context"
	"fmt"
	"time"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// Turn says who acts next.
type Turn string

const (
	TurnPlayer   Turn = "player"
	TurnOpponent Turn = "opponent"
)

// TameOutcome records the result of a taming attempt. Capture is not
// implemented; every attempt ends unresolved.
type TameOutcome string

const TameUnresolved TameOutcome = "unresolved"

const (
	tameQiCost       = 15
	rivalLossPenalty = 20
	fleeChance       = 0.5
)

// Combat binds the player to one opponent.
type Combat struct {
	Opponent entities.Combatant
	Turn     Turn
	// AttackBuff is added to the player's attack until the fight ends.
	AttackBuff int
	LastTame   TameOutcome
}

func (c *Combat) rival() bool {
	_, ok := c.Opponent.(*entities.Player)
	return ok
}

func (c *Combat) monster() (*entities.Monster, bool) {
	m, ok := c.Opponent.(*entities.Monster)
	return m, ok
}

func (s *Session) startCombat(ctx context.Context, opponent entities.Combatant) {
	s.combat = &Combat{Opponent: opponent, Turn: TurnPlayer}
	s.state = dto.StateCombat
	o := opponent.Stats()
	s.ui.DisplayCombatAction(fmt.Sprintf("%s (%s, Level %d) stands before you!", o.Name, opponent.Realm(), o.CultivationLevel), dto.StyleCombatNarration)
	s.updateCombat()
	s.promptCombatAction()
}

func (s *Session) updateCombat() {
	if s.combat == nil {
		return
	}
	p, o := s.player, s.combat.Opponent
	s.ui.UpdateCombat(dto.CombatView{
		Player:   dto.CombatantView{Name: p.Name, Realm: p.RealmName(), Health: p.Health, MaxHealth: p.MaxHealth},
		Opponent: dto.CombatantView{Name: o.Stats().Name, Realm: o.Realm(), Health: o.Stats().Health, MaxHealth: o.Stats().MaxHealth},
		Turn:     string(s.combat.Turn),
	})
	s.ui.UpdateStats(s.statsView())
}

// combatChoices lists what the player can do this turn. Talismans with a
// combat effect are offered alongside combat consumables.
func (s *Session) combatChoices() []dto.Choice {
	p := s.player
	choices := []dto.Choice{
		{Text: "Attack", Action: ActionAttack, Style: "danger"},
		{Text: "Flee", Action: ActionFlee, Style: "neutral"},
	}
	if m, ok := s.combat.monster(); ok && m.Tamable && p.ChosenClassKey == catalog.ClassBeastTamer {
		choices = append(choices, dto.Choice{Text: fmt.Sprintf("Attempt Tame (%d QI)", tameQiCost), Action: ActionTame, Style: "special"})
	}
	for _, slot := range s.inventoryView().Slots {
		it, _ := s.cat.Item(slot.Key)
		if eff, ok := it.Effect(catalog.EffectCombatDamage); ok && it.Type == catalog.Talisman {
			choices = append(choices, dto.Choice{
				Text:   fmt.Sprintf("Use %s (x%d, %d QI)", it.Name, slot.Quantity, eff.QiCost),
				Action: ActionTalisman, Value: it.Key, Style: "special",
			})
		}
	}
	for _, slot := range s.inventoryView().Slots {
		it, _ := s.cat.Item(slot.Key)
		if it.Type == catalog.Consumable && it.UsableInCombat {
			choices = append(choices, dto.Choice{
				Text:   fmt.Sprintf("Use %s (x%d)", it.Name, slot.Quantity),
				Action: ActionCombatItem, Value: it.Key, Style: "confirm",
			})
		}
	}
	return choices
}

func (s *Session) promptCombatAction() {
	s.combat.Turn = TurnPlayer
	s.ui.AppendCombatAction("--- Your Turn ---", dto.StylePlayerTurn)
	s.ui.PopulateActions(s.combatChoices(), dto.TargetCombat)
}

// strike resolves one attack and reports the damage that landed.
func (s *Session) strike(attacker, defender entities.Combatant, bonus int, style string) int {
	a, d := attacker.Stats(), defender.Stats()
	s.ui.DisplayCombatAction(fmt.Sprintf("%s attacks %s!", a.Name, d.Name), style)
	atk := attacker.AttackPower() + bonus
	variance := atk / 5
	raw := atk + s.rng.Intn(2*variance+1) - variance
	dealt := d.TakeDamage(raw)
	msg := fmt.Sprintf("%s takes %d damage. (HP: %d/%d)", d.Name, dealt, d.Health, d.MaxHealth)
	if !d.IsAlive() {
		msg += fmt.Sprintf(" %s has been defeated!", d.Name)
	}
	s.ui.AppendCombatAction(msg, style)
	s.updateCombat()
	return dealt
}

func (s *Session) ensureTurn() error {
	if s.combat.Turn != TurnPlayer || !s.player.IsAlive() || !s.combat.Opponent.Stats().IsAlive() {
		return ErrNotYourTurn
	}
	return nil
}

func handleAttack(s *Session, ctx context.Context, _ Args) error {
	if err := s.ensureTurn(); err != nil {
		return err
	}
	s.strike(s.player, s.combat.Opponent, s.combat.AttackBuff, dto.StylePlayerAction)
	return s.afterPlayerAction(ctx)
}

func handleFlee(s *Session, ctx context.Context, _ Args) error {
	if err := s.ensureTurn(); err != nil {
		return err
	}
	s.ui.DisplayCombatAction("Attempting to flee...", dto.StyleCombatNarration)
	if s.rng.Float64() < fleeChance {
		s.ui.AppendCombatAction("Fled successfully!", dto.StyleSuccess)
		s.combat = nil
		s.save(ctx)
		s.showMenu()
		return nil
	}
	s.ui.AppendCombatAction("Failed to flee!", dto.StyleError)
	return s.afterPlayerAction(ctx)
}

func handleTame(s *Session, ctx context.Context, _ Args) error {
	if err := s.ensureTurn(); err != nil {
		return err
	}
	m, ok := s.combat.monster()
	if !ok || !m.Tamable || s.player.ChosenClassKey != catalog.ClassBeastTamer {
		return ErrTameUnavailable
	}
	if err := s.player.SpendQi(tameQiCost); err != nil {
		return fmt.Errorf("%w: taming needs %d", err, tameQiCost)
	}
	s.ui.DisplayCombatAction(fmt.Sprintf("%s attempts to tame the %s...", s.player.Name, m.Name), dto.StylePlayerAction)
	s.ui.AppendCombatAction(fmt.Sprintf("The %s eyes you warily. The bond remains unformed.", m.Name), dto.StyleCombatNarration)
	s.combat.LastTame = TameUnresolved
	s.save(ctx)
	return s.afterPlayerAction(ctx)
}

func handleTalisman(s *Session, ctx context.Context, args Args) error {
	if err := s.ensureTurn(); err != nil {
		return err
	}
	it, ok := s.cat.Item(args.Value)
	if !ok {
		return service.ErrUnknownItem
	}
	eff, ok := it.Effect(catalog.EffectCombatDamage)
	if !ok || it.Type != catalog.Talisman {
		return ErrNotUsable
	}
	p := s.player
	if p.Count(it.Key) < 1 {
		return fmt.Errorf("%w: no %s left", service.ErrInsufficientItems, it.Name)
	}
	if err := p.SpendQi(eff.QiCost); err != nil {
		return fmt.Errorf("%w: %s needs %d", err, it.Name, eff.QiCost)
	}
	_ = p.RemoveItem(it.Key, 1)
	o := s.combat.Opponent.Stats()
	s.ui.DisplayCombatAction(fmt.Sprintf("%s uses a %s!", p.Name, it.Name), dto.StylePlayerAction)
	dealt := o.TakeDamage(eff.Scaled(p.CultivationLevel))
	msg := fmt.Sprintf("%s takes %d damage. (HP: %d/%d)", o.Name, dealt, o.Health, o.MaxHealth)
	if !o.IsAlive() {
		msg += fmt.Sprintf(" %s has been defeated!", o.Name)
	}
	s.ui.AppendCombatAction(msg, dto.StylePlayerAction)
	s.updateCombat()
	s.save(ctx)
	return s.afterPlayerAction(ctx)
}

func handleCombatItem(s *Session, ctx context.Context, args Args) error {
	if err := s.ensureTurn(); err != nil {
		return err
	}
	if err := s.useItem(args.Value, true); err != nil {
		return err
	}
	s.updateCombat()
	s.save(ctx)
	return s.afterPlayerAction(ctx)
}

// afterPlayerAction ends the fight or hands the turn to the opponent.
func (s *Session) afterPlayerAction(ctx context.Context) error {
	if s.combat == nil {
		return nil
	}
	if !s.combat.Opponent.Stats().IsAlive() {
		s.endCombat(ctx, true)
		return nil
	}
	s.combat.Turn = TurnOpponent
	s.updateCombat()
	s.opponentTurn(ctx)
	return nil
}

func (s *Session) pause(ctx context.Context) {
	if s.pacing <= 0 {
		return
	}
	t := time.NewTimer(s.pacing)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (s *Session) opponentTurn(ctx context.Context) {
	o := s.combat.Opponent
	s.pause(ctx)
	s.ui.DisplayCombatAction(fmt.Sprintf("--- %s's Turn ---", o.Stats().Name), dto.StyleOpponentTurn)
	s.pause(ctx)
	s.strike(o, s.player, 0, dto.StyleOpponentAction)
	if !s.player.IsAlive() {
		s.endCombat(ctx, false)
		return
	}
	s.promptCombatAction()
	s.updateCombat()
}

func (s *Session) endCombat(ctx context.Context, won bool) {
	c := s.combat
	p := s.player
	o := c.Opponent.Stats()
	if won {
		s.ui.AppendCombatAction(fmt.Sprintf("%s slain!", o.Name), dto.StyleSuccess)
		xp := 0
		if m, ok := c.monster(); ok {
			xp = m.XPReward
		}
		if xp > 0 && p.ChosenClassKey == catalog.ClassHeavenlyOracle && s.rng.Float64() < 0.2 {
			bonus := xp * 15 / 100
			xp += bonus
			s.ui.DisplayMessage("A Glimpse of Fortune blesses you with extra insight!", dto.StyleSpiritualRoot)
		}
		if xp > 0 {
			s.gainXP(xp)
		}
		if _, ok := c.monster(); ok {
			if loot := RollMonsterLoot(s.cat, s.rng, p.CultivationLevel); len(loot) > 0 {
				s.ui.DisplayMessage("Loot: "+s.grant(loot), dto.StyleLoot)
			}
		}
		if c.rival() {
			s.ui.DisplayMessage("Duel victory! Reputation grows.", dto.StyleSuccess)
		}
		if p.ChosenClassKey == catalog.ClassDemonCultivator {
			s.save(ctx)
			s.state = dto.StateDevourPrompt
			s.promptDevour()
			return
		}
	} else {
		s.ui.AppendCombatAction("Defeated...", dto.StyleError)
		p.Health = 1
		s.ui.DisplayMessage("Awakened, weakened.", dto.StyleNarration)
		if c.rival() {
			p.CultivationProgress -= rivalLossPenalty
			if p.CultivationProgress < 0 {
				p.CultivationProgress = 0
			}
			s.ui.DisplayMessage("Humbling duel loss.", dto.StyleError)
		}
	}
	s.combat = nil
	s.save(ctx)
	s.showMenu()
}

func (s *Session) promptDevour() {
	s.ui.DisplayMessage("The defeated foe's essence lingers... A dark opportunity presents itself.", dto.StyleDemonic)
	s.ui.PopulateActions([]dto.Choice{
		{Text: "Devour Essence", Action: ActionDevour, Style: "danger"},
		{Text: "Ignore", Action: ActionIgnoreDevour, Style: "neutral"},
	}, dto.TargetCombat)
}

func handleDevour(s *Session, ctx context.Context, _ Args) error {
	p := s.player
	bonus := s.rng.Intn(20) + 10
	corruption := s.rng.Intn(3) + 1
	p.DemonicCorruption += corruption
	s.ui.DisplayMessage(fmt.Sprintf("You devour the essence! Dark power floods your meridians. (+%d corruption)", corruption), dto.StyleDemonic)
	s.gainXP(bonus)
	s.combat = nil
	s.state = dto.StateMenu
	s.save(ctx)
	s.showMenu()
	return nil
}

func handleIgnoreDevour(s *Session, ctx context.Context, _ Args) error {
	s.ui.DisplayMessage("You leave the essence to dissipate.", dto.StyleNarration)
	s.combat = nil
	s.state = dto.StateMenu
	s.showMenu()
	return nil
}

func handlePvP(s *Session, ctx context.Context, _ Args) error {
	if !s.player.IsAlive() {
		return ErrIncapacitated
	}
	rival := NewRival(s.player.CultivationLevel, s.rng)
	s.ui.DisplayMessage(fmt.Sprintf("You challenge %s to a duel!", rival.Name), dto.StyleImportant)
	s.startCombat(ctx, rival)
	return nil
}
