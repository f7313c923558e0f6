package game

import (
	"context"
	"fmt"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// useItem interprets an item's effects. Nothing is consumed or changed
// when it returns an error.
func (s *Session) useItem(key string, inCombat bool) error {
	p := s.player
	it, ok := s.cat.Item(key)
	if !ok {
		return service.ErrUnknownItem
	}
	if p.Count(key) < 1 {
		return fmt.Errorf("%w: you have no %s", service.ErrInsufficientItems, it.Name)
	}

	switch it.Type {
	case catalog.Weapon:
		if inCombat {
			return ErrNotUsableInCombat
		}
		return s.equip(it)
	case catalog.Recipe:
		if inCombat {
			return ErrNotUsableInCombat
		}
		eff, _ := it.Effect(catalog.EffectLearnRecipe)
		recipeName := s.cat.ItemName(eff.RecipeKey)
		if r, ok := s.cat.Recipe(eff.RecipeKey); ok {
			recipeName = r.Name
		}
		if p.LearnRecipe(eff.RecipeKey) {
			s.ui.DisplayMessage(fmt.Sprintf("You learned the recipe for %s!", recipeName), dto.StyleSuccess)
		} else {
			s.ui.DisplayMessage(fmt.Sprintf("You already know the recipe for %s.", recipeName), dto.StyleNarration)
		}
		_ = p.RemoveItem(key, 1)
		return nil
	case catalog.Consumable:
	case catalog.Talisman:
		if !inCombat {
			return ErrNeedsCombat
		}
		return ErrNotUsable
	default:
		return ErrNotUsable
	}

	if inCombat && !it.UsableInCombat {
		return ErrNotUsableInCombat
	}
	if err := s.checkEffects(it, inCombat); err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("Using %s...", it.Name), dto.StyleItemUse)
	for _, eff := range it.Effects {
		s.applyEffect(eff)
	}
	_ = p.RemoveItem(key, 1)
	s.ui.UpdateStats(s.statsView())
	return nil
}

// checkEffects rejects uses that would fail partway.
func (s *Session) checkEffects(it catalog.Item, inCombat bool) error {
	p := s.player
	for _, eff := range it.Effects {
		switch eff.Kind {
		case catalog.EffectBreakthrough:
			if p.CultivationLevel != eff.Level || !p.AtPlateau() {
				return fmt.Errorf("%w: reach level %d with full cultivation progress first", entities.ErrNotReadyForBreakthrough, eff.Level)
			}
		case catalog.EffectCombatBuff:
			if !inCombat {
				return ErrNeedsCombat
			}
		}
	}
	return nil
}

func (s *Session) applyEffect(eff catalog.Effect) {
	p := s.player
	switch eff.Kind {
	case catalog.EffectHeal:
		n := eff.Scaled(p.CultivationLevel)
		p.Heal(n)
		s.ui.DisplayMessage(fmt.Sprintf("Restored %d HP.", n), dto.StyleSuccess)
	case catalog.EffectRestoreQi:
		n := eff.Scaled(p.CultivationLevel)
		p.RestoreQi(n)
		s.ui.DisplayMessage(fmt.Sprintf("Restored %d QI.", n), dto.StyleQiRecovery)
	case catalog.EffectPermanentStat:
		if eff.Attack > 0 {
			p.Attack += eff.Attack
			s.ui.DisplayMessage(fmt.Sprintf("Your physical strength permanently increases by %d!", eff.Attack), dto.StyleSuccess)
		}
		if eff.Defense > 0 {
			p.Defense += eff.Defense
			s.ui.DisplayMessage(fmt.Sprintf("Your agility (defense) permanently increases by %d!", eff.Defense), dto.StyleSuccess)
		}
	case catalog.EffectCombatBuff:
		s.combat.AttackBuff += eff.Attack
		s.ui.DisplayMessage(fmt.Sprintf("You feel a fiery surge! (+%d attack this fight)", eff.Attack), dto.StyleSuccess)
	case catalog.EffectBreakthrough:
		// checked by checkEffects
		_ = p.MajorBreakthrough(eff.Level)
		s.ui.DisplayMessage(fmt.Sprintf("Your inventory capacity has expanded to %d slots!", p.MaxInventorySlots), dto.StyleSuccess)
		s.ui.DisplayMessage(fmt.Sprintf("The pill surges through you! You have broken through to the %s realm!", p.RealmName()), dto.StyleImportant)
		s.ui.DisplayMessage(fmt.Sprintf("Congratulations! %s has reached %s!", p.Name, p.RealmName()), dto.StyleImportant)
	}
}

func (s *Session) equip(it catalog.Item) error {
	p := s.player
	if p.EquippedWeapon == it.Key {
		s.ui.DisplayMessage(fmt.Sprintf("%s is already equipped.", it.Name), dto.StyleNarration)
		return nil
	}
	if p.EquippedWeapon != "" {
		s.ui.DisplayMessage(fmt.Sprintf("Unequipped %s.", s.cat.ItemName(p.EquippedWeapon)), dto.StyleNarration)
	}
	eff, _ := it.Effect(catalog.EffectEquip)
	p.EquippedWeapon = it.Key
	p.WeaponAttackBonus = eff.Amount
	s.ui.DisplayMessage(fmt.Sprintf("Equipped %s.", it.Name), dto.StyleSuccess)
	s.ui.UpdateStats(s.statsView())
	return nil
}

func handleInventory(s *Session, _ context.Context, _ Args) error {
	s.ui.PopulateInventory(s.inventoryView())
	return nil
}

func handleUseItem(s *Session, ctx context.Context, args Args) error {
	if err := s.useItem(args.Value, false); err != nil {
		return err
	}
	s.save(ctx)
	s.ui.PopulateInventory(s.inventoryView())
	s.showMenu()
	return nil
}

func handleInspectItem(s *Session, _ context.Context, args Args) error {
	it, ok := s.cat.Item(args.Value)
	if !ok {
		return service.ErrUnknownItem
	}
	s.ui.DisplayMessage(fmt.Sprintf("%s (x%d): %s", it.Name, s.player.Count(it.Key), it.Description), dto.StyleItemUse)
	return nil
}
