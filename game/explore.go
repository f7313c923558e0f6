package game

import (
	"context"
	"fmt"

	"go-cultivation/catalog"
	"go-cultivation/dto"
)

const (
	stealthChance   = 0.3
	stealthSuccess  = 0.7
	encounterChance = 0.7
)

func handleExplore(s *Session, ctx context.Context, _ Args) error {
	p := s.player
	if !p.IsAlive() {
		return ErrIncapacitated
	}
	s.ui.DisplayMessage(fmt.Sprintf("%s ventures into the wilds...", p.Name), dto.StyleNarration)

	finds := RollExploreFinds(s.cat, s.rng, p)
	if len(finds) > 0 {
		s.ui.DisplayMessage(fmt.Sprintf("You found: %s!", s.grant(finds)), dto.StyleLoot)
	}

	if p.ChosenClassKey == catalog.ClassPoisonMaster && s.rng.Float64() < stealthChance {
		if s.confirm(ctx, "You sense a creature nearby. Attempt a Stealthy Approach?") {
			if s.rng.Float64() < stealthSuccess {
				s.ui.DisplayMessage("You slip past unseen and study the creature's habits.", dto.StyleSuccess)
				s.gainXP(s.rng.Intn(5) + 3)
				s.save(ctx)
				s.showMenu()
				return nil
			}
			s.ui.DisplayMessage("A twig snaps underfoot. You have been spotted!", dto.StyleError)
		} else {
			s.ui.DisplayMessage("You decide against stealth.", dto.StyleNarration)
		}
	}

	if s.rng.Float64() < encounterChance {
		s.save(ctx)
		s.startCombat(ctx, NewMonster(p.CultivationLevel))
		return nil
	}
	if len(finds) == 0 {
		s.ui.DisplayMessage("The area is quiet.", dto.StyleNarration)
	}
	s.ui.DisplayMessage("Gained insights from your surroundings.", dto.StyleNarration)
	s.gainXP(s.rng.Intn(5+p.CultivationLevel) + 5)
	s.save(ctx)
	s.showMenu()
	return nil
}
