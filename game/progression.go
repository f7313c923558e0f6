package game

import (
	"context"
	"fmt"
	"strings"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// gainXP credits experience and narrates what happened.
func (s *Session) gainXP(amount int) entities.XPGain {
	p := s.player
	res := p.GainXP(amount)
	if res.Locked {
		pill, _ := entities.BreakthroughPillName(p.CultivationLevel)
		s.ui.DisplayMessage(fmt.Sprintf("You are at the peak of %s and require a %s. You are not gaining further experience.", p.RealmName(), pill), dto.StyleImportant)
		return res
	}
	if res.Gained > 0 {
		s.ui.DisplayMessage(fmt.Sprintf("%s gained %d cultivation experience.", p.Name, res.Gained), dto.StyleSuccess)
	}
	for _, lvl := range res.Levels {
		s.ui.DisplayMessage(fmt.Sprintf("Congratulations! %s has reached %s!", p.Name, entities.RealmName(lvl)), dto.StyleImportant)
	}
	if res.Plateau {
		pill, _ := entities.BreakthroughPillName(p.CultivationLevel)
		s.ui.DisplayMessage(fmt.Sprintf("You have reached the peak of %s! You require a %s to break through!", p.RealmName(), pill), dto.StyleImportant)
		s.ui.DisplayMessage("You are no longer gaining cultivation experience until you break through.", dto.StyleNarration)
	}
	s.ui.UpdateStats(s.statsView())
	return res
}

func handleRollRoot(s *Session, ctx context.Context, _ Args) error {
	root := catalog.SpiritualRootFor(s.rng.Intn(catalog.RootRollRange))
	if err := s.player.AssignSpiritualRoot(root.Name, root.Multiplier); err != nil {
		return err
	}
	s.ui.DisplayMessage("You sit in meditation as the heavens probe your meridians...", dto.StyleNarration)
	s.ui.DisplayMessage(fmt.Sprintf("Spiritual Root revealed: %s (x%d cultivation speed)", root.Name, root.Multiplier), dto.StyleSpiritualRoot)
	s.ui.DisplayMessage(root.Quality, dto.StyleSpiritualRoot)
	s.save(ctx)
	s.showMenu()
	return nil
}

func handleClassInfo(s *Session, _ context.Context, args Args) error {
	cl, ok := s.cat.Class(args.Value)
	if !ok {
		return ErrUnknownClass
	}
	s.ui.DisplayMessage(fmt.Sprintf("--- %s ---", cl.Name), dto.StyleImportant)
	s.ui.DisplayMessage("Specialty: "+cl.Specialty, dto.StyleClassInfo)
	s.ui.DisplayMessage("Recommended for: "+cl.Recommendation, dto.StyleClassInfo)
	s.ui.PopulateActions([]dto.Choice{
		{Text: "Confirm " + cl.Name, Action: ActionClassSelect, Value: cl.Key, Style: "confirm"},
		{Text: "Back", Action: ActionMainMenu, Style: "neutral"},
	}, dto.TargetMain)
	return nil
}

func handleClassSelect(s *Session, ctx context.Context, args Args) error {
	cl, ok := s.cat.Class(args.Value)
	if !ok {
		return ErrUnknownClass
	}
	p := s.player
	if err := p.ChooseClass(cl.Key, cl.Name); err != nil {
		return err
	}
	b := cl.Bonus
	p.Attack += b.Attack
	if b.MaxHealth > 0 {
		p.MaxHealth += b.MaxHealth
		p.Health = p.MaxHealth
	}
	if b.MaxQi > 0 {
		p.MaxQi += b.MaxQi
		p.CurrentQi = p.MaxQi
	}
	for key, n := range b.Items {
		p.AddItem(key, n)
	}
	if b.ResetCorruption {
		p.DemonicCorruption = 0
	}
	s.ui.DisplayMessage(fmt.Sprintf("You have chosen the path of the %s!", cl.Name), dto.StyleSuccess)
	if b.Message != "" {
		s.ui.DisplayMessage(b.Message, dto.StyleClassInfo)
	}
	s.save(ctx)
	s.showMenu()
	return nil
}

func handleMeditate(s *Session, ctx context.Context, _ Args) error {
	p := s.player
	if !p.IsAlive() {
		return ErrIncapacitated
	}
	healthPct, qiPct := 25, 25
	if p.ChosenClassKey == catalog.ClassQi {
		healthPct, qiPct = 30, 35
	}
	s.ui.DisplayMessage(fmt.Sprintf("%s enters a meditative state...", p.Name), dto.StyleNarration)
	healed := p.Heal(p.MaxHealth * healthPct / 100)
	restored := p.RestoreQi(p.MaxQi * qiPct / 100)
	s.ui.DisplayMessage(fmt.Sprintf("Recovered %d health and %d QI.", healed, restored), dto.StyleQiRecovery)
	s.save(ctx)
	s.showMenu()
	return nil
}

func handleViewStats(s *Session, _ context.Context, _ Args) error {
	v := s.statsView()
	lines := []string{
		fmt.Sprintf("--- %s ---", v.Name),
		fmt.Sprintf("Realm: %s (Level %d)", v.Realm, v.Level),
		fmt.Sprintf("Cultivation: %d/%d", v.Progress, v.NextLevel),
		fmt.Sprintf("Spiritual Root: %s (x%d)", v.SpiritualRoot, v.RootMultiplier),
		fmt.Sprintf("Class: %s", v.Class),
		fmt.Sprintf("Health: %d/%d  QI: %d/%d", v.Health, v.MaxHealth, v.Qi, v.MaxQi),
		fmt.Sprintf("Attack: %d  Defense: %d  Weapon: %s", v.Attack, v.Defense, v.Weapon),
		fmt.Sprintf("Spirit Stones: %d", v.SpiritStones),
		fmt.Sprintf("Sect: %s", v.Sect),
	}
	if v.DemonicCorruption != nil {
		lines = append(lines, fmt.Sprintf("Demonic Corruption: %d", *v.DemonicCorruption))
	}
	s.ui.DisplayMessage(strings.Join(lines, "\n"), dto.StyleSystem)
	s.ui.UpdateStats(v)
	return nil
}

// classCraft is a class-exclusive recipe that needs no scroll.
type classCraft struct {
	Action string
	Label  string
	Class  string
	Input  string
	Need   int
	Qi     int
	Output string
	Verb   string
}

var classCrafts = []classCraft{
	{ActionForge, "Forge Artifact", catalog.ClassArtifactRefiner, catalog.RoughIronOre, 3, 15, catalog.RoughSword, "forge"},
	{ActionDraw, "Draw Talisman", catalog.ClassTalismanMaster, catalog.BlankTalismanPaper, 1, 5, catalog.MinorFireTalisman, "draw"},
}

func handleClassCraft(name string) actionHandler {
	return func(s *Session, ctx context.Context, _ Args) error {
		var cc classCraft
		for _, c := range classCrafts {
			if c.Action == name {
				cc = c
			}
		}
		p := s.player
		if p.ChosenClassKey != cc.Class {
			return ErrWrongClass
		}
		if p.Count(cc.Input) < cc.Need || p.CurrentQi < cc.Qi {
			return fmt.Errorf("%w: need %d %s and %d QI", service.ErrInsufficientItems, cc.Need, s.cat.ItemName(cc.Input), cc.Qi)
		}
		// both checked above
		_ = p.RemoveItem(cc.Input, cc.Need)
		_ = p.SpendQi(cc.Qi)
		p.AddItem(cc.Output, 1)
		s.ui.DisplayMessage(fmt.Sprintf("You %s a %s!", cc.Verb, s.cat.ItemName(cc.Output)), dto.StyleCrafting)
		s.save(ctx)
		s.showMenu()
		return nil
	}
}
