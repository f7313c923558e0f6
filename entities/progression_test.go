package entities

import "testing"

func TestXPForNextLevel(t *testing.T) {
	for _, lvl := range []int{0, 1, 8, 9, 45, 100} {
		if got, want := XPForNextLevel(lvl), (lvl+1)*100; got != want {
			t.Fatalf("XPForNextLevel(%d) = %d, want %d", lvl, got, want)
		}
	}
}

func TestRealmNames(t *testing.T) {
	cases := map[int]string{
		0:  "Mortal",
		1:  "Qi Condensation Stage 1",
		5:  "Qi Condensation Stage 5",
		9:  "Qi Condensation Stage 9",
		10: "Foundation Establishment",
		18: "Foundation Establishment",
		19: "Core Formation",
		28: "Nascent Soul",
		37: "Soul Formation",
		45: "Soul Formation",
		46: "Transcendent",
	}
	for lvl, want := range cases {
		if got := RealmName(lvl); got != want {
			t.Fatalf("RealmName(%d) = %q, want %q", lvl, got, want)
		}
	}
	if RealmTier(9) != 1 || RealmTier(10) != 2 || RealmTier(46) != 6 {
		t.Fatalf("unexpected realm tiers")
	}
	if MonsterRealmName(4) != "Weak Beast" || MonsterRealmName(35) != "Ancient Terror" {
		t.Fatalf("unexpected monster realm names")
	}
}

func TestGainXPWithoutLevelUp(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.CultivationLevel = 8
	p.CultivationProgress = 95

	res := p.GainXP(30)
	if res.Gained != 30 || len(res.Levels) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if p.CultivationLevel != 8 || p.CultivationProgress != 125 {
		t.Fatalf("got L=%d P=%d, want L=8 P=125", p.CultivationLevel, p.CultivationProgress)
	}
}

func TestGainXPLevelsUpAndAppliesStats(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.Health = 10
	res := p.GainXP(250)

	if len(res.Levels) != 1 || p.CultivationLevel != 2 || p.CultivationProgress != 50 {
		t.Fatalf("got L=%d P=%d res=%+v", p.CultivationLevel, p.CultivationProgress, res)
	}
	if p.MaxHealth != StartingHealth+LevelHealthGain || p.Health != p.MaxHealth {
		t.Fatalf("health %d/%d", p.Health, p.MaxHealth)
	}
	if p.Attack != StartingAttack+2 || p.Defense != StartingDefense+1 {
		t.Fatalf("atk=%d def=%d", p.Attack, p.Defense)
	}
	if p.MaxQi != StartingQi+LevelQiGain || p.CurrentQi != p.MaxQi {
		t.Fatalf("qi %d/%d", p.CurrentQi, p.MaxQi)
	}
}

func TestGainXPAppliesRootMultiplier(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	if err := p.AssignSpiritualRoot("Dual Spiritual Roots", 8); err != nil {
		t.Fatal(err)
	}
	res := p.GainXP(10)
	if res.Gained != 80 || p.CultivationProgress != 80 {
		t.Fatalf("gained %d progress %d", res.Gained, p.CultivationProgress)
	}
	if err := p.AssignSpiritualRoot("Chaos Spiritual Root", 64); err != ErrRootAlreadyRolled {
		t.Fatalf("second roll err = %v", err)
	}
}

func TestGainXPStopsAtPlateau(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.CultivationLevel = 8
	p.CultivationProgress = 800

	res := p.GainXP(5000)
	if p.CultivationLevel != 9 {
		t.Fatalf("level = %d, want 9", p.CultivationLevel)
	}
	if !res.Plateau || p.CultivationProgress != XPForNextLevel(9) {
		t.Fatalf("progress = %d res=%+v", p.CultivationProgress, res)
	}

	res = p.GainXP(5000)
	if !res.Locked || res.Gained != 0 || p.CultivationProgress != XPForNextLevel(9) || p.CultivationLevel != 9 {
		t.Fatalf("locked gain changed state: %+v L=%d P=%d", res, p.CultivationLevel, p.CultivationProgress)
	}
}

func TestGainXPCapsPartialPlateau(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.CultivationLevel = 18
	p.CultivationProgress = 1800

	res := p.GainXP(150)
	if res.Gained != 100 || p.CultivationProgress != 1900 || p.CultivationLevel != 18 {
		t.Fatalf("res=%+v L=%d P=%d", res, p.CultivationLevel, p.CultivationProgress)
	}
	if !p.AtPlateau() {
		t.Fatal("expected plateau")
	}
}

func TestGainXPNeverPassesPlateaus(t *testing.T) {
	for _, plateau := range PlateauLevels() {
		p := NewPlayer("p1", "u", "pw", "Lin")
		p.CultivationLevel = plateau - 1
		for i := 0; i < 20; i++ {
			p.GainXP(997)
			if p.CultivationLevel > plateau {
				t.Fatalf("passed plateau %d: L=%d", plateau, p.CultivationLevel)
			}
			if p.CultivationLevel == plateau && p.CultivationProgress > XPForNextLevel(plateau) {
				t.Fatalf("progress %d exceeds cap at %d", p.CultivationProgress, plateau)
			}
		}
	}
}

func TestMajorBreakthrough(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.CultivationLevel = 9
	p.CultivationProgress = XPForNextLevel(9)
	p.Health = 3
	p.CurrentQi = 0
	before := *p

	if err := p.MajorBreakthrough(18); err != ErrNotReadyForBreakthrough {
		t.Fatalf("wrong pill err = %v", err)
	}
	if err := p.MajorBreakthrough(9); err != nil {
		t.Fatalf("MajorBreakthrough: %v", err)
	}
	if p.CultivationLevel != 10 || p.CultivationProgress != 0 {
		t.Fatalf("L=%d P=%d", p.CultivationLevel, p.CultivationProgress)
	}
	if p.MaxHealth != before.MaxHealth+70 || p.Attack != before.Attack+7 || p.Defense != before.Defense+4 || p.MaxQi != before.MaxQi+35 {
		t.Fatalf("stats not applied: %+v", p.Character)
	}
	if p.MaxInventorySlots != before.MaxInventorySlots+50 {
		t.Fatalf("slots = %d", p.MaxInventorySlots)
	}
	if p.Health != p.MaxHealth || p.CurrentQi != p.MaxQi {
		t.Fatalf("not restored: hp %d/%d qi %d/%d", p.Health, p.MaxHealth, p.CurrentQi, p.MaxQi)
	}
}

func TestBreakthroughRequiresFullProgress(t *testing.T) {
	p := NewPlayer("p1", "u", "pw", "Lin")
	p.CultivationLevel = 9
	p.CultivationProgress = 10
	if err := p.MajorBreakthrough(9); err != ErrNotReadyForBreakthrough {
		t.Fatalf("err = %v", err)
	}
	if p.CultivationLevel != 9 {
		t.Fatal("level changed on failed breakthrough")
	}
}

func TestTakeDamageClamps(t *testing.T) {
	c := NewCharacter("wolf", 30, 5, 4, 1)
	if got := c.TakeDamage(3); got != 0 || c.Health != 30 {
		t.Fatalf("blocked hit dealt %d, health %d", got, c.Health)
	}
	if got := c.TakeDamage(10); got != 6 || c.Health != 24 {
		t.Fatalf("dealt %d, health %d", got, c.Health)
	}
	c.TakeDamage(500)
	if c.Health != 0 || c.IsAlive() {
		t.Fatalf("health = %d", c.Health)
	}
	c.Heal(1000)
	if c.Health != c.MaxHealth {
		t.Fatalf("heal overflowed: %d/%d", c.Health, c.MaxHealth)
	}
}
