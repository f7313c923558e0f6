package entities

import "errors"

// ErrNotReadyForBreakthrough is returned when a breakthrough pill is used
// away from its full plateau.
var ErrNotReadyForBreakthrough = errors.New("not ready for breakthrough")

var plateauPills = map[int]string{
	9:  "Foundation Establishment Pill",
	18: "Golden Core Nine Revolutions Pill",
	27: "Nascent Soul Unification Pill",
	36: "Soul Formation Heaven Pill",
	45: "Transcendence Void Elixir",
}

// Major breakthrough bonuses: the regular level gain plus the realm bonus.
const (
	BreakthroughHealthGain  = LevelHealthGain + 50
	BreakthroughAttackGain  = LevelAttackGain + 5
	BreakthroughDefenseGain = LevelDefenseGain + 3
	BreakthroughQiGain      = LevelQiGain + 25
	BreakthroughSlotGain    = 50
)

// IsPlateauLevel reports whether leaving level needs a breakthrough pill.
func IsPlateauLevel(level int) bool {
	_, ok := plateauPills[level]
	return ok
}

// BreakthroughPillName names the pill that unlocks a plateau level.
func BreakthroughPillName(level int) (string, bool) {
	name, ok := plateauPills[level]
	return name, ok
}

// PlateauLevels lists the plateau levels in ascending order.
func PlateauLevels() []int { return []int{9, 18, 27, 36, 45} }

// XPGain describes what a single experience grant did.
type XPGain struct {
	Gained int
	// Levels holds every level reached, in order.
	Levels []int
	// Locked is set when nothing was credited because the plateau was full.
	Locked bool
	// Plateau is set when the character ends at a full plateau.
	Plateau bool
}

// AtPlateau reports whether the character is stuck at a full plateau.
func (c *Character) AtPlateau() bool {
	return IsPlateauLevel(c.CultivationLevel) && c.CultivationProgress >= c.XPForNextLevel()
}

// GainXP credits experience without plateau gating. Monsters use this path.
func (c *Character) GainXP(amount int) XPGain {
	return c.advance(amount, false, nil)
}

func (c *Character) advance(gain int, gated bool, onLevel func()) XPGain {
	var res XPGain
	if !c.IsAlive() {
		return res
	}
	if gain < 0 {
		gain = 0
	}
	if gated && c.AtPlateau() {
		res.Locked = true
		res.Plateau = true
		return res
	}
	if gated && IsPlateauLevel(c.CultivationLevel) {
		room := c.XPForNextLevel() - c.CultivationProgress
		if gain >= room {
			c.CultivationProgress += room
			res.Gained = room
			res.Plateau = true
			return res
		}
	}

	c.CultivationProgress += gain
	res.Gained = gain
	for c.CultivationProgress >= c.XPForNextLevel() && c.IsAlive() {
		c.levelUp()
		if onLevel != nil {
			onLevel()
		}
		res.Levels = append(res.Levels, c.CultivationLevel)
		if gated && IsPlateauLevel(c.CultivationLevel) {
			c.CultivationProgress = c.XPForNextLevel()
			res.Plateau = true
			break
		}
	}
	return res
}
