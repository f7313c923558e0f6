package entities

import "fmt"

// Stat gains per minor level.
const (
	LevelHealthGain  = 20
	LevelAttackGain  = 2
	LevelDefenseGain = 1
	LevelQiGain      = 10
)

// Character is the stat block shared by every combatant.
type Character struct {
	Name                string `json:"name"`
	MaxHealth           int    `json:"maxHealth"`
	Health              int    `json:"health"`
	Attack              int    `json:"attack"`
	Defense             int    `json:"defense"`
	CultivationLevel    int    `json:"cultivationLevel"`
	CultivationProgress int    `json:"cultivationProgress"`
}

// NewCharacter returns a character at full health.
func NewCharacter(name string, health, attack, defense, level int) Character {
	return Character{
		Name:             name,
		MaxHealth:        health,
		Health:           health,
		Attack:           attack,
		Defense:          defense,
		CultivationLevel: level,
	}
}

func (c *Character) IsAlive() bool { return c.Health > 0 }

// XPForNextLevel is the progress needed to leave the current level.
func (c *Character) XPForNextLevel() int { return XPForNextLevel(c.CultivationLevel) }

func XPForNextLevel(level int) int { return (level + 1) * 100 }

// TakeDamage applies raw damage after defense and returns what landed.
// Health is clamped to [0, MaxHealth].
func (c *Character) TakeDamage(raw int) int {
	actual := raw - c.Defense
	if actual < 0 {
		actual = 0
	}
	c.Health -= actual
	if c.Health < 0 {
		c.Health = 0
	}
	return actual
}

// Heal restores up to n health and returns the amount restored.
func (c *Character) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := c.Health
	c.Health += n
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

func (c *Character) levelUp() {
	c.CultivationProgress -= c.XPForNextLevel()
	c.CultivationLevel++
	c.MaxHealth += LevelHealthGain
	c.Health = c.MaxHealth
	c.Attack += LevelAttackGain
	c.Defense += LevelDefenseGain
}

// RealmName is the player-facing realm for a cultivation level.
func RealmName(level int) string {
	switch {
	case level <= 0:
		return "Mortal"
	case level >= 46:
		return "Transcendent"
	case level >= 37:
		return "Soul Formation"
	case level >= 28:
		return "Nascent Soul"
	case level >= 19:
		return "Core Formation"
	case level >= 10:
		return "Foundation Establishment"
	}
	return fmt.Sprintf("Qi Condensation Stage %d", (level-1)%9+1)
}

// RealmTier coarsens a level into six bands used by monster and loot tables.
func RealmTier(level int) int {
	switch {
	case level >= 46:
		return 6
	case level >= 37:
		return 5
	case level >= 28:
		return 4
	case level >= 19:
		return 3
	case level >= 10:
		return 2
	}
	return 1
}

// MonsterRealmName is the coarser naming used for beasts.
func MonsterRealmName(level int) string {
	switch {
	case level < 5:
		return "Weak Beast"
	case level < 15:
		return "Fierce Beast"
	case level < 25:
		return "Demonic Beast"
	case level < 35:
		return "Spirit Beast"
	}
	return "Ancient Terror"
}
