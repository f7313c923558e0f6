package entities

// Combatant is either a *Player or a *Monster.
type Combatant interface {
	Stats() *Character
	Realm() string
	// AttackPower is the attack used by the damage roll.
	AttackPower() int
}

func (p *Player) Stats() *Character { return &p.Character }
func (p *Player) Realm() string      { return p.RealmName() }
func (p *Player) AttackPower() int   { return p.TotalAttack() }

// Monster is built per encounter and never persisted.
type Monster struct {
	Character
	Tier     int  `json:"tier"`
	XPReward int  `json:"xpReward"`
	Tamable  bool `json:"tamable"`
}

func (m *Monster) Stats() *Character { return &m.Character }
func (m *Monster) Realm() string      { return MonsterRealmName(m.CultivationLevel) }
func (m *Monster) AttackPower() int   { return m.Attack }
