package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"go-cultivation/catalog"
	"go-cultivation/entities"
)

// linear is base + level*num/den, floored.
type linear struct{ base, num, den int }

func (l linear) at(level int) int {
	den := l.den
	if den == 0 {
		den = 1
	}
	return l.base + level*l.num/den
}

type archetype struct {
	name    string
	health  linear
	attack  linear
	defense linear
	xp      linear
	tamable bool
}

// archetypes holds one monster per realm tier.
var archetypes = map[int]archetype{
	1: {"Rabid Wolf", linear{30, 2, 1}, linear{5, 1, 1}, linear{1, 1, 2}, linear{25, 2, 1}, true},
	2: {"Forest Sprite", linear{50, 5, 2}, linear{8, 1, 1}, linear{3, 1, 2}, linear{40, 5, 2}, true},
	3: {"Stone Golem", linear{80, 3, 1}, linear{10, 1, 1}, linear{5, 1, 2}, linear{50, 3, 1}, false},
	4: {"Young Wyvern", linear{150, 4, 1}, linear{18, 3, 2}, linear{8, 3, 4}, linear{100, 4, 1}, false},
	5: {"Demonic Cultivator Remnant", linear{220, 9, 2}, linear{22, 9, 5}, linear{10, 9, 10}, linear{180, 9, 2}, false},
	6: {"Ancient Guardian Spirit", linear{300, 5, 1}, linear{28, 2, 1}, linear{15, 1, 1}, linear{250, 5, 1}, false},
}

// NewMonster builds the opponent for a player of the given level.
func NewMonster(level int) *entities.Monster {
	tier := entities.RealmTier(level)
	a := archetypes[tier]
	return &entities.Monster{
		Character: entities.NewCharacter(a.name, a.health.at(level), a.attack.at(level), a.defense.at(level), level),
		Tier:      tier,
		XPReward:  a.xp.at(level),
		Tamable:   a.tamable,
	}
}

var rivalNames = []string{"Shadow Lin", "Azure Fang", "Silent Gao", "Crimson Hua", "Iron Fist Zhao"}

// NewRival builds a transient cultivator near the player's level.
func NewRival(level int, rng Rand) *entities.Player {
	r := level + rng.Intn(5) - 2
	if r < 1 {
		r = 1
	}
	name := rivalNames[rng.Intn(len(rivalNames))]
	rival := entities.NewPlayer("rival_"+uuid.New().String(), "", "", name)
	rival.Character = entities.NewCharacter(name, 80+20*r, 8+5*r, 4+2*r, r)
	rival.MaxQi = 40 + 8*r
	rival.CurrentQi = rival.MaxQi
	return rival
}

// Drop is one stack of loot.
type Drop struct {
	ItemKey  string
	Quantity int
}

type lootBag map[string]int

func (b lootBag) add(key string, n int) {
	if n > 0 {
		b[key] += n
	}
}

func (b lootBag) drops() []Drop {
	out := make([]Drop, 0, len(b))
	for k, n := range b {
		out = append(out, Drop{ItemKey: k, Quantity: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemKey < out[j].ItemKey })
	return out
}

// RollMonsterLoot rolls the drops for defeating a monster.
func RollMonsterLoot(cat *catalog.Catalog, rng Rand, level int) []Drop {
	tier := entities.RealmTier(level)
	bag := lootBag{}
	if rng.Float64() < 0.7 {
		bag.add(catalog.SpiritStones, rng.Intn(tier*2)+tier)
	}
	if rng.Float64() < 0.5 {
		bag.add(catalog.SpiritStoneFragment, 1)
	}
	if rng.Float64() < 0.25 {
		bag.add(catalog.MonsterCoreWeak, 1)
	}
	if rng.Float64() < 0.15 && tier > 1 {
		bag.add(catalog.BeastBoneFragment, 1)
	}
	if rng.Float64() < 0.65 {
		rollHerbs(cat, rng, tier, bag, func(breakTier int) float64 {
			switch {
			case breakTier == tier+1:
				return 1.2
			case breakTier <= tier:
				return 0.4
			}
			return 1
		})
	}
	if rng.Float64() < 0.12 {
		eligible := recipeScrolls(cat, func(r catalog.PillRecipe) bool {
			return level >= r.RequiredLevel-8 && level <= r.RequiredLevel+8
		})
		if len(eligible) > 0 {
			bag.add(eligible[rng.Intn(len(eligible))], 1)
		}
	}
	return bag.drops()
}

// RollExploreFinds rolls what a player stumbles upon while exploring.
func RollExploreFinds(cat *catalog.Catalog, rng Rand, p *entities.Player) []Drop {
	level := p.CultivationLevel
	tier := entities.RealmTier(level)
	bag := lootBag{}
	if rng.Float64() < 0.45 {
		rollHerbs(cat, rng, tier, bag, func(breakTier int) float64 {
			switch {
			case breakTier > tier:
				return 0.5
			case breakTier < tier:
				return 0.3
			}
			return 1
		})
	}
	if rng.Float64() < 0.08 {
		eligible := recipeScrolls(cat, func(r catalog.PillRecipe) bool {
			return level >= r.RequiredLevel-5 && level <= r.RequiredLevel+10
		})
		// The pick is uniform over the window; a scroll the player already
		// has is simply not found.
		if len(eligible) > 0 {
			scroll := eligible[rng.Intn(len(eligible))]
			if it, ok := cat.Item(scroll); ok && p.Count(scroll) == 0 && !knowsScroll(p, it) {
				bag.add(scroll, 1)
			}
		}
	}
	if rng.Float64() < 0.2 {
		bag.add(catalog.SpiritStones, rng.Intn(2)+1)
	}
	if p.ChosenClassKey == catalog.ClassAlchemist && rng.Float64() < 0.15 {
		bag.add(catalog.JadeleafGrass, 1)
	}
	return bag.drops()
}

// rollHerbs rolls every herb of the tier independently. factor scales the
// chance of herbs tied to a realm breakthrough.
func rollHerbs(cat *catalog.Catalog, rng Rand, tier int, bag lootBag, factor func(breakTier int) float64) {
	for _, h := range cat.HerbDrops(tier) {
		chance := h.Chance
		if it, ok := cat.Item(h.ItemKey); ok && it.ForRealmBreak > 0 {
			chance *= factor(it.ForRealmBreak)
		}
		if rng.Float64() < chance {
			bag.add(h.ItemKey, rng.Intn(h.Max-h.Min+1)+h.Min)
		}
	}
}

func knowsScroll(p *entities.Player, scroll catalog.Item) bool {
	for _, eff := range scroll.Effects {
		if eff.Kind == catalog.EffectLearnRecipe && p.KnowsRecipe(eff.RecipeKey) {
			return true
		}
	}
	return false
}

// recipeScrolls lists scroll item keys, ordered by key, whose recipe passes
// keep.
func recipeScrolls(cat *catalog.Catalog, keep func(catalog.PillRecipe) bool) []string {
	var out []string
	for _, it := range cat.RecipeItems() {
		for _, eff := range it.Effects {
			if eff.Kind != catalog.EffectLearnRecipe {
				continue
			}
			if r, ok := cat.Recipe(eff.RecipeKey); ok && keep(r) {
				out = append(out, it.Key)
			}
		}
	}
	return out
}

// grant adds drops to the player and renders them.
func (s *Session) grant(drops []Drop) string {
	parts := make([]string, 0, len(drops))
	for _, d := range drops {
		s.player.AddItem(d.ItemKey, d.Quantity)
		parts = append(parts, fmt.Sprintf("%dx %s", d.Quantity, s.cat.ItemName(d.ItemKey)))
	}
	return strings.Join(parts, ", ")
}
