package catalog

// ItemType classifies catalog entries.
type ItemType string

const (
	Material   ItemType = "material"
	Currency   ItemType = "currency"
	Consumable ItemType = "consumable"
	Weapon     ItemType = "weapon"
	Talisman   ItemType = "talisman"
	Recipe     ItemType = "recipe"
)

// SpiritStones is the reserved currency resource key.
const SpiritStones = "spiritStones"

// Frequently referenced item keys.
const (
	MinorHealingPill    = "minorHealingPill"
	MinorQiPill         = "minorQiPill"
	RoughSword          = "roughSword"
	MinorFireTalisman   = "minorFireTalisman"
	RoughIronOre        = "roughIronOre"
	BlankTalismanPaper  = "blankTalismanPaper"
	JadeleafGrass       = "jadeleafGrass"
	CrimsonSpiritBerry  = "crimsonSpiritBerry"
	SpiritStoneFragment = "spiritStoneFragment"
	MonsterCoreWeak     = "monsterCoreWeak"
	BeastBoneFragment   = "beastBoneFragment"
)

// EffectKind tags what an Effect does when the item is used.
type EffectKind int

const (
	EffectHeal EffectKind = iota + 1
	EffectRestoreQi
	EffectEquip
	EffectCombatDamage
	EffectLearnRecipe
	EffectBreakthrough
	EffectPermanentStat
	EffectCombatBuff
)

func (k EffectKind) String() string {
	switch k {
	case EffectHeal:
		return "heal"
	case EffectRestoreQi:
		return "restore_qi"
	case EffectEquip:
		return "equip"
	case EffectCombatDamage:
		return "combat_damage"
	case EffectLearnRecipe:
		return "learn_recipe"
	case EffectBreakthrough:
		return "breakthrough"
	case EffectPermanentStat:
		return "permanent_stat"
	case EffectCombatBuff:
		return "combat_buff"
	}
	return "unknown"
}

// Effect is pure data; game.applyEffect interprets it.
//
// Amount scales with the user's level as Amount + level*PerLevel/LevelDiv.
type Effect struct {
	Kind      EffectKind
	Amount    int
	PerLevel  int
	LevelDiv  int
	QiCost    int
	Attack    int
	Defense   int
	RecipeKey string
	Level     int
}

// Scaled returns the effect amount for a user at the given level.
func (e Effect) Scaled(level int) int {
	if e.PerLevel == 0 {
		return e.Amount
	}
	div := e.LevelDiv
	if div <= 0 {
		div = 1
	}
	return e.Amount + level*e.PerLevel/div
}

// Item is one catalog entry.
type Item struct {
	Key            string
	Name           string
	Description    string
	Type           ItemType
	Tier           int
	Rare           bool
	ForRealmBreak  int
	UsableInCombat bool
	Effects        []Effect
}

// Usable reports whether the item does something when used from the inventory.
func (it Item) Usable() bool {
	switch it.Type {
	case Consumable, Weapon, Recipe:
		return true
	}
	return false
}

// Effect returns the first effect of the given kind.
func (it Item) Effect(kind EffectKind) (Effect, bool) {
	for _, e := range it.Effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}

func material(key, name, desc string, tier int) Item {
	return Item{Key: key, Name: name, Description: desc, Type: Material, Tier: tier}
}

func rare(it Item, forRealmBreak int) Item {
	it.Rare = true
	it.ForRealmBreak = forRealmBreak
	return it
}

func baseItems() []Item {
	return []Item{
		material("commonHerbs", "Common Herbs", "Basic herbs for alchemy.", 1),
		material(RoughIronOre, "Rough Iron Ore", "Unrefined ore for forging.", 1),
		material(BlankTalismanPaper, "Blank Talisman Paper", "Paper for drawing talismans.", 1),
		material(MonsterCoreWeak, "Monster Core (Weak)", "A weak core from a defeated monster.", 1),
		material(BeastBoneFragment, "Beast Bone Fragment", "A fragment of a beast's bone.", 2),
		material("spiritDust", "Spirit Dust", "Residue with faint spiritual energy.", 2),
		material(SpiritStoneFragment, "Spirit Stone Fragment", "A small piece of a spirit stone.", 1),
		{Key: SpiritStones, Name: "Spirit Stones", Description: "Currency of the cultivation world.", Type: Currency},

		{
			Key: MinorHealingPill, Name: "Minor Healing Pill", Description: "Restores a small amount of health.",
			Type: Consumable, UsableInCombat: true,
			Effects: []Effect{{Kind: EffectHeal, Amount: 25}},
		},
		{
			Key: MinorQiPill, Name: "Minor QI Pill", Description: "Restores a small amount of QI.",
			Type: Consumable, UsableInCombat: true,
			Effects: []Effect{{Kind: EffectRestoreQi, Amount: 20}},
		},
		{
			Key: RoughSword, Name: "Rough Sword", Description: "A crudely made sword. Attack +5.",
			Type:    Weapon,
			Effects: []Effect{{Kind: EffectEquip, Amount: 5}},
		},
		{
			Key: MinorFireTalisman, Name: "Minor Fire Talisman", Description: "Unleashes a small burst of fire. (10 QI)",
			Type:    Talisman,
			Effects: []Effect{{Kind: EffectCombatDamage, Amount: 15, QiCost: 10}},
		},

		material(JadeleafGrass, "Jadeleaf Grass", "Common herb that mildly restores qi.", 1),
		material(CrimsonSpiritBerry, "Crimson Spirit Berry", "Used for blood regeneration and minor injuries.", 1),
		material("soothingRainPetal", "Soothing Rain Petal", "Calms qi deviation; heals minor spiritual wounds.", 2),
		material("moondewFlower", "Moondew Flower", "A gentle restorative for mind and body.", 2),
		material("earthrootGinseng", "Earthroot Ginseng", "Recovers qi and physical stamina.", 3),
		material("skyLotusBud", "Sky Lotus Bud", "Advanced qi restoration, often used by Core cultivators.", 4),
		material("whisperingLeaf", "Whispering Leaf", "Promotes faster energy circulation during rest.", 3),
		material("radiantSunfruit", "Radiant Sunfruit", "Restores both qi and vitality rapidly.", 4),
		material("cloudmossVine", "Cloudmoss Vine", "Stimulates spiritual veins; best for Nascent Soul users.", 5),
		rare(material("spiritglowMushroom", "Spiritglow Mushroom", "Heals internal meridian damage.", 5), 0),

		rare(material("breakthroughVine", "Breakthrough Vine", "Helps cultivators leap into Foundation Establishment.", 1), 2),
		rare(material("dragonboneFern", "Dragonbone Fern", "Used in pills to stabilize Core Formation.", 2), 3),
		rare(material("phoenixbloodHerb", "Phoenixblood Herb", "Burns away impurities; ideal for advancing into Nascent Soul.", 3), 4),
		rare(material("ascensionOrchid", "Ascension Orchid", "Rare orchid that assists in Soul Formation breakthroughs.", 4), 5),
		rare(material("heavenpierceRoot", "Heavenpierce Root", "Violently clears bottlenecks; high risk, high reward.", 4), 5),
		rare(material("divineFlameGrass", "Divine Flame Grass", "Contains pure yang energy; used for fiery breakthroughs.", 3), 0),
		rare(material("lunarBloom", "Lunar Bloom", "Yin energy concentrated herb, used in realm balance pills.", 3), 0),
		rare(material("immortalDustleaf", "Immortal Dustleaf", "Needed for Transcendence Elixirs.", 5), 6),
		rare(material("voidberryThorn", "Voidberry Thorn", "Bitter but crucial for soul ascension.", 5), 6),
		rare(material("thunderclapFruit", "Thunderclap Fruit", "Shocks dantian to force enlightenment at high realms.", 5), 0),

		material("starforgePetal", "Starforge Petal", "A petal that glimmers with starlight.", 4),
		material("stoneheartRoot", "Stoneheart Root", "A root as hard as stone, imbued with earth essence.", 4),
		material("spiritEyeFlower", "Spirit-Eye Flower", "A flower that seems to gaze into the spiritual realm.", 3),
		material("heartblossomBud", "Heartblossom Bud", "A bud said to open one's heart to spiritual senses.", 3),
		material("silverstormLeaf", "Silverstorm Leaf", "A leaf that moves with incredible speed, even in stillness.", 3),
		material("goldenDantianFruit", "Golden Dantian Fruit", "A fruit believed to strengthen a cultivator's core.", 4),
		rare(material("blackflameGinseng", "Blackflame Ginseng", "Ginseng that smolders with dark fire.", 4), 0),
		rare(material("frostmarrowMoss", "Frostmarrow Moss", "Moss that chills to the bone, yet preserves essence.", 4), 0),
		material("harmonizingBellvine", "Harmonizing Bellvine", "A vine whose flowers chime with balancing energies.", 5),
		rare(material("eyeOfTheAncients", "Eye of the Ancients", "A petrified eye that seems to hold ancient knowledge.", 5), 0),
	}
}
