package catalog

// HerbDrop is one row of a realm tier's herb table.
type HerbDrop struct {
	ItemKey string
	Chance  float64
	Min     int
	Max     int
}

var herbDrops = map[int][]HerbDrop{
	1: {
		{JadeleafGrass, 0.45, 1, 3},
		{CrimsonSpiritBerry, 0.30, 1, 2},
		{"breakthroughVine", 0.08, 1, 1},
	},
	2: {
		{JadeleafGrass, 0.20, 1, 2},
		{CrimsonSpiritBerry, 0.35, 1, 3},
		{"soothingRainPetal", 0.30, 1, 2},
		{"moondewFlower", 0.20, 1, 1},
		{"spiritEyeFlower", 0.10, 1, 1},
		{"dragonboneFern", 0.07, 1, 1},
	},
	3: {
		{"soothingRainPetal", 0.20, 1, 2},
		{"moondewFlower", 0.25, 1, 2},
		{"earthrootGinseng", 0.35, 1, 2},
		{"whisperingLeaf", 0.15, 1, 1},
		{"heartblossomBud", 0.12, 1, 1},
		{"silverstormLeaf", 0.10, 1, 1},
		{"phoenixbloodHerb", 0.06, 1, 1},
		{"divineFlameGrass", 0.04, 1, 1},
		{"lunarBloom", 0.04, 1, 1},
	},
	4: {
		{"earthrootGinseng", 0.15, 1, 1},
		{"whisperingLeaf", 0.20, 1, 2},
		{"skyLotusBud", 0.30, 1, 1},
		{"radiantSunfruit", 0.15, 1, 1},
		{"starforgePetal", 0.08, 1, 1},
		{"stoneheartRoot", 0.08, 1, 1},
		{"goldenDantianFruit", 0.07, 1, 1},
		{"blackflameGinseng", 0.05, 1, 1},
		{"frostmarrowMoss", 0.05, 1, 1},
		{"ascensionOrchid", 0.05, 1, 1},
		{"heavenpierceRoot", 0.03, 1, 1},
	},
	5: {
		{"skyLotusBud", 0.15, 1, 2},
		{"radiantSunfruit", 0.20, 1, 1},
		{"cloudmossVine", 0.25, 1, 1},
		{"spiritglowMushroom", 0.10, 1, 1},
		{"harmonizingBellvine", 0.06, 1, 1},
		{"eyeOfTheAncients", 0.04, 1, 1},
		{"immortalDustleaf", 0.04, 1, 1},
		{"voidberryThorn", 0.03, 1, 1},
		{"thunderclapFruit", 0.02, 1, 1},
	},
	6: {
		{"cloudmossVine", 0.10, 1, 1},
		{"spiritglowMushroom", 0.08, 1, 1},
		{"immortalDustleaf", 0.05, 1, 1},
		{"voidberryThorn", 0.04, 1, 1},
		{"thunderclapFruit", 0.03, 1, 1},
	},
}

// SpiritualRoot is one outcome of the root divination roll.
type SpiritualRoot struct {
	Name       string
	Multiplier int
	// Below is the exclusive upper bound on a 0..999 roll.
	Below   int
	Quality string
}

var spiritualRoots = []SpiritualRoot{
	{"Five Spiritual Roots", 1, 150, "Common root, slow progress."},
	{"Four Spiritual Roots", 2, 400, "Low talent, chaotic affinity."},
	{"Three Spiritual Roots", 4, 700, "Average talent. Focus is key."},
	{"Dual Spiritual Roots", 8, 900, "Good compatibility, balanced growth."},
	{"Single Spiritual Root", 16, 980, "Extremely rare, high purity, fast cultivation!"},
	{"Heavenly Spiritual Root", 32, 995, "Perfect harmony! Divine potential!"},
	{"Chaos Spiritual Root", 64, 1000, "Mythical root of immense power!"},
}

// RootRollRange is the exclusive bound of the spiritual root roll.
const RootRollRange = 1000

// SpiritualRootFor maps a roll in [0, RootRollRange) to its root.
func SpiritualRootFor(roll int) SpiritualRoot {
	for _, r := range spiritualRoots {
		if roll < r.Below {
			return r
		}
	}
	return spiritualRoots[len(spiritualRoots)-1]
}

// Class keys with mechanical effects elsewhere in the game.
const (
	ClassMartial         = "martial_cultivator"
	ClassQi              = "qi_cultivator"
	ClassAlchemist       = "alchemist"
	ClassArtifactRefiner = "artifact_refiner"
	ClassTalismanMaster  = "talisman_master"
	ClassFormationMaster = "formation_master"
	ClassBeastTamer      = "beast_tamer"
	ClassPoisonMaster    = "poison_master"
	ClassPuppetMaster    = "puppet_master"
	ClassSoulCultivator  = "soul_cultivator"
	ClassDemonCultivator = "demon_cultivator"
	ClassHeavenlyOracle  = "heavenly_oracle"
)

// ClassBonus is applied once when a class is chosen.
type ClassBonus struct {
	Attack          int
	MaxHealth       int
	MaxQi           int
	Items           map[string]int
	ResetCorruption bool
	Message         string
}

// Class describes a cultivation path.
type Class struct {
	Key            string
	Name           string
	Specialty      string
	Recommendation string
	Bonus          ClassBonus
}

var classes = []Class{
	{ClassMartial, "Martial Cultivator",
		"Physical combat, brute strength, melee dominance, endurance.",
		"Frontline DPS or tank roles; players who enjoy direct combat and body refinement.",
		ClassBonus{Attack: 5, MaxHealth: 20, Message: "Your physique strengthens! +5 Attack, +20 Max Health."}},
	{ClassQi, "Qi Cultivator",
		"Elemental spells, ranged attacks, flying swords, formations.",
		"Ranged DPS, strategic players focused on spellcasting and control.",
		ClassBonus{MaxQi: 20, Message: "You feel a natural affinity for Qi. Your meditation is more effective & Max QI increased by 20."}},
	{ClassAlchemist, "Alchemist",
		"Crafting pills for healing, breakthrough, poison, or buffing.",
		"Support role or merchant-style gameplay; influences world through economics and rare pill production.",
		ClassBonus{Items: map[string]int{JadeleafGrass: 5, CrimsonSpiritBerry: 3}, Message: "You start with an innate knowledge of herbs. +5 Jadeleaf Grass, +3 Crimson Spirit Berry."}},
	{ClassArtifactRefiner, "Artifact Refiner",
		"Forging spiritual weapons, defensive artifacts, arrays.",
		"Crafters and strategic support players who arm others or gain power through custom gear.",
		ClassBonus{Items: map[string]int{RoughIronOre: 3}, Message: "You have a knack for finding quality materials. +3 Rough Iron Ore."}},
	{ClassTalismanMaster, "Talisman Master",
		"Drawing talismans for attack, defense, sealing, summoning.",
		"Burst combat or utility players who enjoy preparation and setup playstyles.",
		ClassBonus{Items: map[string]int{BlankTalismanPaper: 10}, Message: "You begin with a supply of talisman paper. +10 Blank Talisman Paper."}},
	{ClassFormationMaster, "Formation Master",
		"Setting up battlefield formations for area control, traps, or enhancement.",
		"Tactical thinkers; for team buffs, enemy restriction, and battlefield control.",
		ClassBonus{}},
	{ClassBeastTamer, "Beast Tamer",
		"Taming and commanding spirit beasts or demonic creatures.",
		"Summoner-style players, beast combat synergy, or solo adventuring with companions.",
		ClassBonus{}},
	{ClassPoisonMaster, "Poison Master",
		"Toxins, stealth, curse arts, assassination.",
		"Debuffers, rogue-style gameplay, or players who enjoy subversive tactics.",
		ClassBonus{}},
	{ClassPuppetMaster, "Puppet Master",
		"Constructs animated puppets for combat, defense, spying.",
		"Tech/artifact lovers, indirect combat style, and versatile setups.",
		ClassBonus{}},
	{ClassSoulCultivator, "Soul Cultivator",
		"Attacks based on divine soul/spiritual awareness, illusions, or mind control.",
		"High-risk, high-reward players; focuses on soul damage and mental battles.",
		ClassBonus{}},
	{ClassDemonCultivator, "Demon Cultivator",
		"Dark techniques, fast growth through taboo methods, body possession, curses.",
		"Villainous or anti-hero players; strong but risky path with moral choices.",
		ClassBonus{ResetCorruption: true, Message: "You tread the path of demons. Be wary of corruption."}},
	{ClassHeavenlyOracle, "Heavenly Oracle",
		"Prophecy, luck manipulation, fate techniques.",
		"Utility/support or RP-focused players; can influence events or gain rare opportunities.",
		ClassBonus{}},
}
