package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"go-cultivation/entities"
)

//go:embed recipes.csv
var defaultRecipes []byte

const basicRecipeName = "Basic Qi Recovery Pill"

// PillRecipe is derived from one recipe table row.
type PillRecipe struct {
	Key             string
	Name            string
	Description     string
	Ingredients     map[string]int
	ProducesItemKey string
	// RecipeItemKey is empty for the basic recipe, which everyone knows.
	RecipeItemKey string
	QiCost        int
	RequiredLevel int
	IsBasic       bool
}

// Catalog is immutable after Load and safe to share between sessions.
type Catalog struct {
	items    map[string]Item
	byNorm   map[string]string
	recipes  map[string]PillRecipe
	classes  map[string]Class
	warnings []string
}

// Default loads the recipe table compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultRecipes))
}

// Load builds the catalog from the static tables plus a recipe table with
// the columns: elixir name, "+"-joined ingredient names, usage description.
func Load(r io.Reader) (*Catalog, error) {
	c := &Catalog{
		items:   make(map[string]Item),
		byNorm:  make(map[string]string),
		recipes: make(map[string]PillRecipe),
		classes: make(map[string]Class, len(classes)),
	}
	for _, it := range baseItems() {
		c.addItem(it)
	}
	for _, cl := range classes {
		c.classes[cl.Key] = cl
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read recipe header: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "Elixir Name") {
		return nil, fmt.Errorf("unexpected recipe header %q", header)
	}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read recipe row: %w", err)
		}
		if err := c.addRecipe(row[0], row[1], row[2]); err != nil {
			return nil, err
		}
	}
	if _, ok := c.recipes[camelKey(basicRecipeName)]; !ok {
		return nil, fmt.Errorf("recipe table has no %q", basicRecipeName)
	}
	return c, nil
}

func (c *Catalog) addItem(it Item) {
	c.items[it.Key] = it
	c.byNorm[normalize(it.Name)] = it.Key
	c.byNorm[normalize(it.Key)] = it.Key
}

func (c *Catalog) addRecipe(name, ingredientList, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return errors.New("recipe row with empty name")
	}
	key := camelKey(name)
	if _, dup := c.recipes[key]; dup {
		return fmt.Errorf("duplicate recipe %q", name)
	}

	ingredients := make(map[string]int)
	var ingredientNames []string
	for _, part := range strings.Split(ingredientList, "+") {
		ingName := strings.TrimSpace(part)
		if ingName == "" {
			continue
		}
		ingredients[c.resolveIngredient(ingName)]++
		ingredientNames = append(ingredientNames, ingName)
	}
	if len(ingredients) == 0 {
		return fmt.Errorf("recipe %q has no ingredients", name)
	}

	plateau, isBreakthrough := breakthroughLevel(name)
	pr := PillRecipe{
		Key:             key,
		Name:            name,
		Description:     description,
		Ingredients:     ingredients,
		ProducesItemKey: key + "Item",
		QiCost:          int(math.Floor(5 + float64(len(ingredients))*3 + float64(len(name))/2)),
		RequiredLevel:   requiredLevel(name, description),
		IsBasic:         name == basicRecipeName,
	}
	if !pr.IsBasic {
		pr.RecipeItemKey = key + "Recipe"
	}
	c.recipes[key] = pr

	pill := Item{
		Key:         pr.ProducesItemKey,
		Name:        name,
		Description: description,
		Type:        Consumable,
	}
	_, permanent := permanentStatPills[name]
	switch {
	case isBreakthrough:
		pill.Effects = []Effect{{Kind: EffectBreakthrough, Level: plateau}}
	case permanent:
		pill.Effects = permanentStatPills[name]
	default:
		pill.Effects = pillEffects[name]
		pill.UsableInCombat = true
	}
	c.addItem(pill)

	if pr.RecipeItemKey != "" {
		c.addItem(Item{
			Key:         pr.RecipeItemKey,
			Name:        "Recipe: " + name,
			Description: fmt.Sprintf("Teaches the method to concoct %s. Ingredients: %s.", name, strings.Join(ingredientNames, ", ")),
			Type:        Recipe,
			Effects:     []Effect{{Kind: EffectLearnRecipe, RecipeKey: key}},
		})
	}
	return nil
}

// resolveIngredient maps a table ingredient name to an item key. Names are
// matched ignoring case, spaces and punctuation; unknown names become a
// tier 1 material so the recipe stays craftable.
func (c *Catalog) resolveIngredient(name string) string {
	key := camelKey(name)
	if _, ok := c.items[key]; ok {
		return key
	}
	if k, ok := c.byNorm[normalize(name)]; ok {
		return k
	}
	c.addItem(material(key, name, "Herb for alchemy: "+name+".", 1))
	c.warnings = append(c.warnings, fmt.Sprintf("unknown ingredient %q, created material %q", name, key))
	return key
}

func breakthroughLevel(pillName string) (int, bool) {
	for _, lvl := range entities.PlateauLevels() {
		if n, _ := entities.BreakthroughPillName(lvl); n == pillName {
			return lvl, true
		}
	}
	return 0, false
}

func requiredLevel(name, description string) int {
	if lvl, ok := breakthroughLevel(name); ok {
		return lvl
	}
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(name, "Advanced"), strings.Contains(name, "Core"):
		return 19
	case strings.Contains(name, "Nascent Soul"):
		return 28
	case strings.Contains(desc, "core cultivators"):
		return 19
	case strings.Contains(desc, "nascent soul"):
		return 28
	}
	return 1
}

var pillEffects = map[string][]Effect{
	"Basic Qi Recovery Pill":     {{Kind: EffectRestoreQi, Amount: 20, PerLevel: 1, LevelDiv: 2}},
	"Vitality Rejuvenation Pill": {{Kind: EffectHeal, Amount: 40, PerLevel: 1}, {Kind: EffectRestoreQi, Amount: 10}},
	"Mind-Calming Elixir":        {{Kind: EffectRestoreQi, Amount: 15}},
	"Advanced Spirit Pill":       {{Kind: EffectRestoreQi, Amount: 100, PerLevel: 2}, {Kind: EffectHeal, Amount: 20}},
	"Nascent Soul Vital Pill":    {{Kind: EffectRestoreQi, Amount: 200, PerLevel: 3}, {Kind: EffectHeal, Amount: 150, PerLevel: 2}},
	"Spirit-Eye Elixir":          {{Kind: EffectRestoreQi, Amount: 25}},
	"Flame Infusion Pill":        {{Kind: EffectCombatBuff, Attack: 5}},
	"Balance Harmonization Pill": {{Kind: EffectRestoreQi, Amount: 30}, {Kind: EffectHeal, Amount: 10}},
}

var permanentStatPills = map[string][]Effect{
	"Starforge Strength Pill": {{Kind: EffectPermanentStat, Attack: 1}},
	"Agility Surge Pill":      {{Kind: EffectPermanentStat, Defense: 1}},
}

// camelKey turns "Mind-Calming Elixir" into "mindcalmingElixir": punctuation
// is dropped without starting a new word.
func camelKey(s string) string {
	var b strings.Builder
	first, upper := true, false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			switch {
			case first:
				b.WriteRune(unicode.ToLower(r))
				first = false
			case upper:
				b.WriteRune(unicode.ToUpper(r))
			default:
				b.WriteRune(unicode.ToLower(r))
			}
			upper = false
		case unicode.IsSpace(r):
			upper = !first
		}
	}
	return b.String()
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Item looks up a catalog entry.
func (c *Catalog) Item(key string) (Item, bool) {
	it, ok := c.items[key]
	return it, ok
}

// ItemName falls back to the key for unknown items.
func (c *Catalog) ItemName(key string) string {
	if it, ok := c.items[key]; ok {
		return it.Name
	}
	return key
}

func (c *Catalog) IsCurrency(key string) bool {
	it, ok := c.items[key]
	return ok && it.Type == Currency
}

func (c *Catalog) Recipe(key string) (PillRecipe, bool) {
	r, ok := c.recipes[key]
	return r, ok
}

// Recipes returns every recipe ordered by required level, then name.
func (c *Catalog) Recipes() []PillRecipe {
	out := make([]PillRecipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequiredLevel != out[j].RequiredLevel {
			return out[i].RequiredLevel < out[j].RequiredLevel
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RecipeItems returns every learnable recipe scroll ordered by key.
func (c *Catalog) RecipeItems() []Item {
	var out []Item
	for _, it := range c.items {
		if it.Type == Recipe {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// HerbDrops returns the herb table for a realm tier.
func (c *Catalog) HerbDrops(tier int) []HerbDrop { return herbDrops[tier] }

// Classes returns every cultivation path in menu order.
func (c *Catalog) Classes() []Class { return append([]Class(nil), classes...) }

func (c *Catalog) Class(key string) (Class, bool) {
	cl, ok := c.classes[key]
	return cl, ok
}

// Warnings lists ingredient names that had to be synthesized.
func (c *Catalog) Warnings() []string { return append([]string(nil), c.warnings...) }
