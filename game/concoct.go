package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// AvailableRecipes lists the recipes the player may concoct: the basic
// recipe and every learned one, gated by required level.
func AvailableRecipes(cat *catalog.Catalog, p *entities.Player) []catalog.PillRecipe {
	var out []catalog.PillRecipe
	for _, r := range cat.Recipes() {
		if (r.IsBasic || p.KnowsRecipe(r.Key)) && p.CultivationLevel >= r.RequiredLevel {
			out = append(out, r)
		}
	}
	return out
}

// MaxConcoct is how many batches the player can afford right now.
func MaxConcoct(p *entities.Player, r catalog.PillRecipe) int {
	most := -1
	for key, need := range r.Ingredients {
		if need <= 0 {
			continue
		}
		if n := p.Count(key) / need; most < 0 || n < most {
			most = n
		}
	}
	if r.QiCost > 0 {
		if n := p.CurrentQi / r.QiCost; most < 0 || n < most {
			most = n
		}
	}
	if most < 0 {
		return 0
	}
	return most
}

// Concoct produces qty pills or changes nothing.
func Concoct(cat *catalog.Catalog, p *entities.Player, recipeKey string, qty int) (catalog.PillRecipe, error) {
	r, ok := cat.Recipe(recipeKey)
	if !ok {
		return r, ErrRecipeUnavailable
	}
	if !r.IsBasic && !p.KnowsRecipe(r.Key) {
		return r, ErrRecipeUnavailable
	}
	if p.CultivationLevel < r.RequiredLevel {
		return r, service.LevelGateError{Feature: r.Name, RequiredLevel: r.RequiredLevel, CurrentLevel: p.CultivationLevel}
	}
	if qty <= 0 {
		return r, service.ErrInvalidQuantity
	}

	keys := make([]string, 0, len(r.Ingredients))
	for k := range r.Ingredients {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if need := r.Ingredients[k] * qty; p.Count(k) < need {
			return r, fmt.Errorf("%w: need %d %s, have %d", service.ErrInsufficientItems, need, cat.ItemName(k), p.Count(k))
		}
	}
	if need := r.QiCost * qty; p.CurrentQi < need {
		return r, fmt.Errorf("%w: need %d, have %d", service.ErrInsufficientQi, need, p.CurrentQi)
	}

	for _, k := range keys {
		_ = p.RemoveItem(k, r.Ingredients[k]*qty)
	}
	_ = p.SpendQi(r.QiCost * qty)
	p.AddItem(r.ProducesItemKey, qty)
	return r, nil
}

func (s *Session) ingredientList(r catalog.PillRecipe) string {
	keys := make([]string, 0, len(r.Ingredients))
	for k := range r.Ingredients {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s.cat.ItemName(k), s.player.Count(k), r.Ingredients[k]))
	}
	return strings.Join(parts, ", ")
}

func handleConcoctMenu(s *Session, _ context.Context, _ Args) error {
	recipes := AvailableRecipes(s.cat, s.player)
	s.ui.DisplayMessage("--- Alchemy Furnace ---", dto.StyleCrafting)
	var choices []dto.Choice
	for _, r := range recipes {
		n := MaxConcoct(s.player, r)
		s.ui.DisplayMessage(fmt.Sprintf("%s: %s | QI %d | can make %d", r.Name, s.ingredientList(r), r.QiCost, n), dto.StyleCrafting)
		if n > 0 {
			choices = append(choices, dto.Choice{Text: "Concoct " + r.Name, Action: ActionConcoct, Value: r.Key, Style: "confirm"})
		}
	}
	if len(choices) == 0 {
		s.ui.DisplayMessage("You lack the ingredients or QI for any recipe you know.", dto.StyleNarration)
	}
	choices = append(choices, dto.Choice{Text: "Back", Action: ActionMainMenu, Style: "neutral"})
	s.ui.PopulateActions(choices, dto.TargetMain)
	return nil
}

func handleConcoct(s *Session, ctx context.Context, args Args) error {
	r, ok := s.cat.Recipe(args.Value)
	if !ok {
		return ErrRecipeUnavailable
	}
	qty := args.Quantity
	if qty == 0 {
		n, ok, err := s.askQuantity(ctx, fmt.Sprintf("How many %s? (max %d)", r.Name, MaxConcoct(s.player, r)))
		if err != nil {
			return err
		}
		if !ok {
			s.cancelled()
			return handleConcoctMenu(s, ctx, Args{})
		}
		qty = n
	}
	if _, err := Concoct(s.cat, s.player, r.Key, qty); err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("Successfully concocted %dx %s!", qty, r.Name), dto.StyleSuccess)
	s.save(ctx)
	s.ui.UpdateStats(s.statsView())
	return handleConcoctMenu(s, ctx, Args{})
}
