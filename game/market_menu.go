package game

import (
	"context"
	"fmt"

	"go-cultivation/catalog"
	"go-cultivation/dto"
)

func handleMarketMenu(s *Session, _ context.Context, _ Args) error {
	s.ui.DisplayMessage("--- Marketplace ---", dto.StyleMarket)
	s.ui.DisplayMessage(fmt.Sprintf("Spirit Stones: %d", s.player.Count(catalog.SpiritStones)), dto.StyleMarket)
	s.ui.PopulateActions([]dto.Choice{
		{Text: "Browse Listings", Action: ActionMarketView, Style: "market_action"},
		{Text: "Sell Items", Action: ActionMarketSell, Style: "market_action"},
		{Text: "Back", Action: ActionMainMenu, Style: "neutral"},
	}, dto.TargetMain)
	return nil
}

// handleMarketSell offers every tradable stack.
func handleMarketSell(s *Session, _ context.Context, _ Args) error {
	var choices []dto.Choice
	for _, slot := range s.inventoryView().Slots {
		choices = append(choices, dto.Choice{
			Text:   fmt.Sprintf("%s (x%d)", slot.Name, slot.Quantity),
			Action: ActionMarketList, Value: slot.Key, Style: "market_action",
		})
	}
	if len(choices) == 0 {
		s.ui.DisplayMessage("You have nothing to sell.", dto.StyleNarration)
	} else {
		s.ui.DisplayMessage("Choose an item to list:", dto.StyleMarket)
	}
	choices = append(choices, dto.Choice{Text: "Back", Action: ActionMarketMenu, Style: "neutral"})
	s.ui.PopulateActions(choices, dto.TargetMain)
	return nil
}

func handleMarketList(s *Session, ctx context.Context, args Args) error {
	name := s.cat.ItemName(args.Value)
	qty, price := args.Quantity, args.Price
	if qty == 0 {
		n, ok, err := s.askQuantity(ctx, fmt.Sprintf("How many %s to list? (you have %d)", name, s.player.Count(args.Value)))
		if err != nil {
			return err
		}
		if !ok {
			s.cancelled()
			return handleMarketMenu(s, ctx, Args{})
		}
		qty = n
	}
	if price == 0 {
		n, ok, err := s.askQuantity(ctx, fmt.Sprintf("Price per %s in Spirit Stones?", name))
		if err != nil {
			return err
		}
		if !ok {
			s.cancelled()
			return handleMarketMenu(s, ctx, Args{})
		}
		price = n
		if !s.confirm(ctx, fmt.Sprintf("List %dx %s at %d each?", qty, name, price)) {
			s.cancelled()
			return handleMarketMenu(s, ctx, Args{})
		}
	}
	l, err := s.market.List(ctx, s.player, args.Value, qty, price)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("Listed %dx %s for %d Spirit Stones each.", l.Quantity, l.ItemName, l.PricePerItem), dto.StyleSuccess)
	s.ui.UpdateStats(s.statsView())
	return handleMarketMenu(s, ctx, Args{})
}

const listedLayout = "Jan 2 15:04 UTC"

func handleMarketView(s *Session, ctx context.Context, _ Args) error {
	listings, err := s.market.Listings(ctx)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage("--- Active Listings ---", dto.StyleMarket)
	var choices []dto.Choice
	for _, l := range listings {
		s.ui.DisplayMessage(fmt.Sprintf("%dx %s @ %d each, sold by %s (listed %s)",
			l.Quantity, l.ItemName, l.PricePerItem, l.SellerName, l.ListedTime().UTC().Format(listedLayout)), dto.StyleMarket)
		if l.SellerID == s.player.PlayerID {
			choices = append(choices, dto.Choice{Text: "Remove " + l.ItemName, Action: ActionMarketRemove, Value: l.ListingID, Style: "danger"})
		} else {
			choices = append(choices, dto.Choice{Text: fmt.Sprintf("Buy %s (%d)", l.ItemName, l.PricePerItem), Action: ActionMarketBuy, Value: l.ListingID, Style: "market_action"})
		}
	}
	if len(listings) == 0 {
		s.ui.DisplayMessage("The marketplace is empty.", dto.StyleNarration)
	}
	choices = append(choices,
		dto.Choice{Text: "Refresh", Action: ActionMarketView, Style: "neutral"},
		dto.Choice{Text: "Back", Action: ActionMarketMenu, Style: "neutral"},
	)
	s.ui.PopulateActions(choices, dto.TargetMain)
	return nil
}

func handleMarketBuy(s *Session, ctx context.Context, args Args) error {
	qty := args.Quantity
	if qty == 0 {
		l, err := s.market.Listing(ctx, args.Value)
		if err != nil {
			return err
		}
		qty = 1
		if l.Quantity > 1 {
			n, ok, err := s.askQuantity(ctx, fmt.Sprintf("How many %s? (%d available at %d each)", l.ItemName, l.Quantity, l.PricePerItem))
			if err != nil {
				return err
			}
			if !ok {
				s.cancelled()
				return handleMarketView(s, ctx, Args{})
			}
			qty = n
		}
		if !s.confirm(ctx, fmt.Sprintf("Buy %dx %s for %d Spirit Stones?", qty, l.ItemName, qty*l.PricePerItem)) {
			s.cancelled()
			return handleMarketView(s, ctx, Args{})
		}
	}
	p, err := s.market.Buy(ctx, s.player, args.Value, qty)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("Purchased %dx %s for %d Spirit Stones.", p.Quantity, p.Listing.ItemName, p.Total), dto.StyleSuccess)
	s.ui.UpdateStats(s.statsView())
	return handleMarketView(s, ctx, Args{})
}

func handleMarketRemove(s *Session, ctx context.Context, args Args) error {
	l, err := s.market.Remove(ctx, s.player, args.Value)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("Removed listing. %dx %s returned to your inventory.", l.Quantity, l.ItemName), dto.StyleSuccess)
	return handleMarketView(s, ctx, Args{})
}
