package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/repository"
)

// ListingPageSize caps how many active listings are shown at once.
const ListingPageSize = 20

// Purchase summarises a completed buy.
type Purchase struct {
	Listing  entities.MarketListing
	Quantity int
	Total    int
}

// Market runs listing, buying and removal as store transactions. The
// player passed in is the caller's own in-memory document; it is mutated
// only after the transaction commits.
type Market struct {
	store    *repository.Store
	listings *repository.ListingRepo
	catalog  *catalog.Catalog
	ledger   repository.Ledger
	log      *zap.Logger
}

func NewMarket(store *repository.Store, cat *catalog.Catalog, ledger repository.Ledger, log *zap.Logger) *Market {
	if ledger == nil {
		ledger = repository.NopLedger{}
	}
	return &Market{
		store:    store,
		listings: repository.NewListingRepo(store),
		catalog:  cat,
		ledger:   ledger,
		log:      log.Named("market"),
	}
}

// List moves qty units out of the seller's inventory into a new active
// listing. The deduction and the listing commit together.
func (m *Market) List(ctx context.Context, seller *entities.Player, itemKey string, qty, price int) (*entities.MarketListing, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	item, ok := m.catalog.Item(itemKey)
	if !ok {
		return nil, ErrUnknownItem
	}
	if item.Type == catalog.Currency {
		return nil, ErrNotTradable
	}
	if seller.Count(itemKey) < qty {
		return nil, ErrInsufficientItems
	}

	now, err := m.store.ServerTime(ctx)
	if err != nil {
		return nil, err
	}
	listing := &entities.MarketListing{
		ListingID:    m.store.NewID(),
		ItemID:       itemKey,
		ItemName:     item.Name,
		Quantity:     qty,
		PricePerItem: price,
		SellerID:     seller.PlayerID,
		SellerName:   seller.Name,
		ListedAt:     now.UnixMilli(),
		Status:       dto.ListingActive,
	}

	staged := seller.Clone()
	if err := staged.RemoveItem(itemKey, qty); err != nil {
		return nil, err
	}
	err = m.store.RunTransaction(ctx, func(tx *repository.Tx) error {
		if err := repository.PutPlayer(tx, staged); err != nil {
			return err
		}
		repository.PutListing(tx, listing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	seller.RemoveItem(itemKey, qty)

	m.log.Info("listing created",
		zap.String("listing", listing.ListingID),
		zap.String("seller", seller.PlayerID),
		zap.String("item", itemKey),
		zap.Int("qty", qty),
		zap.Int("price", price))
	return listing, nil
}

// Buy purchases qty units from a listing. Every precondition is checked
// against the listing as read inside the transaction, so two buyers racing
// for the last unit cannot both succeed.
func (m *Market) Buy(ctx context.Context, buyer *entities.Player, listingID string, qty int) (*Purchase, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	var purchase Purchase
	err := m.store.RunTransaction(ctx, func(tx *repository.Tx) error {
		l, err := repository.GetListing(tx, listingID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		switch {
		case !l.Active():
			return ErrListingInactive
		case l.SellerID == buyer.PlayerID:
			return ErrOwnListing
		case qty > l.Quantity:
			return ErrQuantityUnavailable
		}
		total := qty * l.PricePerItem
		if buyer.Count(catalog.SpiritStones) < total {
			return ErrInsufficientFunds
		}
		exists, err := repository.PlayerExists(tx, l.SellerID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSellerNotFound
		}

		staged := buyer.Clone()
		if err := staged.RemoveItem(catalog.SpiritStones, total); err != nil {
			return ErrInsufficientFunds
		}
		staged.AddItem(l.ItemID, qty)

		updated := *l
		updated.Quantity -= qty
		if updated.Quantity == 0 {
			updated.Status = dto.ListingSold
		}

		if err := repository.PutPlayer(tx, staged); err != nil {
			return err
		}
		repository.PutListing(tx, &updated)
		repository.CreditInbox(tx, l.SellerID, catalog.SpiritStones, total)

		purchase = Purchase{Listing: updated, Quantity: qty, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buyer.RemoveItem(catalog.SpiritStones, purchase.Total)
	buyer.AddItem(purchase.Listing.ItemID, qty)

	trade := entities.Trade{
		ListingID:    listingID,
		BuyerID:      buyer.PlayerID,
		SellerID:     purchase.Listing.SellerID,
		ItemID:       purchase.Listing.ItemID,
		Quantity:     qty,
		PricePerItem: purchase.Listing.PricePerItem,
	}
	if now, err := m.store.ServerTime(ctx); err == nil {
		trade.TradedAt = now
	}
	if err := m.ledger.RecordTrade(ctx, trade); err != nil {
		m.log.Warn("trade ledger write failed", zap.String("listing", listingID), zap.Error(err))
	}
	m.log.Info("listing bought",
		zap.String("listing", listingID),
		zap.String("buyer", buyer.PlayerID),
		zap.Int("qty", qty),
		zap.Int("total", purchase.Total))
	return &purchase, nil
}

// Remove cancels an active listing and refunds the remaining quantity.
func (m *Market) Remove(ctx context.Context, caller *entities.Player, listingID string) (*entities.MarketListing, error) {
	var removed entities.MarketListing
	err := m.store.RunTransaction(ctx, func(tx *repository.Tx) error {
		l, err := repository.GetListing(tx, listingID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		if l.SellerID != caller.PlayerID {
			return ErrNotSeller
		}
		if !l.Active() {
			return ErrListingInactive
		}

		staged := caller.Clone()
		staged.AddItem(l.ItemID, l.Quantity)
		removed = *l
		removed.Status = dto.ListingRemoved

		if err := repository.PutPlayer(tx, staged); err != nil {
			return err
		}
		repository.PutListing(tx, &removed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	caller.AddItem(removed.ItemID, removed.Quantity)
	m.log.Info("listing removed", zap.String("listing", listingID), zap.String("seller", caller.PlayerID))
	return &removed, nil
}

// Listings returns the newest active listings.
func (m *Market) Listings(ctx context.Context) ([]*entities.MarketListing, error) {
	return m.listings.ListActive(ctx, ListingPageSize)
}

// Listing loads one listing.
func (m *Market) Listing(ctx context.Context, listingID string) (*entities.MarketListing, error) {
	l, err := m.listings.Get(ctx, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	return l, err
}
