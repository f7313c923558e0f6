package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/repository"
)

type recordingLedger struct {
	mu     sync.Mutex
	trades []entities.Trade
}

func (l *recordingLedger) RecordTrade(_ context.Context, t entities.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append(l.trades, t)
	return nil
}

func (l *recordingLedger) Close() error { return nil }

type marketFixture struct {
	store   *repository.Store
	players *repository.PlayerRepo
	market  *Market
	ledger  *recordingLedger
	seller  *entities.Player
	buyer   *entities.Player
}

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return repository.NewStore(rdb, 8, zap.NewNop())
}

func newMarketFixture(t *testing.T) *marketFixture {
	t.Helper()
	store := newStore(t)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := &marketFixture{
		store:   store,
		players: repository.NewPlayerRepo(store),
		ledger:  &recordingLedger{},
	}
	f.market = NewMarket(store, cat, f.ledger, zap.NewNop())

	ctx := context.Background()
	f.seller = entities.NewPlayer("seller", "seller", "pw", "Seller")
	f.seller.AddItem(catalog.JadeleafGrass, 10)
	f.buyer = entities.NewPlayer("buyer", "buyer", "pw", "Buyer")
	f.buyer.AddItem(catalog.SpiritStones, 100)
	for _, p := range []*entities.Player{f.seller, f.buyer} {
		if err := f.players.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.PlayerID, err)
		}
	}
	return f
}

func (f *marketFixture) list(t *testing.T, qty, price int) *entities.MarketListing {
	t.Helper()
	l, err := f.market.List(context.Background(), f.seller, catalog.JadeleafGrass, qty, price)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return l
}

func TestListDeductsStockAndPersists(t *testing.T) {
	f := newMarketFixture(t)
	l := f.list(t, 4, 6)

	if f.seller.Count(catalog.JadeleafGrass) != 6 {
		t.Fatalf("seller grass = %d, want 6", f.seller.Count(catalog.JadeleafGrass))
	}
	stored, err := f.players.Get(context.Background(), "seller")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Count(catalog.JadeleafGrass) != 6 {
		t.Fatalf("stored grass = %d, want 6", stored.Count(catalog.JadeleafGrass))
	}
	if l.Status != dto.ListingActive || l.ItemName != "Jadeleaf Grass" || l.ListedAt == 0 {
		t.Fatalf("listing = %+v", l)
	}
}

func TestListingLastEquippedWeaponUnequips(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	f.seller.AddItem(catalog.RoughSword, 2)
	f.seller.EquippedWeapon = catalog.RoughSword
	f.seller.WeaponAttackBonus = 5

	if _, err := f.market.List(ctx, f.seller, catalog.RoughSword, 1, 3); err != nil {
		t.Fatalf("List one: %v", err)
	}
	if f.seller.EquippedWeapon != catalog.RoughSword || f.seller.TotalAttack() != f.seller.Attack+5 {
		t.Fatalf("spare sword listed but weapon = %q bonus %d", f.seller.EquippedWeapon, f.seller.WeaponAttackBonus)
	}

	if _, err := f.market.List(ctx, f.seller, catalog.RoughSword, 1, 3); err != nil {
		t.Fatalf("List last: %v", err)
	}
	if f.seller.EquippedWeapon != "" || f.seller.WeaponAttackBonus != 0 {
		t.Fatalf("weapon = %q bonus %d after listing the last sword", f.seller.EquippedWeapon, f.seller.WeaponAttackBonus)
	}
	stored, err := f.players.Get(ctx, "seller")
	if err != nil {
		t.Fatal(err)
	}
	if stored.EquippedWeapon != "" || stored.WeaponAttackBonus != 0 || stored.Count(catalog.RoughSword) != 0 {
		t.Fatalf("stored weapon = %q bonus %d swords %d", stored.EquippedWeapon, stored.WeaponAttackBonus, stored.Count(catalog.RoughSword))
	}
}

func TestListRejectsBadInput(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	cases := []struct {
		item       string
		qty, price int
		want       error
	}{
		{catalog.JadeleafGrass, 0, 5, ErrInvalidQuantity},
		{catalog.JadeleafGrass, 1, 0, ErrInvalidPrice},
		{"noSuchThing", 1, 5, ErrUnknownItem},
		{catalog.SpiritStones, 1, 5, ErrNotTradable},
		{catalog.JadeleafGrass, 11, 5, ErrInsufficientItems},
	}
	for _, c := range cases {
		if _, err := f.market.List(ctx, f.seller, c.item, c.qty, c.price); !errors.Is(err, c.want) {
			t.Fatalf("List(%s,%d,%d) err = %v, want %v", c.item, c.qty, c.price, err, c.want)
		}
	}
	if f.seller.Count(catalog.JadeleafGrass) != 10 {
		t.Fatalf("failed listings changed stock: %d", f.seller.Count(catalog.JadeleafGrass))
	}
}

func TestBuyWholeListingMarksSold(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	l := f.list(t, 3, 7)

	p, err := f.market.Buy(ctx, f.buyer, l.ListingID, 3)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if p.Total != 21 || p.Listing.Status != dto.ListingSold || p.Listing.Quantity != 0 {
		t.Fatalf("purchase = %+v", p)
	}
	if f.buyer.Count(catalog.SpiritStones) != 79 || f.buyer.Count(catalog.JadeleafGrass) != 3 {
		t.Fatalf("buyer resources = %v", f.buyer.Resources)
	}

	// the seller's proceeds arrive through the inbox on their next save
	credits, err := f.players.Save(ctx, f.seller)
	if err != nil {
		t.Fatal(err)
	}
	if credits[catalog.SpiritStones] != 21 || f.seller.Count(catalog.SpiritStones) != 21 {
		t.Fatalf("seller credits = %v, stones = %d", credits, f.seller.Count(catalog.SpiritStones))
	}

	active, err := f.market.Listings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("sold listing still active: %+v", active)
	}
	if len(f.ledger.trades) != 1 || f.ledger.trades[0].Quantity != 3 {
		t.Fatalf("ledger = %+v", f.ledger.trades)
	}
}

func TestBuyPartialKeepsListingActive(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	l := f.list(t, 5, 2)

	if _, err := f.market.Buy(ctx, f.buyer, l.ListingID, 2); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	got, err := f.market.Listing(ctx, l.ListingID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != dto.ListingActive || got.Quantity != 3 {
		t.Fatalf("listing after partial buy = %+v", got)
	}
}

func TestBuyFailuresMutateNothing(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	l := f.list(t, 2, 60)

	if _, err := f.market.Buy(ctx, f.seller, l.ListingID, 1); !errors.Is(err, ErrOwnListing) {
		t.Fatalf("own listing err = %v", err)
	}
	if _, err := f.market.Buy(ctx, f.buyer, l.ListingID, 3); !errors.Is(err, ErrQuantityUnavailable) {
		t.Fatalf("too many err = %v", err)
	}
	if _, err := f.market.Buy(ctx, f.buyer, l.ListingID, 2); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("funds err = %v", err)
	}
	if _, err := f.market.Buy(ctx, f.buyer, "missing", 1); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("missing err = %v", err)
	}
	if f.buyer.Count(catalog.SpiritStones) != 100 || f.buyer.Count(catalog.JadeleafGrass) != 0 {
		t.Fatalf("buyer changed: %v", f.buyer.Resources)
	}
	got, err := f.market.Listing(ctx, l.ListingID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 2 || !got.Active() {
		t.Fatalf("listing changed: %+v", got)
	}
}

func TestConcurrentBuyersCannotDoubleSell(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	l := f.list(t, 1, 10)

	second := entities.NewPlayer("buyer2", "buyer2", "pw", "Second")
	second.AddItem(catalog.SpiritStones, 100)
	if err := f.players.Create(ctx, second); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, b := range []*entities.Player{f.buyer, second} {
		wg.Add(1)
		go func(i int, b *entities.Player) {
			defer wg.Done()
			_, errs[i] = f.market.Buy(ctx, b, l.ListingID, 1)
		}(i, b)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrListingInactive) && !errors.Is(err, ErrQuantityUnavailable) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successes = %d, want exactly 1 (errs %v)", ok, errs)
	}
	total := f.buyer.Count(catalog.JadeleafGrass) + second.Count(catalog.JadeleafGrass)
	if total != 1 {
		t.Fatalf("items delivered = %d", total)
	}
}

func TestRemoveRefundsAndIsTerminal(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()
	l := f.list(t, 4, 3)
	if _, err := f.market.Buy(ctx, f.buyer, l.ListingID, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := f.market.Remove(ctx, f.buyer, l.ListingID); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("non-seller remove err = %v", err)
	}
	removed, err := f.market.Remove(ctx, f.seller, l.ListingID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.Status != dto.ListingRemoved {
		t.Fatalf("status = %s", removed.Status)
	}
	if f.seller.Count(catalog.JadeleafGrass) != 9 {
		t.Fatalf("seller grass = %d, want 9", f.seller.Count(catalog.JadeleafGrass))
	}
	if _, err := f.market.Remove(ctx, f.seller, l.ListingID); !errors.Is(err, ErrListingInactive) {
		t.Fatalf("second remove err = %v", err)
	}
	if f.seller.Count(catalog.JadeleafGrass) != 9 {
		t.Fatalf("second remove refunded again: %d", f.seller.Count(catalog.JadeleafGrass))
	}
}

func TestClassifyMarketErrors(t *testing.T) {
	if Classify(ErrInsufficientFunds) != KindValidation {
		t.Fatal("funds should be validation")
	}
	if Classify(ErrListingNotFound) != KindNotFound {
		t.Fatal("missing listing should be not found")
	}
	if Classify(ErrListingInactive) != KindConflict {
		t.Fatal("inactive listing should be conflict")
	}
	if Classify(errors.New("connection reset")) != KindPersistence {
		t.Fatal("unknown errors should be persistence")
	}
	if Classify(LevelGateError{Feature: "x", RequiredLevel: 10}) != KindValidation {
		t.Fatal("level gate should be validation")
	}
}
