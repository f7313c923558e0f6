package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/game"
	"go-cultivation/repository"
	"go-cultivation/service"
	"go-cultivation/utils"
)

var errClosed = errors.New("fake conn closed")

// fakeConn feeds scripted client messages and records server events.
type fakeConn struct {
	in     chan []byte
	events chan map[string]interface{}
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		events: make(chan map[string]interface{}, 1024),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-f.in:
		return 1, msg, nil
	case <-f.closed:
		return 0, nil, errClosed
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	var ev map[string]interface{}
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	select {
	case f.events <- ev:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) sendJSON(t *testing.T, msg map[string]interface{}) {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	f.in <- b
}

// waitFor returns the first event of the given type that satisfies match.
func (f *fakeConn) waitFor(t *testing.T, msgType string, match func(map[string]interface{}) bool) map[string]interface{} {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-f.events:
			if ev["type"] == msgType && (match == nil || match(ev)) {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", msgType)
			return nil
		}
	}
}

func textContains(sub string) func(map[string]interface{}) bool {
	return func(ev map[string]interface{}) bool {
		s, _ := ev["text"].(string)
		return strings.Contains(s, sub)
	}
}

type hubFixture struct {
	hub      *Hub
	store    *repository.Store
	accounts *service.Accounts
	market   *service.Market
	cancel   context.CancelFunc
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	log := zap.NewNop()
	store := repository.NewStore(rdb, 8, log)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &hubFixture{
		store:    store,
		accounts: service.NewAccounts(store, log),
		market:   service.NewMarket(store, cat, nil, log),
		cancel:   cancel,
	}
	f.hub = NewHub(ctx, HubConfig{
		Store:    store,
		Accounts: f.accounts,
		Market:   f.market,
		Sects:    service.NewSectRegistry(log),
		Chat:     service.NewChat(store, log),
		Catalog:  cat,
		Tokens:   utils.NewTokens("secret", time.Hour),
		Log:      log,
	})
	t.Cleanup(func() {
		cancel()
		f.hub.Wait()
	})
	return f
}

// connect creates a player who has already picked a path and starts a
// session for them.
func (f *hubFixture) connect(t *testing.T, username string, setup func(p *entities.Player)) (*entities.Player, *fakeConn, chan struct{}) {
	t.Helper()
	ctx := context.Background()
	p, err := f.accounts.Create(ctx, username, "pw", username)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = p.AssignSpiritualRoot("Five Spiritual Roots", 1)
	_ = p.ChooseClass(catalog.ClassFormationMaster, "Formation Master")
	if setup != nil {
		setup(p)
	}
	if _, err := f.accounts.Players().Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.hub.Serve(p.PlayerID, conn)
	}()
	conn.waitFor(t, dto.EventInit, nil)
	conn.waitFor(t, dto.EventActions, nil)
	return p, conn, done
}

func waitClosed(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestSessionActionAndLogout(t *testing.T) {
	f := newHubFixture(t)
	_, conn, done := f.connect(t, "lin", nil)
	if f.hub.Online() != 1 {
		t.Fatalf("online = %d", f.hub.Online())
	}

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionViewStats})
	res := conn.waitFor(t, dto.EventActionResult, nil)
	if res["action"] != game.ActionViewStats || res["ok"] != true {
		t.Fatalf("result = %v", res)
	}

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": "meditate_harder"})
	res = conn.waitFor(t, dto.EventActionResult, nil)
	if res["ok"] != false || res["kind"] != "validation" {
		t.Fatalf("result = %v", res)
	}

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionLogout})
	conn.waitFor(t, dto.EventLogout, nil)
	waitClosed(t, done)
	if f.hub.Online() != 0 {
		t.Fatalf("online after logout = %d", f.hub.Online())
	}
}

func TestPromptBusyAndCancel(t *testing.T) {
	f := newHubFixture(t)
	p, conn, done := f.connect(t, "lin", func(p *entities.Player) {
		p.AddItem(catalog.RoughSword, 1)
	})

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionMarketList, "args": map[string]interface{}{"value": catalog.RoughSword}})
	prompt := conn.waitFor(t, dto.EventPrompt, nil)

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionMeditate})
	busy := conn.waitFor(t, dto.EventBusy, nil)
	if busy["action"] != game.ActionMeditate {
		t.Fatalf("busy = %v", busy)
	}

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgPromptClose, "promptId": prompt["promptId"]})
	conn.waitFor(t, dto.EventMessage, textContains("Cancelled."))
	res := conn.waitFor(t, dto.EventActionResult, nil)
	if res["ok"] != true {
		t.Fatalf("result = %v", res)
	}

	conn.Close()
	waitClosed(t, done)
	saved, err := f.accounts.Players().Get(context.Background(), p.PlayerID)
	if err != nil || saved.Count(catalog.RoughSword) != 1 {
		t.Fatalf("saved = %v, %v", saved, err)
	}
}

func TestPromptReplyCompletesListing(t *testing.T) {
	f := newHubFixture(t)
	_, conn, done := f.connect(t, "lin", func(p *entities.Player) {
		p.AddItem(catalog.RoughSword, 3)
	})

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionMarketList, "args": map[string]interface{}{"value": catalog.RoughSword}})
	for _, reply := range []string{"2", "9", "yes"} {
		prompt := conn.waitFor(t, dto.EventPrompt, nil)
		conn.sendJSON(t, map[string]interface{}{"type": dto.MsgPromptReply, "promptId": prompt["promptId"], "value": reply})
	}
	conn.waitFor(t, dto.EventMessage, textContains("Listed 2x Rough Sword for 9"))

	listings, err := f.market.Listings(context.Background())
	if err != nil || len(listings) != 1 || listings[0].Quantity != 2 {
		t.Fatalf("listings = %v, %v", listings, err)
	}
	conn.Close()
	waitClosed(t, done)
}

func TestSecondConnectionRejected(t *testing.T) {
	f := newHubFixture(t)
	p, conn, done := f.connect(t, "lin", nil)

	second := newFakeConn()
	f.hub.Serve(p.PlayerID, second)
	ev := second.waitFor(t, dto.EventError, nil)
	if msg, _ := ev["message"].(string); !strings.Contains(msg, "already connected") {
		t.Fatalf("error = %v", ev)
	}
	if f.hub.Online() != 1 {
		t.Fatalf("online = %d", f.hub.Online())
	}
	conn.Close()
	waitClosed(t, done)
}

func TestChatIsBroadcast(t *testing.T) {
	f := newHubFixture(t)
	_, a, doneA := f.connect(t, "lin", nil)
	_, b, doneB := f.connect(t, "mei", nil)

	a.sendJSON(t, map[string]interface{}{"type": dto.MsgChat, "text": "  greetings, fellow daoist "})
	for _, conn := range []*fakeConn{a, b} {
		ev := conn.waitFor(t, dto.EventChat, nil)
		msg, _ := ev["message"].(map[string]interface{})
		if msg["text"] != "greetings, fellow daoist" || msg["senderName"] != "lin" {
			t.Fatalf("chat = %v", ev)
		}
	}

	a.sendJSON(t, map[string]interface{}{"type": dto.MsgChat, "text": "   "})
	a.waitFor(t, dto.EventError, nil)

	a.Close()
	b.Close()
	waitClosed(t, doneA)
	waitClosed(t, doneB)
}

func TestProceedsArriveWhileOnline(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()
	seller, conn, done := f.connect(t, "lin", func(p *entities.Player) {
		p.AddItem(catalog.RoughSword, 1)
	})

	conn.sendJSON(t, map[string]interface{}{"type": dto.MsgAction, "action": game.ActionMarketList, "args": map[string]interface{}{"value": catalog.RoughSword, "quantity": 1, "price": 6}})
	conn.waitFor(t, dto.EventMessage, textContains("Listed 1x Rough Sword"))
	listings, err := f.market.Listings(ctx)
	if err != nil || len(listings) != 1 {
		t.Fatalf("listings = %v, %v", listings, err)
	}

	buyer, err := f.accounts.Create(ctx, "bo", "pw", "Bo")
	if err != nil {
		t.Fatalf("create buyer: %v", err)
	}
	buyer.AddItem(catalog.SpiritStones, 10)
	if _, err := f.accounts.Players().Save(ctx, buyer); err != nil {
		t.Fatalf("save buyer: %v", err)
	}
	if _, err := f.market.Buy(ctx, buyer, listings[0].ListingID, 1); err != nil {
		t.Fatalf("buy: %v", err)
	}

	conn.waitFor(t, dto.EventMessage, textContains("received 6 Spirit Stones"))
	conn.Close()
	waitClosed(t, done)

	saved, err := f.accounts.Players().Get(ctx, seller.PlayerID)
	if err != nil || saved.Count(catalog.SpiritStones) != 6 {
		t.Fatalf("saved = %v, %v", saved, err)
	}
}
