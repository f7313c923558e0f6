package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

// scriptedRand replays fixed rolls. Intn results are clamped into range;
// when a script runs out the defaults are used.
type scriptedRand struct {
	ints         []int
	floats       []float64
	floatDefault float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return r.floatDefault
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type recordingDisplay struct {
	messages []string
	combat   []string
	actions  []dto.Choice
	target   string
	stats    dto.StatsView
	fight    dto.CombatView
	inv      dto.InventoryView
	replies  []string
	prompts  []string
}

func (d *recordingDisplay) DisplayMessage(text, _ string)           { d.messages = append(d.messages, text) }
func (d *recordingDisplay) DisplayCombatAction(text, _ string)      { d.combat = append(d.combat, text) }
func (d *recordingDisplay) AppendCombatAction(text, _ string)       { d.combat = append(d.combat, text) }
func (d *recordingDisplay) UpdateStats(v dto.StatsView)             { d.stats = v }
func (d *recordingDisplay) UpdateCombat(v dto.CombatView)           { d.fight = v }
func (d *recordingDisplay) PopulateInventory(v dto.InventoryView)   { d.inv = v }
func (d *recordingDisplay) DisplayChatMessage(entities.ChatMessage) {}

func (d *recordingDisplay) PopulateActions(choices []dto.Choice, target string) {
	d.actions = choices
	d.target = target
}

func (d *recordingDisplay) Prompt(_ context.Context, text, _ string) (string, bool) {
	d.prompts = append(d.prompts, text)
	if len(d.replies) == 0 {
		return "", false
	}
	r := d.replies[0]
	d.replies = d.replies[1:]
	return r, true
}

func (d *recordingDisplay) said(sub string) bool {
	for _, m := range append(append([]string(nil), d.messages...), d.combat...) {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func (d *recordingDisplay) offers(action string) bool {
	for _, c := range d.actions {
		if c.Action == action {
			return true
		}
	}
	return false
}

type memStore struct {
	saves   int
	err     error
	credits map[string]int
}

func (m *memStore) Save(_ context.Context, p *entities.Player) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.saves++
	credits := m.credits
	m.credits = nil
	for k, n := range credits {
		p.AddItem(k, n)
	}
	return credits, nil
}

type harness struct {
	s     *Session
	ui    *recordingDisplay
	rng   *scriptedRand
	store *memStore
	p     *entities.Player
	sects *service.SectRegistry
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

// newHarness builds a session for a player who has rolled a x1 root and
// picked a class with no side effects, unless p says otherwise.
func newHarness(t *testing.T, p *entities.Player, market Marketplace) *harness {
	t.Helper()
	if p == nil {
		p = readyPlayer(catalog.ClassFormationMaster)
	}
	h := &harness{
		ui:    &recordingDisplay{},
		rng:   &scriptedRand{floatDefault: 0.99},
		store: &memStore{},
		p:     p,
		sects: service.NewSectRegistry(zap.NewNop()),
	}
	h.s = NewSession(Config{
		Catalog: testCatalog(t),
		Players: h.store,
		Market:  market,
		Sects:   h.sects,
		Display: h.ui,
		Rand:    h.rng,
		Log:     zap.NewNop(),
	}, p)
	h.s.Start(context.Background(), nil)
	return h
}

func readyPlayer(class string) *entities.Player {
	p := entities.NewPlayer("p1", "lin", "pw", "Lin")
	_ = p.AssignSpiritualRoot("Five Spiritual Roots", 1)
	_ = p.ChooseClass(class, class)
	return p
}

func (h *harness) do(t *testing.T, action string, args map[string]interface{}) Outcome {
	t.Helper()
	return h.s.Handle(context.Background(), action, args)
}

func (h *harness) mustDo(t *testing.T, action string, args map[string]interface{}) {
	t.Helper()
	if out := h.do(t, action, args); out.Err != nil {
		t.Fatalf("%s: %v (messages %q)", action, out.Err, h.ui.messages)
	}
}

func (h *harness) expectErr(t *testing.T, action string, args map[string]interface{}, want error) Outcome {
	t.Helper()
	out := h.do(t, action, args)
	if !errors.Is(out.Err, want) {
		t.Fatalf("%s err = %v, want %v", action, out.Err, want)
	}
	return out
}

func dummy(health, attack, defense int) *entities.Monster {
	return &entities.Monster{
		Character: entities.NewCharacter("Dummy", health, attack, defense, 1),
		Tier:      1,
		XPReward:  10,
	}
}
