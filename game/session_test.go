package game

import (
	"context"
	"errors"
	"testing"

	"go-cultivation/catalog"
	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/service"
)

func TestRootRollThenClassSelection(t *testing.T) {
	h := newHarness(t, entities.NewPlayer("p1", "lin", "pw", "Lin"), nil)
	if h.s.State() != dto.StateRootPending || !h.ui.offers(ActionRollRoot) {
		t.Fatalf("state = %s, actions = %+v", h.s.State(), h.ui.actions)
	}
	h.expectErr(t, ActionMeditate, nil, ErrRootFirst)

	h.rng.ints = []int{950}
	h.mustDo(t, ActionRollRoot, nil)
	if h.p.SpiritualRootName != "Single Spiritual Root" || h.p.SpiritualRootMultiplier != 16 {
		t.Fatalf("root = %s x%d", h.p.SpiritualRootName, h.p.SpiritualRootMultiplier)
	}
	if h.s.State() != dto.StateClassSelection {
		t.Fatalf("state after roll = %s", h.s.State())
	}
	h.expectErr(t, ActionRollRoot, nil, service.ErrRootAlreadyRolled)
	h.expectErr(t, ActionClassSelect, map[string]interface{}{"value": "gardener"}, ErrUnknownClass)

	h.mustDo(t, ActionClassSelect, map[string]interface{}{"value": catalog.ClassMartial})
	if h.p.Attack != 15 || h.p.MaxHealth != 120 || h.p.Health != 120 {
		t.Fatalf("martial bonus not applied: %+v", h.p.Character)
	}
	if h.s.State() != dto.StateMenu || !h.ui.offers(ActionExplore) {
		t.Fatalf("state = %s", h.s.State())
	}
	out := h.expectErr(t, ActionClassSelect, map[string]interface{}{"value": catalog.ClassQi}, service.ErrClassAlreadyTaken)
	if out.Kind != service.KindValidation {
		t.Fatalf("kind = %v", out.Kind)
	}
}

func TestClassItemsGranted(t *testing.T) {
	p := entities.NewPlayer("p1", "lin", "pw", "Lin")
	_ = p.AssignSpiritualRoot("Five Spiritual Roots", 1)
	h := newHarness(t, p, nil)
	h.mustDo(t, ActionClassSelect, map[string]interface{}{"value": catalog.ClassAlchemist})
	if p.Count(catalog.JadeleafGrass) != 5 || p.Count(catalog.CrimsonSpiritBerry) != 3 {
		t.Fatalf("alchemist items = %v", p.Resources)
	}
}

func TestMeditateRestoresQuarter(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.p.Health, h.p.CurrentQi = 50, 10
	h.mustDo(t, ActionMeditate, nil)
	if h.p.Health != 75 || h.p.CurrentQi != 22 {
		t.Fatalf("health %d qi %d", h.p.Health, h.p.CurrentQi)
	}
	if h.store.saves == 0 {
		t.Fatal("meditation not saved")
	}
}

func TestMenuRecoversIncapacitatedPlayer(t *testing.T) {
	p := readyPlayer(catalog.ClassFormationMaster)
	p.Health = 0
	newHarness(t, p, nil)
	if p.Health != 25 {
		t.Fatalf("health = %d, want 25", p.Health)
	}
}

func TestUnknownActionIsValidation(t *testing.T) {
	h := newHarness(t, nil, nil)
	out := h.expectErr(t, "dance", nil, ErrUnknownAction)
	if out.Kind != service.KindValidation || out.Unsaved {
		t.Fatalf("outcome = %+v", out)
	}
	if !h.ui.offers(ActionMeditate) {
		t.Fatal("player not returned to the menu")
	}
}

func TestSaveFailureIsReportedUnsaved(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.store.err = errors.New("redis: connection refused")
	out := h.do(t, ActionMeditate, nil)
	if out.Err != nil || !out.Unsaved {
		t.Fatalf("outcome = %+v", out)
	}
	if !h.ui.said("Failed to save your progress") {
		t.Fatalf("messages = %q", h.ui.messages)
	}
}

func TestInboxCreditsAnnouncedOnSave(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.store.credits = map[string]int{catalog.SpiritStones: 21}
	h.s.Sync(context.Background())
	if h.p.Count(catalog.SpiritStones) != 21 || !h.ui.said("received 21 Spirit Stones") {
		t.Fatalf("stones = %d, messages %q", h.p.Count(catalog.SpiritStones), h.ui.messages)
	}
}

func TestGainXPStopsAtPlateau(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.p.CultivationLevel = 8
	h.p.CultivationProgress = 850
	res := h.s.gainXP(2000)
	if h.p.CultivationLevel != 9 || h.p.CultivationProgress != 1000 || !res.Plateau {
		t.Fatalf("level %d progress %d res %+v", h.p.CultivationLevel, h.p.CultivationProgress, res)
	}
	if !h.ui.said("Foundation Establishment Pill") {
		t.Fatalf("plateau not announced: %q", h.ui.messages)
	}
	if res := h.s.gainXP(10); !res.Locked || h.p.CultivationProgress != 1000 {
		t.Fatalf("locked gain = %+v", res)
	}
}

func TestBreakthroughPill(t *testing.T) {
	h := newHarness(t, nil, nil)
	const pill = "foundationEstablishmentPillItem"
	h.p.AddItem(pill, 1)
	h.p.CultivationLevel = 9
	h.p.CultivationProgress = 500

	h.expectErr(t, ActionUseItem, map[string]interface{}{"value": pill}, entities.ErrNotReadyForBreakthrough)
	if h.p.Count(pill) != 1 {
		t.Fatal("pill consumed on failed breakthrough")
	}

	h.p.CultivationProgress = 1000
	h.mustDo(t, ActionUseItem, map[string]interface{}{"value": pill})
	if h.p.CultivationLevel != 10 || h.p.CultivationProgress != 0 || h.p.MaxInventorySlots != 100 {
		t.Fatalf("after breakthrough: %+v slots %d", h.p.Character, h.p.MaxInventorySlots)
	}
	if h.p.Count(pill) != 0 {
		t.Fatal("pill not consumed")
	}
}

func TestRecipeScrollTeachesOnce(t *testing.T) {
	h := newHarness(t, nil, nil)
	const scroll = "vitalityRejuvenationPillRecipe"
	h.p.AddItem(scroll, 2)
	h.mustDo(t, ActionUseItem, map[string]interface{}{"value": scroll})
	if !h.p.KnowsRecipe("vitalityRejuvenationPill") {
		t.Fatal("recipe not learned")
	}
	h.mustDo(t, ActionUseItem, map[string]interface{}{"value": scroll})
	if h.p.Count(scroll) != 0 || !h.ui.said("You already know the recipe") {
		t.Fatalf("scrolls left %d", h.p.Count(scroll))
	}
}

func TestEquipWeapon(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.p.AddItem(catalog.RoughSword, 1)
	h.mustDo(t, ActionUseItem, map[string]interface{}{"value": catalog.RoughSword})
	if h.p.EquippedWeapon != catalog.RoughSword || h.p.TotalAttack() != 15 {
		t.Fatalf("weapon %q attack %d", h.p.EquippedWeapon, h.p.TotalAttack())
	}
	if h.p.Count(catalog.RoughSword) != 1 {
		t.Fatal("equipping consumed the weapon")
	}
	h.mustDo(t, ActionUseItem, map[string]interface{}{"value": catalog.RoughSword})
	if !h.ui.said("Rough Sword is already equipped.") {
		t.Fatalf("messages %q", h.ui.messages)
	}
}

func TestClassCraftsRequireClassAndMaterials(t *testing.T) {
	h := newHarness(t, readyPlayer(catalog.ClassArtifactRefiner), nil)
	if !h.ui.offers(ActionForge) || h.ui.offers(ActionDraw) {
		t.Fatalf("menu = %+v", h.ui.actions)
	}
	h.expectErr(t, ActionDraw, nil, ErrWrongClass)
	h.p.AddItem(catalog.RoughIronOre, 2)
	h.expectErr(t, ActionForge, nil, service.ErrInsufficientItems)

	h.p.AddItem(catalog.RoughIronOre, 1)
	h.mustDo(t, ActionForge, nil)
	if h.p.Count(catalog.RoughSword) != 1 || h.p.Count(catalog.RoughIronOre) != 0 || h.p.CurrentQi != 35 {
		t.Fatalf("resources %v qi %d", h.p.Resources, h.p.CurrentQi)
	}
}

func TestSectHallCreateViaPrompts(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.mustDo(t, ActionSectMenu, nil)
	var gate service.LevelGateError
	if out := h.do(t, ActionSectCreate, nil); !errors.As(out.Err, &gate) {
		t.Fatalf("low level err = %v", out.Err)
	}

	h.p.CultivationLevel = 10
	h.ui.replies = []string{"Azure Cloud"}
	h.mustDo(t, ActionSectCreate, nil)
	v, ok := h.sects.Membership(h.p)
	if !ok || v.Name != "Azure Cloud" || v.Description != entities.DefaultSectDescription {
		t.Fatalf("sect = %+v", v)
	}
	if !h.ui.offers(ActionSectLeave) {
		t.Fatalf("actions = %+v", h.ui.actions)
	}
	h.mustDo(t, ActionSectLeave, nil)
	if len(h.sects.List()) != 0 {
		t.Fatal("sect not disbanded")
	}
}
