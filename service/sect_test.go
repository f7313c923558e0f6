package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"go-cultivation/entities"
)

func TestSectLifecycle(t *testing.T) {
	reg := NewSectRegistry(zap.NewNop())
	founder := entities.NewPlayer("f", "f", "pw", "Founder")
	founder.CultivationLevel = 10
	member := entities.NewPlayer("m", "m", "pw", "Member")

	sect, err := reg.Create(founder, "Azure Cloud", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if founder.SectID != sect.SectID || sect.Description != entities.DefaultSectDescription {
		t.Fatalf("founder sect = %q, sect = %+v", founder.SectID, sect)
	}
	if _, err := reg.Join(member, sect.SectID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	view, ok := reg.View(sect.SectID)
	if !ok || len(view.Members) != 2 {
		t.Fatalf("view = %+v", view)
	}

	if _, disbanded, err := reg.Leave(founder); err != nil || disbanded {
		t.Fatalf("founder leave: disbanded=%v err=%v", disbanded, err)
	}
	if _, disbanded, err := reg.Leave(member); err != nil || !disbanded {
		t.Fatalf("last leave: disbanded=%v err=%v", disbanded, err)
	}
	if len(reg.List()) != 0 {
		t.Fatalf("sect not disbanded: %+v", reg.List())
	}
	if _, _, err := reg.Leave(member); !errors.Is(err, ErrNotInSect) {
		t.Fatalf("leave without sect err = %v", err)
	}
}

func TestSectCreateRules(t *testing.T) {
	reg := NewSectRegistry(zap.NewNop())
	low := entities.NewPlayer("low", "low", "pw", "Low")
	low.CultivationLevel = 9

	var gate LevelGateError
	if _, err := reg.Create(low, "Sect", ""); !errors.As(err, &gate) || gate.RequiredLevel != MinSectFounderLevel {
		t.Fatalf("low level err = %v", err)
	}

	a := entities.NewPlayer("a", "a", "pw", "A")
	a.CultivationLevel = 12
	b := entities.NewPlayer("b", "b", "pw", "B")
	b.CultivationLevel = 12
	if _, err := reg.Create(a, "Sect", "desc"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Create(b, "Sect", "desc"); !errors.Is(err, ErrSectNameTaken) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if _, err := reg.Create(a, "Other", "desc"); !errors.Is(err, ErrAlreadyInSect) {
		t.Fatalf("second sect err = %v", err)
	}
	if _, err := reg.Join(b, "nope"); !errors.Is(err, ErrSectNotFound) {
		t.Fatalf("join missing err = %v", err)
	}
	if _, err := reg.Create(b, "  ", "desc"); !errors.Is(err, ErrInvalidSectName) {
		t.Fatalf("blank name err = %v", err)
	}
}

func TestStaleSectIDCountsAsNoSect(t *testing.T) {
	reg := NewSectRegistry(zap.NewNop())
	p := entities.NewPlayer("p", "p", "pw", "P")
	p.CultivationLevel = 10
	p.SectID = "gone"

	if reg.NameOf(p) != "None" {
		t.Fatalf("name = %q", reg.NameOf(p))
	}
	if _, err := reg.Create(p, "Fresh", ""); err != nil {
		t.Fatalf("Create with stale id: %v", err)
	}
}
