package game

import (
	"context"
	"fmt"
	"strings"

	"go-cultivation/dto"
	"go-cultivation/service"
)

func handleSectMenu(s *Session, _ context.Context, _ Args) error {
	s.ui.DisplayMessage("--- Sect Hall ---", dto.StyleImportant)
	choices := []dto.Choice{{Text: "View All Sects", Action: ActionSectList}}
	if _, ok := s.sects.Membership(s.player); ok {
		choices = append(choices,
			dto.Choice{Text: "My Sect", Action: ActionSectMine},
			dto.Choice{Text: "Leave Sect", Action: ActionSectLeave, Style: "danger"},
		)
	} else {
		choices = append(choices,
			dto.Choice{Text: "Create Sect", Action: ActionSectCreate, Style: "special"},
			dto.Choice{Text: "Join Sect", Action: ActionSectJoin},
		)
	}
	choices = append(choices, dto.Choice{Text: "Back", Action: ActionMainMenu, Style: "neutral"})
	s.ui.PopulateActions(choices, dto.TargetMain)
	return nil
}

func handleSectCreate(s *Session, ctx context.Context, _ Args) error {
	p := s.player
	if _, ok := s.sects.Membership(p); ok {
		return service.ErrAlreadyInSect
	}
	if p.CultivationLevel < service.MinSectFounderLevel {
		return service.LevelGateError{Feature: "Founding a sect", RequiredLevel: service.MinSectFounderLevel, CurrentLevel: p.CultivationLevel}
	}
	name, ok := s.ask(ctx, "Name your sect:")
	if !ok {
		s.cancelled()
		return handleSectMenu(s, ctx, Args{})
	}
	desc, _ := s.ask(ctx, "Describe your sect (optional):")
	sect, err := s.sects.Create(p, name, desc)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("The %s sect has been founded! Its ID is %s.", sect.Name, sect.SectID), dto.StyleSuccess)
	s.save(ctx)
	return handleSectMenu(s, ctx, Args{})
}

func handleSectList(s *Session, ctx context.Context, _ Args) error {
	sects := s.sects.List()
	if len(sects) == 0 {
		s.ui.DisplayMessage("No sects have been founded yet.", dto.StyleNarration)
	}
	for _, v := range sects {
		s.ui.DisplayMessage(fmt.Sprintf("%s [%s] - Founder: %s, Members: %d\n%s", v.Name, v.SectID, v.FounderName, len(v.Members), v.Description), dto.StyleSystem)
	}
	return handleSectMenu(s, ctx, Args{})
}

func handleSectJoin(s *Session, ctx context.Context, args Args) error {
	id := args.Value
	if id == "" {
		reply, ok := s.ask(ctx, "Enter the ID of the sect to join:")
		if !ok {
			s.cancelled()
			return handleSectMenu(s, ctx, Args{})
		}
		id = reply
	}
	sect, err := s.sects.Join(s.player, id)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("You have joined the %s sect!", sect.Name), dto.StyleSuccess)
	s.save(ctx)
	return handleSectMenu(s, ctx, Args{})
}

func handleSectMine(s *Session, ctx context.Context, _ Args) error {
	v, ok := s.sects.Membership(s.player)
	if !ok {
		return service.ErrNotInSect
	}
	names := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		names = append(names, m.Name)
	}
	s.ui.DisplayMessage(fmt.Sprintf("--- %s ---\n%s\nFounder: %s\nMembers: %s", v.Name, v.Description, v.FounderName, strings.Join(names, ", ")), dto.StyleSystem)
	return handleSectMenu(s, ctx, Args{})
}

func handleSectLeave(s *Session, ctx context.Context, _ Args) error {
	sect, disbanded, err := s.sects.Leave(s.player)
	if err != nil {
		return err
	}
	s.ui.DisplayMessage(fmt.Sprintf("You have left the %s sect.", sect.Name), dto.StyleNarration)
	if disbanded {
		s.ui.DisplayMessage(fmt.Sprintf("With no members remaining, the %s sect has been disbanded.", sect.Name), dto.StyleNarration)
	}
	s.save(ctx)
	return handleSectMenu(s, ctx, Args{})
}
