package entities

import "sort"

const DefaultSectDescription = "A mysterious sect."

// Sect is a named group of players. Founder is always a member on creation.
// Members maps player ids to display names.
type Sect struct {
	SectID      string            `json:"sectId"`
	Name        string            `json:"name"`
	FounderID   string            `json:"founderId"`
	FounderName string            `json:"founderName"`
	Description string            `json:"description"`
	Members     map[string]string `json:"-"`
	SectPower   int               `json:"sectPower"`
}

func NewSect(id, name string, founder *Player, description string) *Sect {
	if description == "" {
		description = DefaultSectDescription
	}
	return &Sect{
		SectID:      id,
		Name:        name,
		FounderID:   founder.PlayerID,
		FounderName: founder.Name,
		Description: description,
		Members:     map[string]string{founder.PlayerID: founder.Name},
	}
}

func (s *Sect) HasMember(playerID string) bool {
	_, ok := s.Members[playerID]
	return ok
}

// MemberIDs returns the members in a stable order.
func (s *Sect) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for id := range s.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
