package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-cultivation/dto"
	"go-cultivation/entities"
)

// MinSectFounderLevel is Foundation Establishment.
const MinSectFounderLevel = 10

// SectRegistry keeps sects in memory for the lifetime of the process.
// Membership is mirrored on the player document through SectID.
type SectRegistry struct {
	sects    map[string]*entities.Sect
	sectLock sync.RWMutex
	log      *zap.Logger
}

func NewSectRegistry(log *zap.Logger) *SectRegistry {
	return &SectRegistry{sects: make(map[string]*entities.Sect), log: log.Named("sects")}
}

// current returns the sect the player belongs to, or nil when the stored
// SectID points at a sect that no longer exists.
func (r *SectRegistry) current(p *entities.Player) *entities.Sect {
	if p.SectID == "" {
		return nil
	}
	return r.sects[p.SectID]
}

// Create founds a sect with the player as its first member.
func (r *SectRegistry) Create(founder *entities.Player, name, description string) (*entities.Sect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidSectName
	}
	if founder.CultivationLevel < MinSectFounderLevel {
		return nil, LevelGateError{Feature: "Founding a sect", RequiredLevel: MinSectFounderLevel, CurrentLevel: founder.CultivationLevel}
	}

	r.sectLock.Lock()
	defer r.sectLock.Unlock()
	if r.current(founder) != nil {
		return nil, ErrAlreadyInSect
	}
	for _, s := range r.sects {
		if s.Name == name {
			return nil, ErrSectNameTaken
		}
	}
	sect := entities.NewSect(strings.ReplaceAll(uuid.New().String(), "-", ""), name, founder, strings.TrimSpace(description))
	r.sects[sect.SectID] = sect
	founder.SectID = sect.SectID
	r.log.Info("sect founded", zap.String("sect", sect.SectID), zap.String("name", name), zap.String("founder", founder.PlayerID))
	return sect, nil
}

// Join adds the player to an existing sect.
func (r *SectRegistry) Join(p *entities.Player, sectID string) (*entities.Sect, error) {
	r.sectLock.Lock()
	defer r.sectLock.Unlock()
	if r.current(p) != nil {
		return nil, ErrAlreadyInSect
	}
	sect, ok := r.sects[sectID]
	if !ok {
		return nil, ErrSectNotFound
	}
	sect.Members[p.PlayerID] = p.Name
	p.SectID = sect.SectID
	return sect, nil
}

// Leave removes the player from their sect. The returned flag reports
// whether the sect was disbanded because nobody is left.
func (r *SectRegistry) Leave(p *entities.Player) (*entities.Sect, bool, error) {
	r.sectLock.Lock()
	defer r.sectLock.Unlock()
	sect := r.current(p)
	if sect == nil {
		p.SectID = ""
		return nil, false, ErrNotInSect
	}
	delete(sect.Members, p.PlayerID)
	p.SectID = ""
	if len(sect.Members) > 0 {
		return sect, false, nil
	}
	delete(r.sects, sect.SectID)
	r.log.Info("sect disbanded", zap.String("sect", sect.SectID), zap.String("name", sect.Name))
	return sect, true, nil
}

// NameOf returns the player's sect name, or "None".
func (r *SectRegistry) NameOf(p *entities.Player) string {
	r.sectLock.RLock()
	defer r.sectLock.RUnlock()
	if s := r.current(p); s != nil {
		return s.Name
	}
	return "None"
}

// Membership returns the player's sect, if it still exists.
func (r *SectRegistry) Membership(p *entities.Player) (dto.SectView, bool) {
	r.sectLock.RLock()
	defer r.sectLock.RUnlock()
	if s := r.current(p); s != nil {
		return sectView(s), true
	}
	return dto.SectView{}, false
}

// List returns views of every sect sorted by name.
func (r *SectRegistry) List() []dto.SectView {
	r.sectLock.RLock()
	defer r.sectLock.RUnlock()
	out := make([]dto.SectView, 0, len(r.sects))
	for _, s := range r.sects {
		out = append(out, sectView(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// View returns a snapshot of one sect.
func (r *SectRegistry) View(sectID string) (dto.SectView, bool) {
	r.sectLock.RLock()
	defer r.sectLock.RUnlock()
	s, ok := r.sects[sectID]
	if !ok {
		return dto.SectView{}, false
	}
	return sectView(s), true
}

func sectView(s *entities.Sect) dto.SectView {
	members := make([]dto.SectMember, 0, len(s.Members))
	for _, id := range s.MemberIDs() {
		members = append(members, dto.SectMember{PlayerID: id, Name: s.Members[id]})
	}
	return dto.SectView{
		SectID:      s.SectID,
		Name:        s.Name,
		FounderID:   s.FounderID,
		FounderName: s.FounderName,
		Description: s.Description,
		Members:     members,
	}
}
