package lobby_test

import (
	"context"
	"time"

	"github.com/iamezell/arcbeta/internal/models"
)

// memParticipants implements lobby.ParticipantStore in memory, preserving
// insertion order like the SQL repository does.
type memParticipants struct {
	order []string
	byID  map[string]*models.Participant
	err   error // when set, every method fails with it
}

func newMemParticipants() *memParticipants {
	return &memParticipants{byID: make(map[string]*models.Participant)}
}

func (s *memParticipants) Upsert(_ context.Context, p *models.Participant) error {
	if s.err != nil {
		return s.err
	}
	cp := *p
	if prev, ok := s.byID[p.ConnectionID]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = time.Now()
		s.order = append(s.order, p.ConnectionID)
	}
	s.byID[p.ConnectionID] = &cp
	p.CreatedAt = cp.CreatedAt
	return nil
}

func (s *memParticipants) Get(_ context.Context, connectionID string) (*models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[connectionID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memParticipants) ListByRoom(_ context.Context, roomID string) ([]models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	var list []models.Participant
	for _, id := range s.order {
		if p, ok := s.byID[id]; ok && p.RoomID == roomID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (s *memParticipants) Delete(_ context.Context, connectionID string) (*models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[connectionID]
	if !ok {
		return nil, nil
	}
	delete(s.byID, connectionID)
	for i, id := range s.order {
		if id == connectionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, nil
}

// memRooms implements lobby.RoomStore in memory.
type memRooms struct {
	byID map[string]*models.Room
	err  error
}

func newMemRooms() *memRooms {
	return &memRooms{byID: make(map[string]*models.Room)}
}

func (s *memRooms) GetOrCreate(_ context.Context, roomID string) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	if room, ok := s.byID[roomID]; ok {
		cp := *room
		return &cp, nil
	}
	room := &models.Room{RoomID: roomID, CreatedAt: time.Now()}
	s.byID[roomID] = room
	cp := *room
	return &cp, nil
}

func (s *memRooms) Activate(_ context.Context, roomID string) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	room, ok := s.byID[roomID]
	if !ok {
		room = &models.Room{RoomID: roomID, CreatedAt: time.Now()}
		s.byID[roomID] = room
	}
	room.IsActive = true
	now := time.Now()
	room.ActivatedAt = &now
	cp := *room
	return &cp, nil
}

func (s *memRooms) GetStatus(_ context.Context, roomID string) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	if room, ok := s.byID[roomID]; ok {
		cp := *room
		return &cp, nil
	}
	return &models.Room{RoomID: roomID}, nil
}
