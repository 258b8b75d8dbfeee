package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parley-engine/parley/pkg/actor"
	"github.com/parley-engine/parley/pkg/chat"
	"github.com/parley-engine/parley/pkg/scenario"
)

// Session is the complete mutable state of one negotiation: both parties,
// their proposal slots, and the conversation so far. It serializes to JSON
// for the session store.
type Session struct {
	ID           uuid.UUID               `json:"id"`
	ScenarioName string                  `json:"scenario_name"`
	ScenarioFile string                  `json:"scenario_file,omitempty"`
	Location     scenario.LocationRecord `json:"location"`
	Player       *actor.Player           `json:"player"`
	NPC          *actor.Character        `json:"npc"`
	History      chat.History            `json:"history,omitempty"`
	Ended        bool                    `json:"ended,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// New starts a fresh session from a scenario template.
func New(s *scenario.Scenario) (*Session, error) {
	player, err := s.NewPlayer()
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	npc, err := s.NewNPC()
	if err != nil {
		return nil, fmt.Errorf("failed to create npc: %w", err)
	}

	now := time.Now().UTC()
	return &Session{
		ID:           uuid.New(),
		ScenarioName: s.Name,
		ScenarioFile: s.FileName,
		Location:     s.Location,
		Player:       player,
		NPC:          npc,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Record appends one exchange line to the history and bumps UpdatedAt.
func (s *Session) Record(role, content string) {
	s.History.Add(role, content)
	s.UpdatedAt = time.Now().UTC()
}

// Validate checks a session loaded from the store.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("session id cannot be nil")
	}
	if s.Player == nil || s.NPC == nil {
		return fmt.Errorf("session %s is missing a participant", s.ID)
	}
	return s.NPC.Validate()
}
