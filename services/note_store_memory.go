package services

import (
	"context"
	"strings"
	"sync"

	"github/itish2003/notechat/models"

	"github.com/google/uuid"
)

// MemoryNoteStore keeps notes in process memory. Nothing survives a restart.
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes []models.Note
}

func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{}
}

func (s *MemoryNoteStore) FindByKeyword(_ context.Context, userID, keyword string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Note
	for _, n := range s.notes {
		if n.UserID == userID && matchesKeyword(n, keyword) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryNoteStore) AddNote(_ context.Context, note models.Note) (models.Note, error) {
	if err := requireUser(note.UserID); err != nil {
		return models.Note{}, err
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	s.mu.Lock()
	s.notes = append(s.notes, note)
	s.mu.Unlock()
	return note, nil
}

func (s *MemoryNoteStore) ListNotes(_ context.Context, userID string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryNoteStore) DeleteBySource(_ context.Context, userID, source string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.UserID == userID && n.Source == source {
			continue
		}
		kept = append(kept, n)
	}
	s.notes = kept
	return nil
}
