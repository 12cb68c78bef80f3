package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github/itish2003/notechat/models"

	"go.uber.org/zap"
)

// ErrEmptyNote is returned when a note is ingested without content.
var ErrEmptyNote = errors.New("note content is required")

// ChatService interface defines the operations exposed to the HTTP and MCP layers
type ChatService interface {
	Handle(ctx context.Context, query, userID string) *models.ChatResult
	IngestNote(ctx context.Context, userID string, req models.IngestNoteRequest) (*models.Note, error)
	GetAllNotes(ctx context.Context, userID string) (*models.GetAllNotesResponse, error)
}

// chatServiceImpl wires the pipeline stages around one generation backend
// and one note store.
type chatServiceImpl struct {
	gen         Generator
	store       NoteStore
	classifier  *IntentClassifier
	extractor   *KeywordExtractor
	synthesizer *AnswerSynthesizer
	log         *zap.SugaredLogger
}

// NewChatService creates the query orchestrator.
func NewChatService(gen Generator, store NoteStore, log *zap.SugaredLogger, strictGrounding bool) ChatService {
	return &chatServiceImpl{
		gen:         gen,
		store:       store,
		classifier:  NewIntentClassifier(gen, log),
		extractor:   NewKeywordExtractor(gen, log),
		synthesizer: NewAnswerSynthesizer(gen, log, strictGrounding),
		log:         log,
	}
}

// Handle answers one query. It never fails: every backend or retrieval
// problem degrades into a weaker but well-formed result.
func (s *chatServiceImpl) Handle(ctx context.Context, query, userID string) *models.ChatResult {
	intent := s.classifier.Classify(ctx, query)
	s.log.Infof("SERVICE: query classified as %s", intent)

	if intent != models.IntentNotes {
		answer := callText(ctx, s.gen, s.log, "general", Message{Role: RoleUser, Content: query})
		return &models.ChatResult{Intent: models.IntentGeneral, Answer: answerAfterReasoning(answer)}
	}

	keywords := s.extractor.Extract(ctx, query)
	s.log.Infof("SERVICE: searching notes with keywords %v", keywords)

	notes := s.retrieve(ctx, userID, keywords)
	if len(notes) == 0 {
		return &models.ChatResult{Intent: models.IntentNotes, Answer: NotFoundAnswer, MatchedNotes: []models.Note{}}
	}

	s.log.Infof("SERVICE: %d notes matched", len(notes))
	return &models.ChatResult{
		Intent:       models.IntentNotes,
		Answer:       s.synthesizer.Synthesize(ctx, query, notes),
		MatchedNotes: notes,
	}
}

// retrieve unions the notes found for every keyword, keeping the order in
// which notes were first seen.
func (s *chatServiceImpl) retrieve(ctx context.Context, userID string, keywords []string) []models.Note {
	notes := make([]models.Note, 0)
	seen := make(map[string]struct{})
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		found, err := s.store.FindByKeyword(ctx, userID, kw)
		if err != nil {
			s.log.Warnf("SERVICE: note lookup for %q failed: %v", kw, err)
			continue
		}
		for _, n := range found {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			notes = append(notes, n)
		}
	}
	return notes
}

// IngestNote stores a note written directly by the user.
func (s *chatServiceImpl) IngestNote(ctx context.Context, userID string, req models.IngestNoteRequest) (*models.Note, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyNote
	}
	s.log.Infof("SERVICE: ingesting note %q for user %s", req.Title, userID)

	note, err := s.store.AddNote(ctx, models.Note{
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Source:  userInputSource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store note: %w", err)
	}
	return &note, nil
}

// GetAllNotes lists every note owned by the user.
func (s *chatServiceImpl) GetAllNotes(ctx context.Context, userID string) (*models.GetAllNotesResponse, error) {
	notes, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	s.log.Infof("SERVICE: retrieved %d notes for user %s", len(notes), userID)
	return &models.GetAllNotesResponse{Count: len(notes), Notes: notes}, nil
}

// answerAfterReasoning returns the text after the last closing think tag when
// there is any, and the trimmed reply otherwise.
func answerAfterReasoning(reply string) string {
	if after := afterClosingThink(reply); after != "" {
		return after
	}
	return strings.TrimSpace(reply)
}
