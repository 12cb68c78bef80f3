package services

import (
	"context"
	"errors"
	"strings"

	"github/itish2003/notechat/models"
)

// ErrMissingUserID is returned by note stores when an operation is not
// scoped to a user.
var ErrMissingUserID = errors.New("user id is required")

// userInputSource tags notes created through the API rather than imported
// from a file.
const userInputSource = "user_input"

// NoteRetriever finds the user's notes whose title or content contains the
// keyword.
type NoteRetriever interface {
	FindByKeyword(ctx context.Context, userID, keyword string) ([]models.Note, error)
}

// NoteStore is a NoteRetriever that can also be written to.
type NoteStore interface {
	NoteRetriever
	AddNote(ctx context.Context, note models.Note) (models.Note, error)
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	DeleteBySource(ctx context.Context, userID, source string) error
}

// matchesKeyword is the matching rule every store applies: a case-insensitive
// substring match on title or content.
func matchesKeyword(n models.Note, keyword string) bool {
	kw := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(n.Title), kw) ||
		strings.Contains(strings.ToLower(n.Content), kw)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUserID
	}
	return nil
}
