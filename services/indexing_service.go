package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github/itish2003/notechat/models"

	"github.com/fsnotify/fsnotify"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

// NoteImportService keeps a directory of note files in sync with the note
// store of one user. Every file is split into chunks and each chunk is
// stored as a note whose Source is the file path.
type NoteImportService struct {
	store    NoteStore
	userID   string
	splitter textsplitter.TextSplitter
	log      *zap.SugaredLogger

	mu     sync.Mutex
	hashes map[string]string // path -> content hash of the imported version
}

// NewNoteImportService creates a new importer.
func NewNoteImportService(store NoteStore, userID string, chunkSize, chunkOverlap int, log *zap.SugaredLogger) *NoteImportService {
	return &NoteImportService{
		store:  store,
		userID: userID,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		log:    log,
		hashes: make(map[string]string),
	}
}

// WatchDirectory re-imports files as they change until ctx is cancelled.
func (s *NoteImportService) WatchDirectory(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dirPath, err)
	}
	s.log.Infof("WATCHER: watching directory %s", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warnf("WATCHER: %v", err)
		case <-ctx.Done():
			s.log.Infof("WATCHER: context cancelled, shutting down watcher")
			return nil
		}
	}
}

func (s *NoteImportService) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isSupportedFile(event.Name) {
		return
	}
	s.log.Debugf("WATCHER: event %s", event)

	switch {
	// Editors often save through create+rename, so Create and Write are treated alike.
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		if err := s.ImportFile(ctx, event.Name); err != nil {
			s.log.Errorf("WATCHER: failed to import %s: %v", event.Name, err)
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		s.log.Infof("WATCHER: file removed: %s", event.Name)
		if err := s.RemoveFile(ctx, event.Name); err != nil {
			s.log.Errorf("WATCHER: failed to remove notes of %s: %v", event.Name, err)
		}
	}
}

// ScanAndImportDirectory imports new and changed files under dirPath and
// removes the notes of files that no longer exist. Per-file failures are
// logged and do not stop the scan.
func (s *NoteImportService) ScanAndImportDirectory(ctx context.Context, dirPath string) error {
	s.log.Infof("INDEXER: starting directory scan for %s", dirPath)

	imported, err := s.importedSources(ctx)
	if err != nil {
		return fmt.Errorf("could not read current import state: %w", err)
	}
	s.log.Infof("INDEXER: found %d files currently imported", len(imported))

	localFiles := make(map[string]bool)
	err = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedFile(path) {
			return nil
		}
		localFiles[path] = true
		if err := s.ImportFile(ctx, path); err != nil {
			s.log.Errorf("INDEXER: failed to import %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error walking the path %s: %w", dirPath, err)
	}

	for path := range imported {
		if localFiles[path] || !withinDir(dirPath, path) {
			continue
		}
		s.log.Infof("INDEXER: file deleted: %s", path)
		if err := s.RemoveFile(ctx, path); err != nil {
			s.log.Errorf("INDEXER: failed to remove notes of %s: %v", path, err)
		}
	}
	s.log.Infof("INDEXER: directory scan finished")
	return nil
}

// ImportFile replaces the notes of one file. A file whose content hash
// matches the last imported version is skipped.
func (s *NoteImportService) ImportFile(ctx context.Context, path string) error {
	hash, err := calculateFileHash(path)
	if err != nil {
		return fmt.Errorf("could not hash file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashes[path] == hash {
		return nil
	}

	text, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}
	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return fmt.Errorf("could not split file: %w", err)
	}

	if err := s.store.DeleteBySource(ctx, s.userID, path); err != nil {
		return fmt.Errorf("failed to delete old version: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		_, err := s.store.AddNote(ctx, models.Note{
			UserID:  s.userID,
			Title:   chunkTitle(base, i, len(chunks)),
			Content: chunk,
			Source:  path,
		})
		if err != nil {
			delete(s.hashes, path)
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}
	s.hashes[path] = hash
	s.log.Infof("INDEXER: imported %s as %d notes", path, len(chunks))
	return nil
}

// RemoveFile deletes every note imported from path.
func (s *NoteImportService) RemoveFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, path)
	return s.store.DeleteBySource(ctx, s.userID, path)
}

// importedSources lists the file paths that currently have notes in the store.
func (s *NoteImportService) importedSources(ctx context.Context) (map[string]struct{}, error) {
	notes, err := s.store.ListNotes(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	sources := make(map[string]struct{})
	for _, n := range notes {
		if n.Source != "" && n.Source != userInputSource {
			sources[n.Source] = struct{}{}
		}
	}
	return sources, nil
}

func chunkTitle(base string, i, total int) string {
	if total <= 1 {
		return base
	}
	return fmt.Sprintf("%s (part %d)", base, i+1)
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
