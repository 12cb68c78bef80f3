package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github/itish2003/notechat/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChromaNoteStore keeps one Chroma document per note. Each note is embedded
// on write so the collection stays usable for similarity search; lookups by
// keyword read the user's documents and match them locally.
type ChromaNoteStore struct {
	collection chromago.Collection
	embedder   Embedder
	log        *zap.SugaredLogger
}

func NewChromaNoteStore(collection chromago.Collection, embedder Embedder, log *zap.SugaredLogger) *ChromaNoteStore {
	return &ChromaNoteStore{collection: collection, embedder: embedder, log: log}
}

// OpenChromaCollection connects to the Chroma server and returns the named
// collection, creating it on first use. An empty baseURL uses the client's
// default server address.
func OpenChromaCollection(ctx context.Context, baseURL, name string) (chromago.Client, chromago.Collection, error) {
	var opts []chromago.ClientOption
	if baseURL != "" {
		opts = append(opts, chromago.WithBaseURL(baseURL))
	}
	client, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(ctx, name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "notechat user notes"),
				chromago.NewStringAttribute("created_by", "notechat"),
			),
		),
	)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	return client, collection, nil
}

func (s *ChromaNoteStore) FindByKeyword(ctx context.Context, userID, keyword string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, nil
	}

	all, err := s.ListNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []models.Note
	for _, n := range all {
		if matchesKeyword(n, keyword) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *ChromaNoteStore) AddNote(ctx context.Context, note models.Note) (models.Note, error) {
	if err := requireUser(note.UserID); err != nil {
		return models.Note{}, err
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	vector, err := s.embedder.EmbedText(ctx, note.Title+"\n"+note.Content)
	if err != nil {
		return models.Note{}, fmt.Errorf("could not generate embedding for note: %w", err)
	}

	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("user_id", note.UserID),
		chromago.NewStringAttribute("title", note.Title),
		chromago.NewStringAttribute("source", note.Source),
	)
	err = s.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(note.ID)),
		chromago.WithTexts(note.Content),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithMetadatas(metadata),
	)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to add record to chromadb: %w", err)
	}
	return note, nil
}

func (s *ChromaNoteStore) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	results, err := s.collection.Get(ctx, chromago.WithWhereGet(chromago.EqString("user_id", userID)))
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	notes := make([]models.Note, 0, len(ids))
	for i := range ids {
		note := models.Note{ID: string(ids[i]), UserID: userID}
		if i < len(documents) && documents[i] != nil {
			note.Content = documents[i].ContentString()
		}
		if i < len(metadatas) && metadatas[i] != nil {
			meta := s.metadataMap(string(ids[i]), metadatas[i])
			note.Title, _ = meta["title"].(string)
			note.Source, _ = meta["source"].(string)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (s *ChromaNoteStore) DeleteBySource(ctx context.Context, userID, source string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	where := chromago.And(
		chromago.EqString("user_id", userID),
		chromago.EqString("source", source),
	)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete notes of %q from chromadb: %w", source, err)
	}
	return nil
}

// metadataMap converts document metadata into a plain map. DocumentMetadata
// has no accessor for all values, so it goes through its JSON form.
func (s *ChromaNoteStore) metadataMap(id string, metadata chromago.DocumentMetadata) map[string]interface{} {
	out := make(map[string]interface{})
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		s.log.Warnf("SERVICE: could not marshal metadata for document %s: %v", id, err)
		return out
	}
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		s.log.Warnf("SERVICE: could not unmarshal metadata for document %s: %v", id, err)
	}
	return out
}
