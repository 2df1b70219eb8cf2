// Package docstore persists flow documents by id.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for tests and the HTTP API without persistence
//   - file: JSON files in a data directory, for the CLI
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage
//
// Documents hold the flow JSON produced by [io.Marshal] together with a
// content hash, so backends never interpret the flow itself. Use [Save] and
// [Load] to move a [flow.Model] in and out of a store.
//
// # Usage
//
//	store, err := docstore.Open(ctx, cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := docstore.Save(ctx, store, "onboarding", m); err != nil {
//	    return err
//	}
//	m, err = docstore.Load(ctx, store, "onboarding")
package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/config"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored flow.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Label     string    `json:"label" bson:"label"`
	Data      []byte    `json:"data" bson:"data"`
	Hash      string    `json:"hash" bson:"hash"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Meta describes a document without its data.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	Label     string    `json:"label" bson:"label"`
	Hash      string    `json:"hash" bson:"hash"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Meta returns d without its data.
func (d *Document) Meta() Meta {
	return Meta{ID: d.ID, Label: d.Label, Hash: d.Hash, UpdatedAt: d.UpdatedAt}
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by id.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id string) (*Document, error)

	// Put creates or replaces a document.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the metadata of every document, ordered by id.
	List(ctx context.Context) ([]Meta, error)

	// Close releases backend connections.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// NewDocument encodes m as a document with the given id.
func NewDocument(id string, m *flow.Model) (*Document, error) {
	if err := ferrors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	data, err := flowio.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode flow %s: %w", id, err)
	}
	return &Document{
		ID:        id,
		Label:     m.Properties.Label,
		Data:      data,
		Hash:      Hash(data),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Model decodes the document's flow.
func (d *Document) Model() (*flow.Model, error) {
	m, err := flowio.Unmarshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("decode flow %s: %w", d.ID, err)
	}
	return m, nil
}

// Save encodes m and stores it under id.
func Save(ctx context.Context, s Store, id string, m *flow.Model) error {
	doc, err := NewDocument(id, m)
	if err != nil {
		return err
	}
	return s.Put(ctx, doc)
}

// Load reads and decodes the document stored under id. A missing document
// is reported as a NOT_FOUND error that also matches ErrNotFound.
func Load(ctx context.Context, s Store, id string) (*flow.Model, error) {
	if err := ferrors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ferrors.Wrap(ferrors.ErrCodeNotFound, err, "flow %q", id)
	}
	if err != nil {
		return nil, err
	}
	return doc.Model()
}

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		s       Store
		err     error
		backend = cfg.Backend
	)
	switch backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile, "":
		backend = config.BackendFile
		s, err = NewFileStore(cfg.Dir)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, ferrors.New(ferrors.ErrCodeUnsupported, "storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &observed{Store: s, backend: backend}, nil
}

// observed reports storage operations to the observability hooks.
type observed struct {
	Store
	backend string
}

func (o *observed) Get(ctx context.Context, id string) (*Document, error) {
	doc, err := o.Store.Get(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		observability.Storage().OnLoad(ctx, o.backend, err == nil)
	}
	return doc, err
}

func (o *observed) Put(ctx context.Context, doc *Document) error {
	if err := o.Store.Put(ctx, doc); err != nil {
		return err
	}
	observability.Storage().OnSave(ctx, o.backend, len(doc.Data))
	return nil
}

func (o *observed) Delete(ctx context.Context, id string) error {
	if err := o.Store.Delete(ctx, id); err != nil {
		return err
	}
	observability.Storage().OnDelete(ctx, o.backend)
	return nil
}
