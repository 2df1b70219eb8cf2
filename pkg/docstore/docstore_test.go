package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/flowcanvas/pkg/config"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want %v", err, ErrNotFound)
	}

	b := flow.New(flow.Properties{Label: "Beta"})
	a := flow.New(flow.Properties{Label: "Alpha"})
	for id, m := range map[string]*flow.Model{"beta": b, "alpha": a} {
		if err := Save(ctx, s, id, m); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}

	got, err := Load(ctx, s, "alpha")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !layout.TopologyEqual(got, a) {
		t.Errorf("Load() differs from the saved flow: %v", layout.Diff(got, a))
	}

	metas, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 2 || metas[0].ID != "alpha" || metas[1].ID != "beta" {
		t.Fatalf("List() = %+v, want alpha, beta", metas)
	}
	if metas[0].Label != "Alpha" || metas[0].Hash == "" {
		t.Errorf("List()[0] = %+v", metas[0])
	}

	// Overwrite keeps one entry.
	a2 := a.Clone()
	a2.Properties.Label = "Alpha v2"
	if err := Save(ctx, s, "alpha", a2); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	doc, err := s.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if doc.Label != "Alpha v2" || doc.Hash != Hash(doc.Data) {
		t.Errorf("Get() = label %q hash %q", doc.Label, doc.Hash)
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Errorf("Delete() of a missing document error: %v", err)
	}
	if _, err := Load(ctx, s, "alpha"); !ferrors.Is(err, ferrors.ErrCodeNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after delete error = %v, want NOT_FOUND", err)
	}
	if metas, _ := s.List(ctx); len(metas) != 1 {
		t.Errorf("List() after delete = %d entries, want 1", len(metas))
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "beta.json")); err != nil {
		t.Errorf("beta.json not written: %v", err)
	}
}

func TestFileStoreIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"notes.txt":    "hello",
		"broken.json":  "{",
		".hidden.json": "{}",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	metas, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("List() = %+v, want none", metas)
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := s.Get(ctx, id); !ferrors.Is(err, ferrors.ErrCodeInvalidID) {
			t.Errorf("Get(%q) error = %v, want INVALID_ID", id, err)
		}
		if err := s.Delete(ctx, id); !ferrors.Is(err, ferrors.ErrCodeInvalidID) {
			t.Errorf("Delete(%q) error = %v, want INVALID_ID", id, err)
		}
		if err := Save(ctx, s, id, flow.New(flow.Properties{})); !ferrors.Is(err, ferrors.ErrCodeInvalidID) {
			t.Errorf("Save(%q) error = %v, want INVALID_ID", id, err)
		}
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("FLOWCANVAS_TEST_REDIS")
	if addr == "" {
		t.Skip("FLOWCANVAS_TEST_REDIS not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "flowcanvas:test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer s.Close()
	t.Cleanup(func() {
		for _, id := range []string{"alpha", "beta"} {
			_ = s.Delete(ctx, id)
		}
	})
	exerciseStore(t, s)
}

func TestRedisKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	s := NewRedisStoreFromClient(client, "")

	tests := []struct {
		name string
		id   string
	}{
		{"plain", "alpha"},
		{"index", "index"},
		{"doc prefix", "doc:index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.key(tt.id); got == s.indexKey() {
				t.Errorf("key(%q) = %q, collides with the index", tt.id, got)
			}
			if got, want := s.key(tt.id), "flowcanvas:flow:doc:"+tt.id; got != want {
				t.Errorf("key(%q) = %q, want %q", tt.id, got, want)
			}
		})
	}
}

func TestRedisStoreIndexID(t *testing.T) {
	addr := os.Getenv("FLOWCANVAS_TEST_REDIS")
	if addr == "" {
		t.Skip("FLOWCANVAS_TEST_REDIS not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "flowcanvas:test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer s.Close()
	t.Cleanup(func() {
		for _, id := range []string{"alpha", "index"} {
			_ = s.Delete(ctx, id)
		}
	})

	for _, id := range []string{"alpha", "index"} {
		if err := Save(ctx, s, id, flow.New(flow.Properties{Label: id})); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}
	metas, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 2 || metas[0].ID != "alpha" || metas[1].ID != "index" {
		t.Errorf("List() = %+v, want alpha, index", metas)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FLOWCANVAS_TEST_MONGO")
	if uri == "" {
		t.Skip("FLOWCANVAS_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "flowcanvas_test", Collection: "flows"})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer s.Close()
	t.Cleanup(func() { _ = s.coll.Drop(ctx) })
	exerciseStore(t, s)
}

type countingHooks struct {
	observability.NoopStorageHooks
	loads, misses, saves, deletes int
	backend                       string
}

func (h *countingHooks) OnLoad(_ context.Context, backend string, found bool) {
	h.backend = backend
	if found {
		h.loads++
	} else {
		h.misses++
	}
}
func (h *countingHooks) OnSave(context.Context, string, int) { h.saves++ }
func (h *countingHooks) OnDelete(context.Context, string)    { h.deletes++ }

func TestOpen(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetStorageHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s, err := Open(ctx, config.StorageConfig{Backend: config.BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	if err := Save(ctx, s, "flow", flow.New(flow.Properties{})); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := Load(ctx, s, "flow"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	_, _ = Load(ctx, s, "other")
	if err := s.Delete(ctx, "flow"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if hooks.saves != 1 || hooks.loads != 1 || hooks.misses != 1 || hooks.deletes != 1 {
		t.Errorf("hooks = %+v, want one of each", hooks)
	}
	if hooks.backend != config.BackendFile {
		t.Errorf("backend = %q, want %q", hooks.backend, config.BackendFile)
	}

	if _, err := Open(ctx, config.StorageConfig{Backend: "s3"}); !ferrors.Is(err, ferrors.ErrCodeUnsupported) {
		t.Errorf("Open(s3) error = %v, want UNSUPPORTED", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}
