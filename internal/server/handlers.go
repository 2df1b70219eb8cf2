package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/docstore"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
	"github.com/matzehuels/flowcanvas/pkg/render/nodelink"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// maxBodySize caps request bodies.
const maxBodySize = 16 << 20

// FlowSummary describes a document after a request.
type FlowSummary struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Elements   int             `json:"elements"`
	Connectors int             `json:"connectors"`
	AutoLayout bool            `json:"autoLayout"`
	History    HistoryResponse `json:"history"`
}

// HistoryResponse is the body of GET /flows/{id}/history.
type HistoryResponse struct {
	Past       int    `json:"past"`
	Future     int    `json:"future"`
	CanUndo    bool   `json:"canUndo"`
	CanRedo    bool   `json:"canRedo"`
	InSession  bool   `json:"inSession"`
	SessionLen int    `json:"sessionLength"`
	LastAction string `json:"lastAction,omitempty"`
}

func validID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ferrors.ValidateDocumentID(chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	metas, err := s.docs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if metas == nil {
		metas = []docstore.Meta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) putFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := flowio.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, r, formatError(err, "invalid flow document"))
		return
	}

	// The replacement starts with a fresh history. Requests that arrive
	// meanwhile wait on d.mu until the save settles.
	d := &document{ready: make(chan struct{})}
	if err := s.attach(d, m); err != nil {
		writeError(w, r, err)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	close(d.ready)
	s.install(id, d)

	if err := docstore.Save(r.Context(), s.docs, id, m); err != nil {
		s.retire(id, d)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(id, d))
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	d, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	m := d.store.State()
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := flowio.WriteJSON(m, w); err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) deleteFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// A placeholder holds back loads of id until the delete settles; they
	// then retry against the store.
	d := &document{ready: make(chan struct{})}
	s.install(id, d)
	err := s.docs.Delete(r.Context(), id)
	s.retire(id, d)
	close(d.ready)

	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyActions(w http.ResponseWriter, r *http.Request) {
	actions, err := readActions(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dispatch(w, r, actions...)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, action.Undo{})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, action.Redo{})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	var auto bool
	switch to := r.URL.Query().Get("to"); to {
	case "auto":
		auto = true
	case "free":
	default:
		writeError(w, r, ferrors.New(ferrors.ErrCodeInvalidInput, "to must be auto or free, got %q", to))
		return
	}
	s.dispatch(w, r, action.UpdateProperties{AutoLayout: &auto})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := s.acquire(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer d.mu.Unlock()
	writeJSON(w, http.StatusOK, summarize(id, d).History)
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	d, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	m := d.store.State()
	d.mu.Unlock()

	detailed := r.URL.Query().Get("detailed") == "true"
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	io.WriteString(w, nodelink.ToDOT(m, nodelink.Options{Detailed: detailed}))
}

// dispatch applies actions in order, stopping at the first failure, and
// saves the document if its state changed. Actions applied before a
// failure stay applied.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, actions ...action.Action) {
	id := chi.URLParam(r, "id")
	d, err := s.acquire(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer d.mu.Unlock()

	before := d.store.State()
	var failed error
	for i, a := range actions {
		if err := d.store.Dispatch(a); err != nil {
			failed = fmt.Errorf("action %d (%s): %w", i+1, a.Type(), err)
			break
		}
	}
	if err := s.persist(r.Context(), id, before, d.store); err != nil {
		writeError(w, r, err)
		return
	}
	if failed != nil {
		writeError(w, r, failed)
		return
	}
	writeJSON(w, http.StatusOK, summarize(id, d))
}

func (s *Server) persist(ctx context.Context, id string, before *flow.Model, st store.Store) error {
	m := st.State()
	if m == before {
		return nil
	}
	return docstore.Save(ctx, s.docs, id, m)
}

// readActions accepts one envelope, a JSON array of envelopes, or one
// envelope per line.
func readActions(r io.Reader) ([]action.Action, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read request body")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "no actions given")
	}

	var actions []action.Action
	if trimmed[0] == '{' && json.Valid(trimmed) {
		a, err := action.Unmarshal(trimmed)
		if err != nil {
			return nil, formatError(err, "invalid action")
		}
		actions = []action.Action{a}
	} else if actions, err = action.ReadScript(bytes.NewReader(trimmed)); err != nil {
		return nil, formatError(err, "invalid action")
	}
	if len(actions) == 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "no actions given")
	}
	return actions, nil
}

// formatError reports decode failures without a more specific code as
// INVALID_FORMAT.
func formatError(err error, msg string) error {
	if c := ferrors.GetCode(ferrors.Classify(err)); c != ferrors.ErrCodeInternal {
		return err
	}
	return ferrors.Wrap(ferrors.ErrCodeInvalidFormat, err, "%s", msg)
}

func summarize(id string, d *document) FlowSummary {
	m := d.store.State()
	stats := m.Stats()
	h := d.graph.History()
	return FlowSummary{
		ID:         id,
		Label:      m.Properties.Label,
		Elements:   stats.Elements,
		Connectors: stats.Connectors,
		AutoLayout: m.Properties.IsAutoLayoutCanvas,
		History: HistoryResponse{
			Past:       h.Past,
			Future:     h.Future,
			CanUndo:    d.store.IsUndoAvailable(),
			CanRedo:    d.store.IsRedoAvailable(),
			InSession:  h.InSession,
			SessionLen: h.SessionLen,
			LastAction: string(h.LastAction),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
