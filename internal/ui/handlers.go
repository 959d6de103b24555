package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/scriptdeps/internal/search"
	"github.com/leapstack-labs/scriptdeps/internal/selection"
	"github.com/leapstack-labs/scriptdeps/internal/ui/notifier"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// suggestLimit caps "did you mean" hints.
const suggestLimit = 5

// sseKeepAlive is the interval between SSE comment pings.
var sseKeepAlive = 15 * time.Second

func (s *Server) routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/scripts", s.handleScripts)
		r.Get("/scripts/{name}", s.handleScript)
		r.Get("/search", s.handleSearch)

		r.Route("/selection", func(r chi.Router) {
			r.Get("/", s.handleSelection)
			r.Delete("/", s.handleClear)
			r.Post("/{name}", s.handleAdd)
			r.Delete("/{name}", s.handleRemove)
		})

		r.Get("/events", s.handleEvents)
	})
}

// ScriptResponse is the body of GET /api/scripts/{name}.
type ScriptResponse struct {
	Script    *core.ScriptRecord `json:"script"`
	Relations core.Relations     `json:"relations"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query       string       `json:"query"`
	By          search.Field `json:"by"`
	Matches     []string     `json:"matches"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Notice      string       `json:"notice,omitempty"`
}

// SelectionResponse is the body returned by selection mutations.
type SelectionResponse struct {
	Outcome selection.Outcome `json:"outcome"`
	Message string            `json:"message"`
	Events  []core.Event      `json:"events"`
	State   selection.State   `json:"state"`
}

type errorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Report())
}

func (s *Server) handleScripts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Dataset().Snapshot())
}

// scriptName returns the canonical script name from the {name} URL parameter.
func scriptName(r *http.Request) string {
	return core.CanonicalName(chi.URLParam(r, "name"))
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	name := scriptName(r)
	ds := s.engine.Dataset()
	rec, ok := ds.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:       fmt.Sprintf("unknown script %q", name),
			Suggestions: search.Suggest(ds, name, suggestLimit),
		})
		return
	}
	writeJSON(w, http.StatusOK, ScriptResponse{
		Script:    rec,
		Relations: s.engine.Graph().Relations(name),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	field, err := search.ParseField(r.URL.Query().Get("by"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	query := r.URL.Query().Get("q")
	ds := s.engine.Dataset()

	resp := SearchResponse{
		Query:   query,
		By:      field,
		Matches: search.Find(ds, query, field),
	}
	if resp.Matches == nil {
		resp.Matches = []string{}
		resp.Notice = search.NoMatchesNotice
		if field == search.FieldName {
			resp.Suggestions = search.Suggest(ds, query, suggestLimit)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	state := s.selection.State()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	name := scriptName(r)
	s.mutate(w, name, func(sel *selection.Set) (selection.Outcome, []core.Event) {
		return sel.Add(name)
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := scriptName(r)
	s.mutate(w, name, func(sel *selection.Set) (selection.Outcome, []core.Event) {
		return sel.Remove(name)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, "", func(sel *selection.Set) (selection.Outcome, []core.Event) {
		return sel.Clear()
	})
}

// mutate runs op under the selection lock and reports the outcome.
// Unknown names are 404; no-op outcomes are still 200.
func (s *Server) mutate(w http.ResponseWriter, name string, op func(*selection.Set) (selection.Outcome, []core.Event)) {
	s.mu.Lock()
	outcome, events := op(s.selection)
	state := s.selection.State()
	s.mu.Unlock()

	if events == nil {
		events = []core.Event{}
	}
	status := http.StatusOK
	if outcome == selection.OutcomeUnknown {
		status = http.StatusNotFound
	}
	writeJSON(w, status, SelectionResponse{
		Outcome: outcome,
		Message: outcome.Message(name),
		Events:  events,
		State:   state,
	})
}

// handleEvents streams notifier messages as server-sent events.
// The first event is the current selection state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	ch, state := s.subscribe()
	defer s.notifier.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, "state", state); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := writeMessage(w, msg); err != nil {
				s.logger.Debug("sse write failed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// subscribe registers a listener and snapshots the selection under the
// selection lock. Events emitted before the snapshot are part of it; events
// after it are queued on the channel, never both.
func (s *Server) subscribe() (chan notifier.Message, selection.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier.Subscribe(), s.selection.State()
}

// writeMessage writes one notifier message. Event batches become one SSE
// event per renderer event so clients can apply them in order.
func writeMessage(w http.ResponseWriter, msg notifier.Message) error {
	if msg.Kind != notifier.KindEvents {
		return writeSSE(w, string(msg.Kind), struct{}{})
	}
	for _, e := range msg.Events {
		if err := writeSSE(w, string(e.Type), e); err != nil {
			return err
		}
	}
	return nil
}

func writeSSE(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
