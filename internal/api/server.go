package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reportengine/pkg/builder"
)

// Status is the JSON body /status serves.
type Status struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Done      bool      `json:"done"`
	Targets   int       `json:"targets"`
	Elapsed   string    `json:"elapsed"`
	Error     string    `json:"error,omitempty"`
}

// node is one entry of /graph's JSON array.
type node struct {
	Name   string   `json:"name"`
	Inputs []string `json:"inputs"`
}

// Server is the state a "serve" run reports through. It never drives the
// engine itself - internal/cli's serve command owns the Engine.Run
// goroutine and reports into this through SetGraph/SetDone, the way a
// long-running job elsewhere would report into a status struct rather than
// have its caller reach back in.
type Server struct {
	runID     string
	startedAt time.Time

	mu    sync.RWMutex
	graph *builder.Graph
	done  bool
	err   error
}

// New creates a Server for a run that is about to start.
func New(runID string) *Server {
	return &Server{runID: runID, startedAt: time.Now()}
}

// SetGraph records the graph once it has been built, making /graph
// available even before execution finishes.
func (s *Server) SetGraph(g *builder.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
}

// SetDone marks the run finished, successfully or not.
func (s *Server) SetDone(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.err = err
}

// Handler builds the chi router serving /status and /graph.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Get("/graph", s.handleGraph)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		RunID:     s.runID,
		StartedAt: s.startedAt,
		Done:      s.done,
		Elapsed:   time.Since(s.startedAt).Round(time.Millisecond).String(),
	}
	if s.graph != nil {
		status.Targets = s.graph.Len()
	}
	if s.err != nil {
		status.Error = s.err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "graph not built yet", http.StatusServiceUnavailable)
		return
	}

	var nodes []node
	for cs := range g.TopologicalIter() {
		inputs, err := g.Inputs(cs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		names := make([]string, len(inputs))
		for i, in := range inputs {
			names[i] = in.ResultName
		}
		nodes = append(nodes, node{Name: cs.ResultName, Inputs: names})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(nodes)
}
