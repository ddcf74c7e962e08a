// Package daemon provides the long-running budget health service: scheduled
// recomputes, an HTTP read API, and an SSE event stream.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/report"
	"github.com/theirongolddev/cashpulse/internal/savings"
)

// Defaults applied by New.
const (
	DefaultAddr         = "127.0.0.1:8421"
	DefaultSchedule     = "@every 1m"
	DefaultEventsBuffer = 200
)

// Store is what the service reads from and writes goal changes back to.
type Store interface {
	pipeline.Source
	savings.GoalWriter
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string
	EventsBuffer int
	// Report carries weights, classifier and load options. Load.Today is
	// replaced by Now on every recompute.
	Report report.Options
	// PerGoalTimeout bounds each goal write made by the apply endpoint.
	PerGoalTimeout time.Duration
	Now            func() time.Time
	Logger         *logrus.Logger
}

// Snapshot is a compact health state for status and event payloads.
type Snapshot struct {
	At                time.Time       `json:"at"`
	TotalScore        float64         `json:"total_score"`
	RiskLevel         model.RiskLevel `json:"risk_level"`
	RiskRatio         float64         `json:"risk_ratio"`
	RemainingBalance  int64           `json:"remaining_balance"`
	SafeToSpendPerDay int64           `json:"safe_to_spend_per_day"`
	DaysUntilPayday   int             `json:"days_until_payday"`
	Shortfall         int64           `json:"shortfall"`
	Unabsorbed        int64           `json:"unabsorbed"`
	Adjustments       int             `json:"adjustments"`
}

// Delta captures the change between two recomputes.
type Delta struct {
	TotalScore       float64 `json:"total_score"`
	Shortfall        int64   `json:"shortfall"`
	RemainingBalance int64   `json:"remaining_balance"`
	RiskChanged      bool    `json:"risk_changed"`
}

// isZero reports whether nothing an event subscriber cares about moved.
func (d Delta) isZero() bool {
	return d.TotalScore == 0 && d.Shortfall == 0 && !d.RiskChanged
}

// Event is emitted whenever the score or shortfall changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	Schedule        string    `json:"schedule"`
	RunCount        int64     `json:"run_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	store Store
	log   *logrus.Logger

	// runMu serializes recomputes triggered by the schedule and by apply.
	runMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	runCount    int64
	lastError   string
	hasReport   bool
	latest      report.Report
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service backed by st.
func New(st Store, cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = DefaultEventsBuffer
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       log,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API routes.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/score", s.handleScore).Methods(http.MethodGet)
	v1.HandleFunc("/savings", s.handleSavings).Methods(http.MethodGet)
	v1.HandleFunc("/savings/apply", s.handleApply).Methods(http.MethodPost)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// Run starts HTTP endpoints and the recompute schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.Recompute(ctx) }); err != nil {
		return fmt.Errorf("daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed the first report so status is useful immediately.
	s.Recompute(ctx)
	sched.Start()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "schedule": s.cfg.Schedule}).Info("daemon started")

	select {
	case <-ctx.Done():
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Recompute rebuilds the report and publishes an event when the score or
// shortfall moved.
func (s *Service) Recompute(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := s.cfg.Now()
	opts := s.cfg.Report
	opts.Load.Today = now

	rep, err := report.Build(ctx, s.store, opts)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRunAt = now
		s.runCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("recompute failed")
		return
	}

	snap := snapshotFromReport(rep, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasReport

	s.hasReport = true
	s.latest = rep
	s.snapshot = snap
	s.lastRunAt = now
	s.runCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "health_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"score":     snap.TotalScore,
		"risk":      snap.RiskLevel,
		"shortfall": snap.Shortfall,
	}).Debug("recomputed")

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromReport(r report.Report, at time.Time) Snapshot {
	return Snapshot{
		At:                at,
		TotalScore:        r.Score.TotalScore,
		RiskLevel:         r.Score.RiskLevel,
		RiskRatio:         r.Score.Metrics.RiskRatio,
		RemainingBalance:  r.Score.Metrics.RemainingBalance,
		SafeToSpendPerDay: r.Score.Metrics.SafeToSpendPerDay,
		DaysUntilPayday:   r.Score.Metrics.DaysUntilPayday,
		Shortfall:         r.Savings.Shortfall,
		Unabsorbed:        r.Savings.Unabsorbed,
		Adjustments:       len(r.Savings.Adjustments),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TotalScore:       curr.TotalScore - prev.TotalScore,
		Shortfall:        curr.Shortfall - prev.Shortfall,
		RemainingBalance: curr.RemainingBalance - prev.RemainingBalance,
		RiskChanged:      curr.RiskLevel != prev.RiskLevel,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) latestReport() (report.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasReport
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, model.ErrInvalidInput) {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleScore(w http.ResponseWriter, _ *http.Request) {
	rep, ok := s.latestReport()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report yet"})
		return
	}
	writeJSON(w, http.StatusOK, rep.Score)
}

// handleSavings serves the latest savings status. ?strategy= re-evaluates
// the same inputs under another strategy without touching the store.
func (s *Service) handleSavings(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latestReport()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report yet"})
		return
	}

	strategy := model.Strategy(r.URL.Query().Get("strategy"))
	if strategy == "" || strategy == rep.Savings.Strategy {
		writeJSON(w, http.StatusOK, rep.Savings)
		return
	}
	if !strategy.Valid() {
		writeError(w, model.Invalid("query", "strategy", "oneof"))
		return
	}

	in := *rep.Inputs
	in.Settings.Strategy = strategy
	alt, err := report.Evaluate(&in, s.cfg.Report)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alt.Savings)
}

// ApplyRequest is the body accepted by POST /v1/savings/apply.
type ApplyRequest struct {
	Strategy   model.Strategy `json:"strategy,omitempty"`
	SkipReplan bool           `json:"skip_replan"`
}

// ApplyFailure is one goal write that failed.
type ApplyFailure struct {
	GoalID string `json:"goal_id"`
	Error  string `json:"error"`
}

// ApplyResponse reports what POST /v1/savings/apply changed.
type ApplyResponse struct {
	Status  model.SavingsStatus `json:"status"`
	Applied []string            `json:"applied"`
	Skipped []string            `json:"skipped"`
	Failed  []ApplyFailure      `json:"failed"`
}

func (s *Service) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: decoding body: %v", model.ErrInvalidInput, err))
			return
		}
	}

	opts := s.cfg.Report
	opts.Load.Today = s.cfg.Now()
	opts.Strategy = req.Strategy
	rep, err := report.Build(r.Context(), s.store, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := savings.Apply(r.Context(), s.store, rep.Savings, savings.ApplyOptions{
		PerGoalTimeout: s.cfg.PerGoalTimeout,
		SkipReplan:     req.SkipReplan,
		Logger:         s.log,
	})

	resp := ApplyResponse{
		Status:  rep.Savings,
		Applied: nonNil(res.Applied),
		Skipped: nonNil(res.Skipped),
		Failed:  make([]ApplyFailure, 0, len(res.Failed)),
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, ApplyFailure{GoalID: f.GoalID, Error: f.Err.Error()})
	}

	if len(res.Applied) > 0 {
		s.Recompute(context.WithoutCancel(r.Context()))
	}

	code := http.StatusOK
	var pwe *savings.PartialWriteError
	if errors.As(err, &pwe) {
		code = http.StatusMultiStatus
	} else if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, code, resp)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
