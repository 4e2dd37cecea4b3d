package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"support-assistant/internal/analytics"
	"support-assistant/internal/assistant"
	"support-assistant/internal/logging"
	"support-assistant/internal/ratelimit"
	"support-assistant/internal/sanitize"
	"support-assistant/internal/storage"
)

const (
	maxBodyBytes       = 1 << 20
	unexpectedErrorMsg = "An unexpected error occurred"
)

// InteractionLog persists interactions and reads them back for stats.
type InteractionLog interface {
	Record(customerMessage, aiReply string, settings storage.Settings, userEdit *string) (storage.Record, error)
	LoadInteractions() ([]storage.Record, error)
}

type Options struct {
	Addr                string
	DefaultBusinessName string
	DefaultTone         string
	DefaultIndustry     string
	EnableLogging       bool
	EnableEditTracking  bool
}

// Server exposes the reply generator, feedback capture and stats over HTTP.
type Server struct {
	assistant *assistant.Assistant
	log       InteractionLog
	limiter   *ratelimit.Limiter
	opts      Options
	logger    *zap.Logger
	server    *http.Server
	startTime time.Time
}

func New(a *assistant.Assistant, log InteractionLog, limiter *ratelimit.Limiter, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultBusinessName == "" {
		opts.DefaultBusinessName = "Our Support Team"
	}
	if opts.DefaultTone == "" {
		opts.DefaultTone = assistant.DefaultTone
	}
	if opts.DefaultIndustry == "" {
		opts.DefaultIndustry = assistant.DefaultIndustry
	}
	return &Server{
		assistant: a,
		log:       log,
		limiter:   limiter,
		opts:      opts,
		logger:    logging.OrNop(logger),
		startTime: time.Now(),
	}
}

// Handler returns the routed HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate-reply", s.handleGenerateReply)
	mux.HandleFunc("/api/feedback", s.handleFeedback)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/", s.handleRoot)
	return s.logRequests(mux)
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting support assistant server", zap.String("addr", s.opts.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type generateRequest struct {
	Message      string `json:"message"`
	BusinessName string `json:"business_name"`
	Tone         string `json:"tone"`
	Industry     string `json:"industry"`
	AddSignature *bool  `json:"add_signature"`
}

type generateMetadata struct {
	CleanedMessage string             `json:"cleaned_message"`
	SettingsUsed   assistant.Settings `json:"settings_used"`
}

type generateResponse struct {
	Success  bool             `json:"success"`
	Reply    string           `json:"reply"`
	Metadata generateMetadata `json:"metadata"`
}

type feedbackRequest struct {
	CustomerMessage string `json:"customer_message"`
	OriginalReply   string `json:"original_reply"`
	EditedReply     string `json:"edited_reply"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type statsResponse struct {
	Success bool            `json:"success"`
	Stats   analytics.Stats `json:"stats"`
}

func (s *Server) handleGenerateReply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !s.limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded, please try again later")
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}

	settings := assistant.Settings{
		Tone:         valueOr(req.Tone, s.opts.DefaultTone),
		Industry:     valueOr(req.Industry, s.opts.DefaultIndustry),
		AddSignature: req.AddSignature == nil || *req.AddSignature,
	}
	businessName := valueOr(req.BusinessName, s.opts.DefaultBusinessName)

	result, err := s.assistant.GenerateReply(r.Context(), req.Message, businessName, settings)
	if err != nil {
		if sanitize.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("reply generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, unexpectedErrorMsg)
		return
	}

	// Log failures do not fail the request.
	if s.opts.EnableLogging {
		if _, err := s.log.Record(req.Message, result.Reply, settings.Record(), nil); err != nil {
			s.logger.Error("failed to record interaction", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Reply:   result.Reply,
		Metadata: generateMetadata{
			CleanedMessage: result.CleanedMessage,
			SettingsUsed:   result.SettingsUsed,
		},
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}

	if !s.opts.EnableEditTracking {
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Edit tracking is disabled"})
		return
	}

	edited := req.EditedReply
	if _, err := s.log.Record(req.CustomerMessage, req.OriginalReply, storage.Settings{}, &edited); err != nil {
		s.logger.Error("failed to record feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, unexpectedErrorMsg)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Feedback recorded"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := s.log.LoadInteractions()
	if err != nil {
		s.logger.Error("failed to load interactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, unexpectedErrorMsg)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Success: true, Stats: analytics.ComputeStats(records)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "support-assistant",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<html>
<head><title>Support Assistant</title></head>
<body>
<h1>AI Customer Support Assistant</h1>
<p>POST <code>/api/generate-reply</code> to draft a reply, <code>/api/feedback</code> to record an edit.</p>
<p>GET <code>/api/stats</code> for accuracy statistics.</p>
</body>
</html>`)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
