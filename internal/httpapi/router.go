package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/atom-sv/leadagent/internal/eventlog"
	"github.com/atom-sv/leadagent/internal/llm"
	"github.com/atom-sv/leadagent/internal/notifications"
	"github.com/atom-sv/leadagent/internal/store"
	"github.com/atom-sv/leadagent/internal/stt"
	"github.com/atom-sv/leadagent/internal/tts"
)

type RouterConfig struct {
	// AI providers
	OpenAIAPIKey     string
	OpenAIModel      string
	ElevenLabsAPIKey string

	// Voice settings
	TTSVoiceID    string
	TTSStability  float64 // ElevenLabs voice stability (0.0-1.0)
	TTSSimilarity float64 // ElevenLabs voice similarity boost (0.0-1.0)

	// Dashboard authentication
	DashboardKey string // shared access key exchanged for a JWT
	JWTSecret    string
	JWTExpiry    time.Duration

	// Notifications
	DiscordWebhookURL string
}

type Router struct {
	cfg      RouterConfig
	logger   *log.Logger
	store    *store.Store
	eventLog *eventlog.Logger
	discord  *notifications.Discord
	llm      llm.Client
	stt      stt.Client
	tts      tts.Client
	sessions *SessionRegistry
	mux      *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger *log.Logger, s *store.Store, eventLog *eventlog.Logger, sessions *SessionRegistry) http.Handler {
	r := &Router{
		cfg:      cfg,
		logger:   logger,
		store:    s,
		eventLog: eventLog,
		discord:  notifications.NewDiscord(cfg.DiscordWebhookURL, logger),
		llm: llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		}),
		stt: stt.NewWhisperClient(stt.WhisperConfig{
			APIKey: cfg.OpenAIAPIKey,
		}),
		sessions: sessions,
		mux:      http.NewServeMux(),
	}

	// TTS is optional; without a key, audio endpoints degrade.
	if cfg.ElevenLabsAPIKey != "" {
		r.tts = tts.NewElevenLabsClient(tts.ElevenLabsConfig{
			APIKey:     cfg.ElevenLabsAPIKey,
			VoiceID:    cfg.TTSVoiceID,
			Stability:  cfg.TTSStability,
			Similarity: cfg.TTSSimilarity,
		})
	}

	r.routes()
	return withSentryRecovery(withCORS(r.mux))
}

func (r *Router) routes() {
	// Health check
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)

	// Conversation sessions (public, keyed by unguessable session id)
	r.mux.HandleFunc("POST /api/sessions", r.handleCreateSession)
	r.mux.HandleFunc("POST /api/sessions/{id}/messages", r.handleSessionMessage)
	r.mux.HandleFunc("POST /api/sessions/{id}/voice", r.handleSessionVoice)
	r.mux.HandleFunc("GET /api/sessions/{id}/audio", r.handleSessionAudio)
	r.mux.HandleFunc("GET /api/sessions/{id}/summary", r.handleSessionSummary)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.handleEndSession)

	// Live chat over WebSocket
	r.mux.HandleFunc("GET /ws/chat", r.handleChatWS)

	// Dashboard auth (public)
	r.mux.HandleFunc("POST /auth/token", r.handleToken)

	// Dashboard API (protected)
	r.mux.HandleFunc("GET /api/leads", r.withAuth(r.handleListLeads))
	r.mux.HandleFunc("GET /api/leads/{id}", r.withAuth(r.handleGetLead))
	r.mux.HandleFunc("GET /api/conversations/{id}/messages", r.withAuth(r.handleConversationMessages))
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}
