package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
	"github.com/oktayozdemir/blog-chatbot/internal/observability/metrics"
)

// TrafficConfig bounds the public surface: token-bucket rate limiting plus a
// concurrency gate that sheds load instead of queueing indefinitely.
type TrafficConfig struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxConcurrent  int
	AcquireTimeout time.Duration
}

type Router struct {
	chat    ports.ChatService
	ingest  ports.TranscriptIngestor
	repo    ports.ArticleRepository
	vector  ports.VectorStore
	llm     ports.CompletionClient
	metrics *metrics.HTTPServerMetrics
	traffic TrafficConfig
}

func NewRouter(
	chat ports.ChatService,
	ingest ports.TranscriptIngestor,
	repo ports.ArticleRepository,
	vector ports.VectorStore,
	llm ports.CompletionClient,
	httpMetrics *metrics.HTTPServerMetrics,
	traffic TrafficConfig,
) *Router {
	return &Router{
		chat:    chat,
		ingest:  ingest,
		repo:    repo,
		vector:  vector,
		llm:     llm,
		metrics: httpMetrics,
		traffic: traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/ask", rt.ask)
	mux.HandleFunc("/stats", rt.stats)
	mux.HandleFunc("/models", rt.models)
	mux.HandleFunc("/ingest/transcript", rt.ingestTranscript)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, rt.traffic.AcquireTimeout)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	_, countErr := rt.vector.Count(r.Context())
	vectorstoreLoaded := countErr == nil

	status := "healthy"
	message := "Chatbot hazır"
	if !vectorstoreLoaded {
		status = "degraded"
		message = "Vector store yüklenemedi"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":             status,
		"message":            message,
		"timestamp":          time.Now().Format(time.RFC3339),
		"vectorstore_loaded": vectorstoreLoaded,
		"api_keys_configured": map[string]bool{
			"groq": rt.llm.Configured(),
		},
	})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question  string `json:"question"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Soru boş olamaz"})
		return
	}

	start := time.Now()
	response := rt.chat.Ask(r.Context(), req.Question, req.SessionID)
	if rt.metrics != nil {
		rt.metrics.RecordChatAnswer(
			"api",
			string(response.SpecialType),
			response.ChunksUsed,
			time.Since(start),
		)
	}

	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) ingestTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
			return
		}
	}

	text := r.PostFormValue("text")
	clean := true
	if raw := r.PostFormValue("clean"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clean must be a boolean"})
			return
		}
		clean = parsed
	}

	article, err := rt.ingest.IngestTranscript(r.Context(), text, domain.ChunkMetadata{
		Title:      r.PostFormValue("title"),
		URL:        r.PostFormValue("url"),
		Author:     r.PostFormValue("author"),
		SourceType: r.PostFormValue("source_type"),
	}, clean)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok":          true,
		"article":     article,
		"chars_clean": article.CharCount,
	})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	chunkCount, err := rt.vector.Count(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": "Vector store yüklenmemiş"})
		return
	}

	payload := map[string]any{
		"vectorstore": map[string]any{
			"total_chunks": chunkCount,
			"status":       "loaded",
		},
		"api_status": map[string]bool{
			"groq": rt.llm.Configured(),
		},
		"uptime": time.Now().Format(time.RFC3339),
	}

	if rt.repo != nil {
		if articleStats, err := rt.repo.Stats(r.Context()); err == nil {
			payload["articles"] = articleStats
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) models(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active": rt.llm.Model(),
		"groq": map[string]string{
			"llama-3.3-70b-versatile": "Ana model (önerilen)",
			"llama-3.1-8b-instant":    "Hızlı model",
			"gemma2-9b-it":            "Google modeli",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
