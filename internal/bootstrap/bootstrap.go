package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/config"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
	"github.com/oktayozdemir/blog-chatbot/internal/core/usecase"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/chunking"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/crossencoder/jina"
	ollamaembed "github.com/oktayozdemir/blog-chatbot/internal/infrastructure/embedding/ollama"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/lexical/bleveindex"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/llm/groq"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/queue/nats"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/repository/postgres"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/resilience"
	sessionmemory "github.com/oktayozdemir/blog-chatbot/internal/infrastructure/session/memory"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/storage/localfs"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/textnorm"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.ArticleRepository
	Vector    ports.VectorStore
	LLM       ports.CompletionClient
	ChatUC    ports.ChatService
	IngestUC  ports.TranscriptIngestor
	ProcessUC ports.ArticleProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewArticleRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	normalizer, err := textnorm.New(cfg.TextRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load text rules: %w", err)
	}

	archive, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init transcript archive: %w", err)
	}

	embedder := ollamaembed.New(cfg.OllamaURL, cfg.OllamaEmbedModel)
	vectorStore := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, embedder)
	lexicalIndex, err := bleveindex.New()
	if err != nil {
		return nil, fmt.Errorf("init lexical index: %w", err)
	}

	llm := groq.New(cfg.GroqAPIKey, cfg.GroqModel, groq.Options{
		BaseURL:            cfg.GroqBaseURL,
		ResilienceExecutor: resilience.NewExecutor(chatResilienceConfig()),
	})
	encoder := jina.New(cfg.RerankerAPIKey, jina.Options{
		BaseURL: cfg.RerankerBaseURL,
		Model:   cfg.RerankerModel,
	})

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	sessions := sessionmemory.New(sessionmemory.Options{
		MaxSessions: cfg.SessionMaxCount,
		TTL:         time.Duration(cfg.SessionTTLMinutes) * time.Minute,
	})

	expander := usecase.NewQueryExpander()
	intentRouter := usecase.NewIntentRouter(usecase.IntentRouterConfig{
		WhatsAppPhone: cfg.WhatsAppPhone,
		SiteURL:       cfg.SiteURL,
		FormURL:       cfg.FormURL,
		AsylumPostURL: cfg.AsylumPostURL,
	})
	retriever := usecase.NewHybridRetriever(vectorStore, lexicalIndex, cfg.RetrievalTopK)
	reranker := usecase.NewReranker(encoder)
	assembler := usecase.NewAnswerAssembler(llm, intentRouter.ConsultantHandoffButton())

	chatUC := usecase.NewChat(expander, intentRouter, retriever, reranker, assembler, sessions, llm, normalizer)
	ingestUC := usecase.NewIngestTranscriptUseCase(repo, queue, normalizer, archive)
	processUC := usecase.NewProcessArticleUseCase(repo, chunker, vectorStore)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Vector: vectorStore,
		LLM:    llm,

		ChatUC:    chatUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// chatResilienceConfig keeps the circuit breaker on the Groq chat call but
// does not retry it: a failed completion surfaces to the user as an
// apologetic answer, and replaying generation would double the request's
// latency.
func chatResilienceConfig() resilience.Config {
	cfg := resilience.DefaultConfig()
	cfg.RetryMaxAttempts = 1
	return cfg
}
