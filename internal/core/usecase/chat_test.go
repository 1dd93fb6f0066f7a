package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

type fakeSessions struct {
	store map[string][]domain.Turn
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{store: make(map[string][]domain.Turn)}
}

func (f *fakeSessions) History(sessionID string) []domain.Turn {
	return f.store[sessionID]
}

func (f *fakeSessions) Append(sessionID string, turns ...domain.Turn) {
	merged := append(f.store[sessionID], turns...)
	if len(merged) > domain.MaxSessionTurns {
		merged = merged[len(merged)-domain.MaxSessionTurns:]
	}
	f.store[sessionID] = merged
}

func newTestChat(llm *fakeLLM, vs *fakeVectorStore, sessions *fakeSessions) *Chat {
	router := newTestRouter()
	return NewChat(
		NewQueryExpander(),
		router,
		NewHybridRetriever(vs, &fakeLexicalIndex{}, 10),
		NewReranker(&fakeEncoder{}),
		NewAnswerAssembler(llm, router.ConsultantHandoffButton()),
		sessions,
		llm,
		nil,
	)
}

func TestAskNormalFlow(t *testing.T) {
	llm := &fakeLLM{answer: "Anmeldung adres kaydıdır. İki hafta içinde yapılır.", configured: true}
	vs := &fakeVectorStore{
		mmrChunks: []domain.Chunk{sourcedChunk("Anmeldung 14 gün içinde yapılmalı", "Adres Kaydı", "https://a")},
		all:       []domain.Chunk{sourcedChunk("Anmeldung 14 gün içinde yapılmalı", "Adres Kaydı", "https://a")},
	}
	chat := newTestChat(llm, vs, newFakeSessions())

	got := chat.Ask(context.Background(), "Anmeldung nedir?", "s1")
	if !strings.HasPrefix(got.Answer, "Anmeldung adres kaydıdır.") {
		t.Fatalf("expected generated summary first, got %q", got.Answer)
	}
	if got.SpecialResponse || got.SpecialType != domain.SpecialNone {
		t.Fatalf("expected plain response, got %+v", got)
	}
	if got.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model %q", got.Model)
	}
	if len(got.SourceLinks) != 1 || got.ChunksUsed != 1 {
		t.Fatalf("expected retrieval metadata, got %+v", got)
	}
	if !strings.HasSuffix(got.ResponseTime, "s") {
		t.Fatalf("expected seconds-formatted response time, got %q", got.ResponseTime)
	}
}

func TestAskConsultantShortCircuit(t *testing.T) {
	llm := &fakeLLM{answer: "olmamalı", configured: true}
	vs := &fakeVectorStore{}
	chat := newTestChat(llm, vs, newFakeSessions())

	got := chat.Ask(context.Background(), "danışmana bağlanır mısınız", "s1")
	if llm.calls != 0 {
		t.Fatalf("consultant ask must not reach the model, got %d calls", llm.calls)
	}
	if got.ChunksUsed != 0 || len(got.Sources) != 0 {
		t.Fatalf("expected no retrieval artifacts, got %+v", got)
	}
	if !strings.HasPrefix(got.Answer, "Elbette,") {
		t.Fatalf("expected fixed farewell, got %q", got.Answer)
	}
	if got.SpecialType != domain.SpecialConsultant {
		t.Fatalf("expected consultant special type, got %q", got.SpecialType)
	}
	if vs.lastQuery != "" {
		t.Fatalf("retrieval must be skipped, saw query %q", vs.lastQuery)
	}
}

func TestAskCategoryMenu(t *testing.T) {
	llm := &fakeLLM{configured: true}
	chat := newTestChat(llm, &fakeVectorStore{}, newFakeSessions())

	got := chat.Ask(context.Background(), "Hangi konuda yardım alabilirsiniz?", "s1")
	if got.Model != "category_menu" || got.SpecialType != domain.SpecialCategoryMenu {
		t.Fatalf("expected menu response, got %+v", got)
	}
	if len(got.Categories) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(got.Categories))
	}
	if got.ResponseTime != "0s" || llm.calls != 0 {
		t.Fatalf("menu must be static, got time=%q calls=%d", got.ResponseTime, llm.calls)
	}
}

func TestAskMissingAPIKey(t *testing.T) {
	llm := &fakeLLM{configured: false}
	chat := newTestChat(llm, &fakeVectorStore{}, newFakeSessions())

	got := chat.Ask(context.Background(), "Mavi Kart nedir?", "s1")
	if !strings.Contains(got.Answer, "GROQ API anahtarı gerekli") {
		t.Fatalf("expected missing-key answer, got %q", got.Answer)
	}
	if llm.calls != 0 {
		t.Fatalf("unconfigured model must not be called")
	}
}

func TestAskRecordsSessionTurns(t *testing.T) {
	llm := &fakeLLM{answer: "Cevap.", configured: true}
	vs := &fakeVectorStore{
		mmrChunks: []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
		all:       []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
	}
	sessions := newFakeSessions()
	chat := newTestChat(llm, vs, sessions)

	chat.Ask(context.Background(), "Soru bir?", "oturum")
	turns := sessions.History("oturum")
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns, got %d", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[0].Content != "Soru bir?" {
		t.Fatalf("unexpected user turn %+v", turns[0])
	}
	if turns[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected assistant turn %+v", turns[1])
	}
}

func TestAskDefaultSessionID(t *testing.T) {
	llm := &fakeLLM{answer: "Cevap.", configured: true}
	vs := &fakeVectorStore{
		mmrChunks: []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
		all:       []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
	}
	sessions := newFakeSessions()
	chat := newTestChat(llm, vs, sessions)

	chat.Ask(context.Background(), "Soru?", "")
	if len(sessions.History(defaultSessionID)) != 2 {
		t.Fatalf("expected turns under default session id")
	}
}

func TestAskDetailFollowUpRewritesQuestion(t *testing.T) {
	llm := &fakeLLM{answer: "Detaylı cevap.", configured: true}
	vs := &fakeVectorStore{
		mmrChunks: []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
		all:       []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
	}
	sessions := newFakeSessions()
	sessions.Append("s1",
		domain.Turn{Role: domain.RoleUser, Content: "Mavi Kart maaş şartı nedir?"},
		domain.Turn{Role: domain.RoleAssistant, Content: "Eşik 48.300 eurodur."},
	)
	chat := newTestChat(llm, vs, sessions)

	chat.Ask(context.Background(), "detaylandırır mısın", "s1")
	if !strings.Contains(llm.lastPrompt, "Mavi Kart maaş şartı nedir?") {
		t.Fatalf("expected previous question in prompt, got %q", llm.lastPrompt)
	}
	if !strings.Contains(llm.lastPrompt, followUpMarker+" detaylandırır mısın") {
		t.Fatalf("expected follow-up marker in prompt, got %q", llm.lastPrompt)
	}
	if !strings.Contains(vs.lastQuery, "Kısa geçmiş:") {
		t.Fatalf("expected history excerpt in retrieval query, got %q", vs.lastQuery)
	}
}

func TestAskDetailWithoutHistoryStaysPlain(t *testing.T) {
	llm := &fakeLLM{answer: "Cevap.", configured: true}
	vs := &fakeVectorStore{
		mmrChunks: []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
		all:       []domain.Chunk{sourcedChunk("içerik", "T", "https://u")},
	}
	chat := newTestChat(llm, vs, newFakeSessions())

	chat.Ask(context.Background(), "detaylandırır mısın", "yeni")
	if strings.Contains(llm.lastPrompt, followUpMarker) {
		t.Fatalf("no history: question must not be rewritten, got %q", llm.lastPrompt)
	}
}

func TestAskNoSourceHandoffPolicy(t *testing.T) {
	llm := &fakeLLM{answer: "Bir şeyler uydurdum.", configured: true}
	// Vector store yields nothing anywhere.
	vs := &fakeVectorStore{}
	chat := newTestChat(llm, vs, newFakeSessions())

	got := chat.Ask(context.Background(), "Çok nadir bir konu?", "s1")
	if !strings.HasPrefix(got.Answer, noSourceAnswer) {
		t.Fatalf("expected handoff answer, got %q", got.Answer)
	}
	if len(got.ActionButtons) != 1 || got.ActionButtons[0].Type != "whatsapp" {
		t.Fatalf("expected single whatsapp button, got %+v", got.ActionButtons)
	}
	if got.SpecialType != domain.SpecialNoInfo {
		t.Fatalf("expected no_info marking, got %q", got.SpecialType)
	}
}
