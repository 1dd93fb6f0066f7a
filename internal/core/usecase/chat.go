package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	defaultSessionID = "__default__"

	missingAPIKeyAnswer = "GROQ API anahtarı gerekli. console.groq.com adresinden ücretsiz alabilirsiniz."

	categoryMenuModel = "category_menu"

	// followUpHistoryChars caps the history excerpt injected into a detail
	// follow-up rewrite.
	followUpHistoryChars = 1200
)

// detailTriggers mark a question as a request to elaborate on the previous
// exchange.
var detailTriggers = []string{"detay", "ayrıntı", "daha fazla bilgi", "detaylandır", "uzat"}

// TextNormalizer cleans generated text before it is polished and returned.
type TextNormalizer interface {
	Normalize(text string) string
}

// Chat is the request pipeline: intent routing, query expansion, hybrid
// retrieval, reranking, answer assembly, post-processing and session memory.
// One pass per question, no internal fan-out.
type Chat struct {
	expander   *QueryExpander
	router     *IntentRouter
	retriever  *HybridRetriever
	reranker   *Reranker
	assembler  *AnswerAssembler
	sessions   ports.SessionMemory
	llm        ports.CompletionClient
	normalizer TextNormalizer

	now func() time.Time
}

var _ ports.ChatService = (*Chat)(nil)

func NewChat(
	expander *QueryExpander,
	router *IntentRouter,
	retriever *HybridRetriever,
	reranker *Reranker,
	assembler *AnswerAssembler,
	sessions ports.SessionMemory,
	llm ports.CompletionClient,
	normalizer TextNormalizer,
) *Chat {
	return &Chat{
		expander:   expander,
		router:     router,
		retriever:  retriever,
		reranker:   reranker,
		assembler:  assembler,
		sessions:   sessions,
		llm:        llm,
		normalizer: normalizer,
		now:        time.Now,
	}
}

// Ask answers one question. Every failure class degrades to a renderable
// response; Ask never errors.
func (c *Chat) Ask(ctx context.Context, question, sessionID string) domain.ChatResponse {
	start := c.now()
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	turns := c.sessions.History(sessionID)
	detailMode := isDetailIntent(question)

	// A detail ask with prior turns becomes a follow-up rewrite so retrieval
	// and generation see the conversation topic, not just "detaylandır".
	effectiveQuestion := question
	if detailMode && len(turns) > 0 {
		effectiveQuestion = buildFollowUpQuestion(question, turns)
	}

	intent := c.router.Classify(effectiveQuestion)

	if intent.Kind == domain.IntentCategoryMenu {
		return domain.ChatResponse{
			Answer:          intent.Answer,
			Sources:         []domain.Source{},
			SourceLinks:     []domain.SourceLink{},
			ResponseTime:    "0s",
			Model:           categoryMenuModel,
			Timestamp:       c.now().Format(time.RFC3339),
			ActionButtons:   intent.ActionButtons,
			SpecialResponse: true,
			SpecialType:     domain.SpecialCategoryMenu,
			Categories:      intent.Categories,
		}
	}

	if !c.llm.Configured() {
		answer := c.postProcess(missingAPIKeyAnswer)
		c.remember(sessionID, question, answer)
		return domain.ChatResponse{
			Answer:       answer,
			Sources:      []domain.Source{},
			SourceLinks:  []domain.SourceLink{},
			ResponseTime: "0s",
			Model:        c.llm.Model(),
			Timestamp:    c.now().Format(time.RFC3339),
		}
	}

	var assembled AssembledAnswer
	if intent.Kind == domain.IntentConsultant {
		assembled = c.assembler.Assemble(ctx, effectiveQuestion, nil, detailMode, intent)
	} else {
		expandedQuery := c.expander.Expand(effectiveQuestion)
		categoryHint := DetectCategory(question)
		candidates := c.retriever.Retrieve(ctx, expandedQuery, detailMode, categoryHint)
		top := c.reranker.Rerank(ctx, candidates, effectiveQuestion, expandedQuery, detailMode)
		assembled = c.assembler.Assemble(ctx, effectiveQuestion, top, detailMode, intent)
	}

	answer := c.postProcess(assembled.Answer)
	c.remember(sessionID, question, answer)

	return domain.ChatResponse{
		Answer:          answer,
		Sources:         emptyIfNil(assembled.Sources),
		SourceLinks:     emptyLinksIfNil(assembled.SourceLinks),
		ResponseTime:    fmt.Sprintf("%.2fs", c.now().Sub(start).Seconds()),
		ChunksUsed:      assembled.ChunksUsed,
		Model:           c.llm.Model(),
		Timestamp:       c.now().Format(time.RFC3339),
		ActionButtons:   assembled.ActionButtons,
		SpecialResponse: assembled.SpecialResponse,
		SpecialType:     assembled.SpecialType,
	}
}

func (c *Chat) postProcess(answer string) string {
	if c.normalizer != nil {
		answer = c.normalizer.Normalize(answer)
	}
	return PolishAnswer(answer)
}

func (c *Chat) remember(sessionID, question, answer string) {
	c.sessions.Append(sessionID,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
}

func isDetailIntent(question string) bool {
	lower := strings.ToLower(question)
	return containsAny(lower, detailTriggers...)
}

// buildFollowUpQuestion rewrites a detail request around the last exchange
// plus a bounded history excerpt, closing with the marker the intent router
// keys on.
func buildFollowUpQuestion(question string, turns []domain.Turn) string {
	var lastUser, lastAssistant string
	for i := len(turns) - 1; i >= 0; i-- {
		switch turns[i].Role {
		case domain.RoleUser:
			if lastUser == "" {
				lastUser = turns[i].Content
			}
		case domain.RoleAssistant:
			if lastAssistant == "" {
				lastAssistant = turns[i].Content
			}
		}
	}

	if len(turns) > domain.MaxSessionTurns {
		turns = turns[len(turns)-domain.MaxSessionTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		prefix := "Kullanıcı"
		if t.Role == domain.RoleAssistant {
			prefix = "Asistan"
		}
		lines = append(lines, prefix+": "+t.Content)
	}
	history := tailRunes(strings.Join(lines, " \n"), followUpHistoryChars)

	return "Bu bir takip isteğidir. Aşağıdaki önceki sorunun ayni KONUSUNU daha detaylı, derin ve düzenli olarak genişlet. Konu dışına çıkma.\n" +
		"Önceki kullanıcı sorusu: " + lastUser + "\n" +
		"Önceki asistan cevabı (özetlenecek/geliştirilecek): " + lastAssistant + "\n\n" +
		"Kısa geçmiş: " + history + "\n\n" +
		followUpMarker + " " + question
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func emptyIfNil(sources []domain.Source) []domain.Source {
	if sources == nil {
		return []domain.Source{}
	}
	return sources
}

func emptyLinksIfNil(links []domain.SourceLink) []domain.SourceLink {
	if links == nil {
		return []domain.SourceLink{}
	}
	return links
}
