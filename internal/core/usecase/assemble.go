package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	defaultAuthor = "Oktay Özdemir"
	defaultTitle  = "Başlıksız"

	answerFooter = "\n\n---\n\n📚 Bütün bilgiler web sitemizden alınmıştır. Bu konuda danışmanlık için şirketimize başvurabilirsiniz."

	// specialFooter closes intent-driven answers that never reached the
	// source-attribution path.
	specialFooter = "\n\n---\n\n📚 **Bütün bilgiler Oktay Özdemir Danışmanlık web sitemizden alınmıştır.** Daha detaylı bilgi almak için [Oktay Özdemir Danışmanlık](https://oktayozdemir.com.tr) web sitemizi ziyaret edebilirsiniz."

	noSourceAnswer  = "Bu konuda kısa ve güvenilir bir kaynağım yok. İsterseniz danışmanımıza bağlayabilirim."
	generationError = "Üzgünüm, cevap üretirken bir hata oluştu:"

	sourcePreviewLimit = 150

	// Long contexts get a tighter completion budget so answers do not get cut
	// mid-sentence by the provider.
	longContextChars = 2000

	temperatureDetail = 0.2
	temperatureNormal = 0.3
)

// answerPromptTemplate instructs the model in Turkish. Placeholders: context,
// question.
const answerPromptTemplate = `Sen Oktay Özdemir'in blog yazılarından eğitilmiş bir hukuk ve göç uzmanı asistansın.

Aşağıdaki BAĞLAM'a dayanarak soruyu Türkçe ve orta uzunlukta (yaklaşık 8–12 cümle) net bir dille yanıtla.

YAZIM VE BİÇEM KURALLARI:
- Yazım ve noktalama kurallarına tam uy; gereksiz tekrar ve dolgu cümlesi kullanma.
- Rakamlar, mevzuat kodları (ör. 18a/18b/81a) ve € tutarlarını aynen koru.
- Gerektiğinde 5-7 maddelik kısa bir bölüm ekle (ör. "Şartlar:"), diğer yerlerde madde kullanma.
- Bağlama dayanmayan bilgi ekleme; emin değilsen "Bu konuda elimdeki kaynaklarda yeterli bilgi bulunmuyor" de.

ÖNEMLİ: Her cümleyi tamamla. Yarıda kalan cümleler yazma. Her paragrafı ve maddeyi noktalama işareti ile bitir.

BAĞLAM:
%s

SORU: %s

KURALLAR:
- Sadece bağlamdaki bilgileri kullan; link veya kaynak listesi verme.
- Cümleleri kısa ve açık yaz; tutarlı terimler kullan.
- Yanıtı doğal bir girişle başlat; gerekiyorsa maddelerden sonra kısa bir kapanış cümlesi ekle.
- Her cümleyi tamamla, yarıda bırakma.
- Almanca terimleri ilk geçtiği yerde parantez içinde Türkçesi ile birlikte yaz. Örnek: "Aufenthaltstitel (ikamet izni)", "Niederlassungserlaubnis (yerleşim izni)", "Anmeldung (adres kaydı)". Sonraki tekrarlarında kısa hâli yeterlidir.

CEVAP:`

// AssembledAnswer is the generation result handed back to the chat
// orchestrator.
type AssembledAnswer struct {
	Answer          string
	Sources         []domain.Source
	SourceLinks     []domain.SourceLink
	ActionButtons   []domain.ActionButton
	ChunksUsed      int
	SpecialResponse bool
	SpecialType     domain.SpecialType
	Generated       bool
}

// AnswerAssembler turns reranked chunks into a grounded Turkish answer with
// source attribution and the no-source handoff policy. A consultant intent
// bypasses generation entirely; other special intents keep their action
// buttons but still answer from the retrieved context.
type AnswerAssembler struct {
	llm     ports.CompletionClient
	handoff domain.ActionButton
}

func NewAnswerAssembler(llm ports.CompletionClient, handoff domain.ActionButton) *AnswerAssembler {
	return &AnswerAssembler{llm: llm, handoff: handoff}
}

// Assemble generates the answer for the question over the reranked chunks.
// Generation failures degrade to a fixed apology; they never propagate.
func (a *AnswerAssembler) Assemble(ctx context.Context, question string, chunks []domain.Chunk, detailMode bool, intent domain.IntentResult) AssembledAnswer {
	if intent.Kind == domain.IntentConsultant {
		return AssembledAnswer{
			Answer:          intent.Answer + specialFooter,
			ActionButtons:   intent.ActionButtons,
			SpecialResponse: true,
			SpecialType:     intent.SpecialType(),
		}
	}

	contextText := buildContext(chunks)
	prompt := fmt.Sprintf(answerPromptTemplate, contextText, question)

	temperature := temperatureNormal
	if detailMode {
		temperature = temperatureDetail
	}
	maxTokens := tokenBudget(len(contextText), detailMode)

	answer, err := a.llm.Complete(ctx, prompt, temperature, maxTokens)
	if err != nil {
		slog.Error("answer_generation_failed", "error", err)
		return AssembledAnswer{Answer: generationError + " " + err.Error()}
	}

	sources, links := buildSources(chunks)
	if len(intent.Sources) > 0 {
		sources = append(append([]domain.Source{}, intent.Sources...), sources...)
	}

	out := AssembledAnswer{
		Answer:          answer + answerFooter,
		Sources:         sources,
		SourceLinks:     links,
		ActionButtons:   intent.ActionButtons,
		ChunksUsed:      len(chunks),
		SpecialResponse: intent.Special(),
		SpecialType:     intent.SpecialType(),
		Generated:       true,
	}

	// Hard policy: no retrievable sources always hands the user off, no
	// matter how confident the generation sounded.
	if len(links) == 0 && !intent.Special() {
		out.Answer = noSourceAnswer + answerFooter
		out.ActionButtons = []domain.ActionButton{a.handoff}
		out.SpecialResponse = true
		out.SpecialType = domain.SpecialNoInfo
	}
	return out
}

func buildContext(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}

func tokenBudget(contextLength int, detailMode bool) int {
	if contextLength > longContextChars {
		if detailMode {
			return 1000
		}
		return 800
	}
	if detailMode {
		return 1400
	}
	return 1000
}

// buildSources maps chunk metadata to wire sources and a deduplicated link
// list. Links are keyed by URL, falling back to title when the URL is empty.
func buildSources(chunks []domain.Chunk) ([]domain.Source, []domain.SourceLink) {
	sources := make([]domain.Source, 0, len(chunks))
	links := make([]domain.SourceLink, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))

	for _, c := range chunks {
		title := c.Metadata.Title
		if title == "" {
			title = defaultTitle
		}
		author := c.Metadata.Author
		if author == "" {
			author = defaultAuthor
		}
		sources = append(sources, domain.Source{
			Title:          title,
			URL:            c.Metadata.URL,
			Author:         author,
			Date:           c.Metadata.Date,
			ContentPreview: previewText(c.Text),
		})

		key := c.Metadata.URL
		if key == "" {
			key = title
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		links = append(links, domain.SourceLink{Title: title, URL: c.Metadata.URL})
	}
	return sources, links
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= sourcePreviewLimit {
		return text
	}
	return string(runes[:sourcePreviewLimit]) + "..."
}
