package usecase

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

// followUpMarker is injected by the chat orchestrator when a detail request is
// rewritten with conversation history; intent classification must look only at
// the user's actual new ask after it.
const followUpMarker = "Yeni talep:"

// IntentRouterConfig carries the environment-sourced values used by intent
// payloads.
type IntentRouterConfig struct {
	WhatsAppPhone string
	SiteURL       string
	FormURL       string
	AsylumPostURL string
}

func (c IntentRouterConfig) withDefaults() IntentRouterConfig {
	if c.WhatsAppPhone == "" {
		c.WhatsAppPhone = "4920393318883"
	}
	if c.SiteURL == "" {
		c.SiteURL = "https://oktayozdemir.com.tr"
	}
	if c.FormURL == "" {
		c.FormURL = c.SiteURL + "/basvuru-formu/"
	}
	if c.AsylumPostURL == "" {
		c.AsylumPostURL = c.SiteURL + "/blog/2015de-gelen-multecilerin-is-hayatinda/"
	}
	return c
}

// intentRule pairs a predicate with the result it produces. Rules are
// evaluated in order, first match wins.
type intentRule struct {
	matches func(lower, folded string) bool
	result  func() domain.IntentResult
}

// IntentRouter classifies a raw question before retrieval runs. It is a pure
// function of the input text plus its static configuration.
type IntentRouter struct {
	cfg   IntentRouterConfig
	rules []intentRule
}

func NewIntentRouter(cfg IntentRouterConfig) *IntentRouter {
	r := &IntentRouter{cfg: cfg.withDefaults()}
	r.rules = []intentRule{
		{r.matchesMenu, r.categoryMenuResult},
		// Detail-only asks suppress special routing so retrieval proceeds.
		{matchesDetailOnly, noneResult},
		{matchesAsylum, r.asylumResult},
		{matchesConsultant, r.consultantResult},
		{matchesEligibility, r.eligibilityResult},
	}
	return r
}

// Classify runs the prioritized rule list over the question.
func (r *IntentRouter) Classify(question string) domain.IntentResult {
	if idx := strings.Index(question, followUpMarker); idx >= 0 {
		question = strings.TrimSpace(question[idx+len(followUpMarker):])
	}

	lower := strings.ToLower(question)
	folded := foldTurkish(lower)

	for _, rule := range r.rules {
		if rule.matches(lower, folded) {
			return rule.result()
		}
	}
	return domain.IntentResult{Kind: domain.IntentNone}
}

func (r *IntentRouter) matchesMenu(lower, folded string) bool {
	return containsAny(lower, "kategori", "başlık", "hangi konuda", "yardım almak") ||
		containsAny(folded, "kategori", "baslik", "hangi konuda", "yardim almak")
}

func matchesDetailOnly(lower, folded string) bool {
	return containsAny(lower, "detay", "ayrıntı", "daha fazla bilgi", "detaylandır", "uzat") ||
		containsAny(folded, "ayrinti", "detaylandir")
}

func matchesAsylum(lower, folded string) bool {
	return containsAny(lower, "iltica", "sığınma", "mülteci", "sığınma talebi") ||
		containsAny(folded, "iltica", "siginma", "multeci", "siginma talebi")
}

func matchesConsultant(lower, folded string) bool {
	return containsAny(lower, "danışman", "danışmana bağlanmak", "danışmana", "whatsapp", "iletişime geç", "bağla", "bağlan") ||
		containsAny(folded, "danisman", "danismana baglanmak", "danismana", "whatsapp", "iletisime gec", "bagla", "baglan")
}

func matchesEligibility(lower, folded string) bool {
	return containsAny(lower, "başvuru", "göç", "uygun", "uygunluk", "başvuru yapmak") ||
		containsAny(folded, "basvuru", "goc", "uygun")
}

func noneResult() domain.IntentResult {
	return domain.IntentResult{Kind: domain.IntentNone}
}

func (r *IntentRouter) categoryMenuResult() domain.IntentResult {
	return domain.IntentResult{
		Kind:       domain.IntentCategoryMenu,
		Answer:     "Hangi konuda yardım almak istiyorsunuz? Lütfen aşağıdaki kategorilerden birini seçin:",
		Categories: categoryMenu,
		ActionButtons: []domain.ActionButton{
			{Text: "❌ Kategori seçmeden devam et", Type: "skip_categories"},
		},
	}
}

func (r *IntentRouter) asylumResult() domain.IntentResult {
	return domain.IntentResult{
		Kind:   domain.IntentAsylum,
		Answer: "İltica konusunda size yardımcı olabilirim. Aşağıdaki güncel haberler ve bilgiler size faydalı olabilir:",
		Sources: []domain.Source{
			{
				Title:          "Almanya'ya 2015'de gelen mültecilerin %64'ü iş hayatına katıldı",
				URL:            r.cfg.AsylumPostURL,
				Author:         defaultAuthor,
				ContentPreview: "Son araştırma sonuçları ve entegrasyon başarısı hakkında detaylı bilgi",
			},
		},
		ActionButtons: []domain.ActionButton{
			{Text: "📋 İltica Başvuru Formu", URL: r.cfg.FormURL, Type: "form"},
			{Text: "📞 İltica Danışmanı", URL: r.whatsAppLink("İltica konusunda danışmanlık istiyorum"), Type: "whatsapp"},
		},
	}
}

func (r *IntentRouter) consultantResult() domain.IntentResult {
	return domain.IntentResult{
		Kind:   domain.IntentConsultant,
		Answer: "Elbette, daha detaylı bilgi için sizi danışmanımıza yönlendiriyorum. Hoşça kalın!",
		ActionButtons: []domain.ActionButton{
			{Text: "📞 Başvuru Danışmanı", URL: r.whatsAppLink("Danışmanlık talep ediyorum"), Type: "whatsapp"},
		},
	}
}

func (r *IntentRouter) eligibilityResult() domain.IntentResult {
	return domain.IntentResult{
		Kind:   domain.IntentEligibility,
		Answer: "Kısa bir uygunluk kontrolü yapalım. Aşağıdaki formu açarak başlayabilirsiniz.",
		ActionButtons: []domain.ActionButton{
			{Text: "✅ Uygunluk Değerlendirme Formu", URL: r.cfg.FormURL, Type: "form"},
			{Text: "📞 Başvuru Danışmanı", URL: r.whatsAppLink("Göç başvurusu konusunda danışmanlık istiyorum"), Type: "whatsapp"},
		},
	}
}

// ConsultantHandoffButton is reused by the no-source policy in answer
// assembly.
func (r *IntentRouter) ConsultantHandoffButton() domain.ActionButton {
	return domain.ActionButton{
		Text: "📞 Danışman ile Görüş",
		URL:  r.whatsAppLink("Danışmanlık talep ediyorum"),
		Type: "whatsapp",
	}
}

func (r *IntentRouter) whatsAppLink(message string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", r.cfg.WhatsAppPhone, escaped)
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// turkishASCII maps the Turkish letters that do not decompose under NFD.
var turkishASCII = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ş", "s", "Ş", "s",
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ö", "o", "Ö", "o",
	"ü", "u", "Ü", "u",
)

// foldTurkish lowercases and strips diacritics so trigger matching survives
// users typing without Turkish keyboard layouts.
func foldTurkish(s string) string {
	s = turkishASCII.Replace(strings.ToLower(s))
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}
