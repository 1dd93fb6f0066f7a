package usecase

import (
	"strings"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

// categoryMenu is the static 8-topic browse payload offered when the user
// asks what the bot can help with.
var categoryMenu = []domain.Category{
	{ID: "hukuk_goc", Title: "🏛️ HUKUK VE GÖÇ HUKUKU",
		Description: "Vize türleri, ikamet izinleri, yasal dayanaklar, iltica süreçleri"},
	{ID: "mesleki_egitim", Title: "👨‍💼 MESLEKİ EĞİTİM VE NİTELİKLER",
		Description: "Eğitim türleri, denklik işlemleri, mesleki yeterlilik, belge türleri"},
	{ID: "is_calisma", Title: "💼 İŞ VE ÇALIŞMA HAYATI",
		Description: "Meslek grupları, iş sözleşmeleri, iş ajansı, çalışma izinleri"},
	{ID: "yerlesim_yasam", Title: "🏠 YERLEŞİM VE YAŞAM",
		Description: "Adres kaydı, dil gereksinimleri, sosyal güvenlik, kalıcı ikamet"},
	{ID: "mali_konular", Title: "💰 MALİ KONULAR",
		Description: "Maaş şartları, harçlar, denklik masrafları, tercüme"},
	{ID: "ulke_bazli", Title: "🌍 ÜLKE BAZLI BİLGİLER",
		Description: "Almanya, İngiltere, diğer AB ülkeleri"},
	{ID: "surec_prosedur", Title: "📋 SÜREÇ VE PROSEDÜRLER",
		Description: "Başvuru süreçleri, belge hazırlama, onay süreçleri, süreler"},
	{ID: "ozel_durumlar", Title: "🎯 ÖZEL DURUMLAR",
		Description: "Yaş faktörü, meslek özelinde, dil seviyeleri, eğitim süreleri"},
}

// categoryKeywords feeds the retriever's category hint: when a category is
// selected, up to ten of its keywords widen the expanded query.
var categoryKeywords = map[string][]string{
	"hukuk_goc": {
		"mavi kart", "blue card", "81a", "ön onay", "fırsat kartı", "chancenkarte",
		"niederlassungserlaubnis", "çalışma izni", "ikamet izni", "18a", "18b", "18g", "19c", "20a",
		"iltica", "sığınma", "mülteci", "bottleneck", "nitelikli iş gücü",
	},
	"mesleki_egitim": {
		"ön lisans", "meslek lisesi", "kalfalık", "çıraklık", "ustalık", "16. madde",
		"ihk", "hwk", "bezirksregierung", "denklik", "tam denklik", "kısmi denklik",
		"denklik tamamlama", "myk", "mesleki yeterlilik", "ausbildung",
	},
	"is_calisma": {
		"tır şoförü", "inşaat ustası", "kasap", "aşçı", "elektrikçi", "oto tamir",
		"depo çalışanı", "nitelikli iş sözleşmesi", "maaş şartı", "agentur für arbeit",
		"çalışma vizesi", "oturum izni", "iş sözleşmesi",
	},
	"yerlesim_yasam": {
		"anmeldung", "wohnungsgeberbestätigung", "adres kaydı", "a2", "b1", "c1",
		"emeklilik sigortası", "sosyal güvenlik", "kalıcı ikamet", "36 ay", "dil seviyesi",
	},
	"mali_konular": {
		"48.300", "43.759,80", "53.130", "45 yaş", "harç", "vize harcı", "oturum kartı",
		"denklik masrafı", "tercüme", "411€", "500-600€", "brüt maaş", "euro",
	},
	"ulke_bazli": {
		"almanya", "ingiltere", "scale-up", "ankara anlaşması", "avrupa birliği",
		"ikamet yasası", "birleşik krallık", "ab ülkeleri",
	},
	"surec_prosedur": {
		"başvuru süreci", "denklik başvurusu", "evrak toplama", "tercüme",
		"yabancılar dairesi", "iş ajansı", "7-8 ay", "8 hafta", "vize süreci",
	},
	"ozel_durumlar": {
		"45 yaş", "profesyonel sürücü", "niteliksiz işçi", "dil seviyesi",
		"eğitim süresi", "2 yıl", "yaş faktörü", "meslek özelinde",
	},
}

// categoryIndicators detect which category a free-form question belongs to so
// retrieval can be focused without an explicit menu selection.
var categoryIndicators = []struct {
	id         string
	indicators []string
}{
	{"hukuk_goc", []string{"hukuk", "göç", "vize", "ikamet", "iltica", "mavi kart", "81a"}},
	{"mesleki_egitim", []string{"meslek", "eğitim", "denklik", "kalfalık", "ustalık", "ön lisans"}},
	{"is_calisma", []string{"iş", "çalışma", "şoför", "usta", "kasap", "aşçı", "elektrikçi"}},
	{"yerlesim_yasam", []string{"yerleşim", "yaşam", "anmeldung", "dil", "a2", "b1"}},
	{"mali_konular", []string{"maaş", "harç", "mali", "euro", "ücret", "masraf"}},
	{"ulke_bazli", []string{"almanya", "ingiltere", "ülke", "scale-up"}},
	{"surec_prosedur", []string{"süreç", "prosedür", "başvuru", "evrak", "süre"}},
	{"ozel_durumlar", []string{"yaş", "özel", "durum", "faktör", "seviye"}},
}

// DetectCategory returns the first category whose indicator list matches the
// question, or "" when none does. Order matters: legal/migration wins ties.
func DetectCategory(question string) string {
	lower := strings.ToLower(question)
	for _, entry := range categoryIndicators {
		for _, indicator := range entry.indicators {
			if strings.Contains(lower, indicator) {
				return entry.id
			}
		}
	}
	return ""
}

// CategoryKeywords returns the static keyword list for a category id.
func CategoryKeywords(categoryID string) []string {
	return categoryKeywords[categoryID]
}
