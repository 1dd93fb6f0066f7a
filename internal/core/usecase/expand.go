package usecase

import (
	"regexp"
	"strings"
)

// numberPattern matches numeric tokens with optional European separators,
// e.g. "48.300", "43.759,80", "14".
var numberPattern = regexp.MustCompile(`\d+[\.,]?\d*`)

// expansionGroup maps trigger phrases found in the lowercased question to a
// fixed synonym/keyword string appended to the search query. The groups and
// their keyword strings are hand-tuned domain data, not derived.
type expansionGroup struct {
	triggers []string
	keywords string
}

var expansionGroups = []expansionGroup{
	{[]string{"anmeldung", "adres", "ikamet kaydı", "adres kaydı"},
		"Anmeldung adres kaydı ikamet kaydı Wohnungsgeberbestätigung 14 gün"},
	{[]string{"mavi kart", "blue card", "ab mavi"},
		"AB Mavi Kart Blue Card bottleneck nitelikli iş gücü açığı 48.300 43.759,80"},
	{[]string{"fırsat kart", "chancenkarte"},
		"Chancenkarte fırsat kartı §20a puan sistemi mesleki yeterlilik"},
	{[]string{"81a", "ön onay", "hızlandırılmış"},
		"§81a hızlandırılmış ön onay iş ajansı yabancılar dairesi İkamet Yasası"},
	{[]string{"18a", "18b", "18g"},
		"§18a §18b §18g İkamet Yasası nitelikli istihdam"},
	{[]string{"oturum", "yerleşim", "niederlassung"},
		"oturum izni ikamet izni kalıcı oturum Niederlassungserlaubnis B1 36 ay emeklilik sigortası"},
	{[]string{"maaş", "euro", "brüt", "kazanç"},
		"brüt maaş € euro yıllık aylık eşik asgari bottleneck 53.130 45 yaş"},
	{[]string{"sürücü", "src", "ehliyet"},
		"profesyonel sürücü SRC psikoteknik ehliyet sınıfı"},
	{[]string{"niteliksiz", "kalıcı ikamet"},
		"niteliksiz işçi kalıcı ikamet A2 sosyal güvenlik çalışma izni"},
	{[]string{"meslek", "çalışmak", "iş", "ön lisans", "mezun"},
		"meslek iş çalışma ön lisans mezun nitelikli istihdam çalışma izni"},
}

// QueryExpander rewrites a user question into an expanded search query
// carrying domain synonyms and numeric-format variants. Deterministic; always
// returns the original question as a prefix.
type QueryExpander struct{}

func NewQueryExpander() *QueryExpander {
	return &QueryExpander{}
}

func (e *QueryExpander) Expand(question string) string {
	lower := strings.ToLower(question)

	var expansions []string
	seen := make(map[string]struct{})
	add := func(term string) {
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		expansions = append(expansions, term)
	}

	for _, group := range expansionGroups {
		for _, trigger := range group.triggers {
			if strings.Contains(lower, trigger) {
				add(group.keywords)
				break
			}
		}
	}

	// Number format variants: 4.427,50 <-> 4427.50 <-> 442750.
	for _, num := range numberPattern.FindAllString(question, -1) {
		add(num)
		add(strings.ReplaceAll(strings.ReplaceAll(num, ".", ""), ",", "."))
		add(strings.ReplaceAll(num, ",", ""))
	}

	// Law section symbols are written both with and without the sign.
	if strings.Contains(question, "§") {
		add(strings.ReplaceAll(question, "§", ""))
	}

	if len(expansions) == 0 {
		return question
	}
	return question + "\n" + strings.Join(expansions, " ")
}
