package usecase

import (
	"strings"
	"testing"
)

func TestPolishKeepsFirstTwoSentencesAsSummary(t *testing.T) {
	in := "İlk cümle burada. İkinci cümle de burada. Üçüncü cümle şart anlatır. Dördüncü cümle devam eder."
	got := PolishAnswer(in)

	if !strings.HasPrefix(got, "İlk cümle burada. İkinci cümle de burada.") {
		t.Fatalf("expected two-sentence summary, got %q", got)
	}
	if !strings.Contains(got, "Şartlar:\n- Üçüncü cümle şart anlatır.") {
		t.Fatalf("expected remaining sentences under Şartlar, got %q", got)
	}
}

func TestPolishSectionsExceptionsAndSteps(t *testing.T) {
	in := "Özet bir. Özet iki. Başvuru için sözleşme gerekir. Öğrenciler hariç tutulur. Önce belgeleri toplayın."
	got := PolishAnswer(in)

	if !strings.Contains(got, "İstisnalar:\n- Öğrenciler hariç tutulur.") {
		t.Fatalf("expected exception sentence under İstisnalar, got %q", got)
	}
	if !strings.Contains(got, "Adımlar:\n- Önce belgeleri toplayın.") {
		t.Fatalf("expected step sentence under Adımlar, got %q", got)
	}
	if !strings.Contains(got, "Şartlar:\n- Başvuru için sözleşme gerekir.") {
		t.Fatalf("expected condition sentence under Şartlar, got %q", got)
	}
}

func TestPolishStripsNumericStepPrefixes(t *testing.T) {
	in := "Bir. İki. 1. Form doldurun. 2) Randevu alın."
	got := PolishAnswer(in)

	if !strings.Contains(got, "- Form doldurun.") {
		t.Fatalf("expected numeric prefix stripped, got %q", got)
	}
	if !strings.Contains(got, "- Randevu alın.") {
		t.Fatalf("expected paren prefix stripped, got %q", got)
	}
}

func TestPolishRemovesExistingFooter(t *testing.T) {
	in := "Cevap cümlesi bir. Cevap cümlesi iki." + answerFooter
	got := PolishAnswer(in)

	if strings.Count(got, "📚") != 1 {
		t.Fatalf("expected single footer block, got %q", got)
	}
	if !strings.Contains(got, "Oktay Özdemir Danışmanlık") {
		t.Fatalf("expected polish footer, got %q", got)
	}
}

func TestPolishAppendsFooterBlock(t *testing.T) {
	got := PolishAnswer("Tek cümle.")
	if !strings.HasSuffix(got, polishFooter) {
		t.Fatalf("expected footer as trailing block, got %q", got)
	}
	if !strings.HasPrefix(got, "Tek cümle.") {
		t.Fatalf("expected summary retained, got %q", got)
	}
}

func TestPolishDropsSourceLikeSentences(t *testing.T) {
	in := "Bir. İki. Kaynak: eski liste burada. Gerçek şart cümlesi."
	got := PolishAnswer(in)

	if strings.Contains(got, "eski liste") {
		t.Fatalf("expected source-like sentence dropped, got %q", got)
	}
	if !strings.Contains(got, "- Gerçek şart cümlesi.") {
		t.Fatalf("expected real sentence kept, got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Bir cümle. İkinci cümle! Üçüncü mü? Son")
	if len(got) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %q", len(got), got)
	}
	if got[1] != "İkinci cümle!" || got[3] != "Son" {
		t.Fatalf("unexpected split: %q", got)
	}
}
