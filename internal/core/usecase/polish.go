package usecase

import (
	"regexp"
	"strings"
)

// polishFooter is reattached as its own block after restructuring.
const polishFooter = "\n\n—\n\n📚 Bütün bilgiler Oktay Özdemir Danışmanlık web sitemizden alınmıştır. Daha detaylı bilgi almak için [Oktay Özdemir Danışmanlık](https://oktayozdemir.com.tr) web sitemizi ziyaret edebilirsiniz."

var (
	dashFooterPattern  = regexp.MustCompile(`(?s)\n+—+\n+.*$`)
	emojiFooterPattern = regexp.MustCompile(`(?s)\n+📚.*$`)
	bulletLeadPattern  = regexp.MustCompile(`^([\-*•]+\s*)+`)
	stepLeadPattern    = regexp.MustCompile(`(?i)^(adım|önce|ardından|sonra|1\.|2\.|3\.|[0-9]+\))`)
	stepNumberPattern  = regexp.MustCompile(`^(\d+\.|\d+\))\s*`)
)

var exceptionIndicators = []string{"istisna", "hariç", "değilse", "olmadığı", "olmazsa"}

// PolishAnswer restructures a generated answer into a short opening summary
// followed by Şartlar / İstisnalar / Adımlar sections, then reattaches the
// footer as a separate block. Pure sentence splitting on punctuation, no model
// involved.
func PolishAnswer(answer string) string {
	text := dashFooterPattern.ReplaceAllString(answer, "")
	text = emojiFooterPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	sentences := splitSentences(text)
	summary := strings.TrimSpace(strings.Join(firstN(sentences, 2), " "))
	rest := strings.TrimSpace(strings.Join(skipN(sentences, 2), " "))

	var details []string
	for _, sentence := range splitSentences(rest) {
		s := strings.TrimSpace(sentence)
		if s == "" ||
			strings.HasPrefix(strings.ToLower(s), "kaynak") ||
			strings.HasPrefix(s, "—") ||
			strings.HasPrefix(s, "---") ||
			strings.HasPrefix(s, "📚") ||
			strings.Contains(s, "Bütün bilgiler") {
			continue
		}
		details = append(details, bulletLeadPattern.ReplaceAllString(s, ""))
	}

	var conditions, exceptions, steps []string
	for _, d := range details {
		lower := strings.ToLower(d)
		switch {
		case containsAny(lower, exceptionIndicators...):
			exceptions = append(exceptions, d)
		case stepLeadPattern.MatchString(lower):
			if step := strings.TrimSpace(stepNumberPattern.ReplaceAllString(d, "")); step != "" {
				steps = append(steps, step)
			}
		default:
			conditions = append(conditions, d)
		}
	}

	var parts []string
	if summary != "" {
		parts = append(parts, summary)
	}
	if len(conditions) > 0 {
		parts = append(parts, "\nŞartlar:\n"+bulletList(conditions))
	}
	if len(exceptions) > 0 {
		parts = append(parts, "\nİstisnalar:\n"+bulletList(exceptions))
	}
	if len(steps) > 0 {
		parts = append(parts, "\nAdımlar:\n"+bulletList(steps))
	}

	return strings.Join(parts, "\n\n") + polishFooter
}

// splitSentences breaks text after . ! ? followed by whitespace.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && i+1 < len(runes) && isSpace(runes[i+1]) {
			out = append(out, b.String())
			b.Reset()
			for i+1 < len(runes) && isSpace(runes[i+1]) {
				i++
			}
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func skipN(items []string, n int) []string {
	if len(items) <= n {
		return nil
	}
	return items[n:]
}
