package textnorm

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Rules is the editable cleanup ruleset loaded from text_rules.yaml. Strip
// patterns delete matches; replacements rewrite recurring transcription
// mistakes (speech-to-text mangles German agency names badly).
type Rules struct {
	StripPatterns []string `yaml:"strip_patterns"`
	Replacements  []struct {
		Pattern string `yaml:"pattern"`
		Replace string `yaml:"replace"`
	} `yaml:"replacements"`
}

type compiledReplacement struct {
	pattern *regexp.Regexp
	replace string
}

// Normalizer cleans raw transcript and model output text: unicode
// confusables, configured strip/replace rules, bullet markers, timestamps
// and whitespace.
type Normalizer struct {
	strip        []*regexp.Regexp
	replacements []compiledReplacement
}

var (
	timestampPattern  = regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\b`)
	cjkPattern        = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)
	spaceRunPattern   = regexp.MustCompile(`[ \t]+`)
	newlineRunPattern = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
	bulletLinePattern = regexp.MustCompile(`^\s*[-*•]\s*(.*)$`)
	leadStarsPattern  = regexp.MustCompile(`^\*+\s*`)
)

var confusables = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"’", "'", "‘", "'", "‚", ",",
	"–", "-", "—", "-", "−", "-",
	"•", "- ", "·", "- ", "●", "- ",
	" ", " ",
)

// New loads and compiles the ruleset. A missing rules path yields a
// normalizer with only the built-in steps.
func New(rulesPath string) (*Normalizer, error) {
	n := &Normalizer{}
	if rulesPath == "" {
		return n, nil
	}

	raw, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("read text rules: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse text rules: %w", err)
	}
	return NewFromRules(rules)
}

func NewFromRules(rules Rules) (*Normalizer, error) {
	n := &Normalizer{}
	for _, pattern := range rules.StripPatterns {
		re, err := regexp.Compile(`(?im)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile strip pattern %q: %w", pattern, err)
		}
		n.strip = append(n.strip, re)
	}
	for _, item := range rules.Replacements {
		if item.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + item.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile replacement %q: %w", item.Pattern, err)
		}
		n.replacements = append(n.replacements, compiledReplacement{pattern: re, replace: item.Replace})
	}
	return n, nil
}

func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	t := norm.NFKC.String(text)
	t = confusables.Replace(t)
	t = stripControl(t)
	t = cjkPattern.ReplaceAllString(t, "")

	for _, re := range n.strip {
		t = re.ReplaceAllString(t, "")
	}
	for _, item := range n.replacements {
		t = item.pattern.ReplaceAllString(t, item.replace)
	}

	t = normalizeBullets(t)
	t = timestampPattern.ReplaceAllString(t, " ")
	t = spaceRunPattern.ReplaceAllString(t, " ")
	t = newlineRunPattern.ReplaceAllString(t, "\n")
	return strings.TrimSpace(t)
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// normalizeBullets rewrites -, * and • list markers to "- " and folds wrapped
// continuation lines back into their bullet.
func normalizeBullets(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	current := ""
	flush := func() {
		if current != "" {
			out = append(out, strings.TrimSpace(current))
			current = ""
		}
	}

	for _, line := range lines {
		if m := bulletLinePattern.FindStringSubmatch(line); m != nil {
			flush()
			content := leadStarsPattern.ReplaceAllString(strings.TrimSpace(m[1]), "")
			current = "- " + content
			continue
		}
		trimmed := strings.TrimSpace(line)
		if current != "" && trimmed != "" {
			current += " " + leadStarsPattern.ReplaceAllString(trimmed, "")
			continue
		}
		flush()
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	flush()
	return strings.Join(out, "\n")
}
