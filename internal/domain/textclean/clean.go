// Package textclean applies deterministic, rule-based cleanup to cue text:
// spacing around punctuation, typographic characters, sentence-initial
// capitals and a handful of ASR contraction slips. It does not attempt real
// grammar correction.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/forPelevin/subcue/internal/types"
)

var typographic = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2018", "'", "\u2019", "'",
	"\u2013", "-", "\u2014", "-",
	"\u2026", "...",
	"\u00a0", " ",
)

var (
	blankRunRE      = regexp.MustCompile(`[ \t]+`)
	spaceBeforeRE   = regexp.MustCompile(`[ \t]+([.,!?:;])`)
	spaceAfterRE    = regexp.MustCompile(`([,!?:;])([\p{L}])`)
	sentenceAfterRE = regexp.MustCompile(`(\p{Ll}{2}\.)(\p{Lu})`)
	loneIRE         = regexp.MustCompile(`\bi\b`)
)

var contractions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bi m\b`), "I'm"},
	{regexp.MustCompile(`(?i)\bdont\b`), "don't"},
	{regexp.MustCompile(`(?i)\bcant\b`), "can't"},
	{regexp.MustCompile(`(?i)\bwont\b`), "won't"},
	{regexp.MustCompile(`(?i)\blets\b`), "let's"},
}

var upper = cases.Upper(language.Und)

// CleanStats reports what CleanCues changed.
type CleanStats struct {
	ChangedCues int
}

// Clean normalizes one piece of cue text. Line breaks are kept.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if ln = cleanLine(ln); ln != "" {
			out = append(out, ln)
		}
	}
	if len(out) == 0 {
		return ""
	}
	joined := strings.Join(out, "\n")
	return capitalizeFirst(joined)
}

func cleanLine(s string) string {
	s = typographic.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = blankRunRE.ReplaceAllString(s, " ")
	s = spaceBeforeRE.ReplaceAllString(s, "$1")
	s = spaceAfterRE.ReplaceAllString(s, "$1 $2")
	s = sentenceAfterRE.ReplaceAllString(s, "$1 $2")
	for _, c := range contractions {
		s = c.re.ReplaceAllStringFunc(s, func(m string) string { return matchCase(m, c.repl) })
	}
	s = loneIRE.ReplaceAllString(s, "I")
	return strings.TrimSpace(s)
}

// matchCase capitalizes repl when the matched text started with a capital.
func matchCase(matched, repl string) string {
	r, _ := utf8.DecodeRuneInString(matched)
	if unicode.IsUpper(r) {
		return capitalizeFirst(repl)
	}
	return repl
}

func capitalizeFirst(s string) string {
	for i, r := range s {
		if unicode.IsDigit(r) {
			return s
		}
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsUpper(r) {
			return s
		}
		size := utf8.RuneLen(r)
		return s[:i] + upper.String(s[i:i+size]) + s[i+size:]
	}
	return s
}

// CleanCues returns a copy of cues with Clean applied to each text. A cue
// whose text would become empty keeps its original words.
func CleanCues(cues []types.Cue) ([]types.Cue, CleanStats) {
	out := types.CloneCues(cues)
	var stats CleanStats
	for i := range out {
		before := out[i].JoinedText()
		after := Clean(before)
		if after == "" || after == before {
			continue
		}
		out[i].Text = strings.Split(after, " ")
		stats.ChangedCues++
	}
	return out, stats
}
