package services

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github/itish2003/notechat/models"

	"go.uber.org/zap"
)

// NotFoundAnswer is the sentinel answer when no note can answer the query.
const NotFoundAnswer = "I could not find this in your notes."

const (
	untitled          = "Untitled"
	maxNoteContentLen = 1500
	maxAnswerLen      = 1000
	finalMarker       = "Final:"
)

var (
	// Any of these in a synthesized reply means reasoning leaked into it.
	leakMarkers = []string{"i think", "let me", "analysis", "step"}
	// Stricter list used by IsAcceptableAnswer.
	unacceptableMarkers = []string{"i think", "let me", "first", "analysis", "step by step", "okay"}

	titleCitationRe = regexp.MustCompile(`(?i)\(Title:\s*([^)]+)\)`)
	titleWordRe     = regexp.MustCompile(`(?i)\b(title|titled)\b`)
)

// AnswerSynthesizer writes an answer grounded in the matched notes only. The
// reply is checked before it is returned; a reply that leaks reasoning (or,
// in strict mode, cites anything it should not) is replaced by a templated
// answer listing the matched note titles.
type AnswerSynthesizer struct {
	gen    Generator
	log    *zap.SugaredLogger
	strict bool
}

// NewAnswerSynthesizer creates a synthesizer. With strictGrounding set every
// answer must also pass IsAcceptableAnswer.
func NewAnswerSynthesizer(gen Generator, log *zap.SugaredLogger, strictGrounding bool) *AnswerSynthesizer {
	return &AnswerSynthesizer{gen: gen, log: log, strict: strictGrounding}
}

func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, notes []models.Note) string {
	if len(notes) == 0 {
		return NotFoundAnswer
	}

	system := answerSystemPrompt + "\n\n" + answerExamples
	user := answerUserPrompt(notesJSON(notes), allowedTitlesJSON(notes), query)
	lines := StripThoughtLines(callText(ctx, s.gen, s.log, "answer", systemUser(system, user)...))

	cleaned := strings.Join(lines, "\n")
	if cleaned == "" || containsAny(strings.ToLower(cleaned), leakMarkers) {
		s.log.Infof("SERVICE: synthesized answer rejected by guardrail, using title fallback")
		return fallbackAnswer(notes)
	}

	answer := cleaned
	if strings.Contains(cleaned, finalMarker) {
		answer = stripFinalMarkers(lines)
	}
	if answer == "" {
		return fallbackAnswer(notes)
	}

	if s.strict && !IsAcceptableAnswer(answer, notes) {
		s.log.Infof("SERVICE: synthesized answer failed grounding check, using title fallback")
		return fallbackAnswer(notes)
	}
	return answer
}

// IsAcceptableAnswer is the grounding validator. It rejects answers that are
// blank, too long, read like reasoning, or cite a title that is not among
// the matched notes. Whole-word mentions of matched titles are then removed,
// and any "title"/"titled" left is treated as an unverifiable citation. The
// "(Title: X)" wrapper itself is not removed, so a cited answer is rejected
// even when X is a matched title.
func IsAcceptableAnswer(answer string, notes []models.Note) bool {
	a := strings.TrimSpace(answer)
	if a == "" {
		return false
	}
	if containsAny(strings.ToLower(a), unacceptableMarkers) {
		return false
	}
	if utf8.RuneCountInString(a) > maxAnswerLen {
		return false
	}

	allowed := allowedTitleSet(notes)
	for _, m := range titleCitationRe.FindAllStringSubmatch(a, -1) {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(m[1]))]; !ok {
			return false
		}
	}

	residual := a
	for title := range allowed {
		residual = removeWholeWord(residual, title)
	}
	return !titleWordRe.MatchString(residual)
}

// removeWholeWord deletes case-insensitive occurrences of word that are not
// part of a longer run of letters or digits. Unlike \b this treats non-ASCII
// letters as word characters.
func removeWholeWord(s, word string) string {
	re, err := regexp.Compile(`(?i)(^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(word) + `($|[^\p{L}\p{N}_])`)
	if err != nil {
		return s
	}
	// Adjacent matches share a boundary character, so repeat until stable.
	for {
		next := re.ReplaceAllString(s, "${1} ${2}")
		if next == s {
			return s
		}
		s = next
	}
}

type noteRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// notesJSON renders the notes as one JSON array so each note reaches the
// model as a single unit. Long content is cut to keep the prompt bounded.
func notesJSON(notes []models.Note) string {
	records := make([]noteRecord, 0, len(notes))
	for _, n := range notes {
		records = append(records, noteRecord{
			Title:   noteTitle(n),
			Content: truncateRunes(n.Content, maxNoteContentLen),
		})
	}
	return compactJSON(records)
}

func allowedTitlesJSON(notes []models.Note) string {
	return compactJSON(distinctTitles(notes))
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}

func fallbackAnswer(notes []models.Note) string {
	return "Yes — you have note(s): " + strings.Join(distinctTitles(notes), ", ") + ". Would you like to open them?"
}

func stripFinalMarkers(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(l, finalMarker) {
			l = strings.TrimSpace(strings.TrimPrefix(l, finalMarker))
		}
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func noteTitle(n models.Note) string {
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	return untitled
}

func distinctTitles(notes []models.Note) []string {
	titles := make([]string, 0, len(notes))
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		t := noteTitle(n)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	return titles
}

func allowedTitleSet(notes []models.Note) map[string]struct{} {
	set := make(map[string]struct{}, len(notes))
	for _, t := range distinctTitles(notes) {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
