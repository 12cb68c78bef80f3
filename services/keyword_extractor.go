package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxKeywords        = 6
	maxHeuristicPhrase = 8
	maxPhraseTokens    = 3
	maxKeywordLineLen  = 200
)

var (
	keywordLineRe    = regexp.MustCompile(`^[\p{L}\p{N}\s,-]+$`)
	keywordDisallow  = regexp.MustCompile(`[^\p{L}\p{N},\s-]`)
	queryDisallow    = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	commaSplit       = regexp.MustCompile(`\s*,\s*`)
	analysisMarkers  = []string{"i think", "i'm thinking", "let me", "analysis", "first", "second", "therefore"}
	keywordStopwords = map[string]struct{}{
		"is": {}, "are": {}, "the": {}, "a": {}, "an": {}, "for": {}, "of": {}, "in": {}, "on": {},
		"to": {}, "do": {}, "does": {}, "did": {}, "there": {}, "i": {}, "my": {}, "me": {},
		"with": {}, "about": {}, "that": {}, "this": {},
	}
)

// KeywordExtractor turns a query into at most six unique search phrases.
// The backend is asked for a comma-separated line; whatever it returns is
// validated, and when it is unusable the phrases come from the query itself.
type KeywordExtractor struct {
	gen Generator
	log *zap.SugaredLogger
}

func NewKeywordExtractor(gen Generator, log *zap.SugaredLogger) *KeywordExtractor {
	return &KeywordExtractor{gen: gen, log: log}
}

// Extract never fails. The result is lower-cased, de-duplicated, holds at
// most six phrases of at most three tokens each, and may be empty only when
// the query has no usable words.
func (e *KeywordExtractor) Extract(ctx context.Context, query string) []string {
	raw := callText(ctx, e.gen, e.log, "keywords", systemUser(keywordSystemPrompt, keywordUserPrompt(query))...)
	lines := StripThoughtLines(raw)

	var firstLine string
	if len(lines) > 0 {
		firstLine = lines[0]
	}

	if looksLikeKeywordLine(firstLine) {
		if kws := limitAndUnique(splitAndCleanKeywords(firstLine), maxKeywords); len(kws) > 0 {
			return kws
		}
	}

	if looksLikeAnalysis(strings.Join(lines, "\n")) {
		e.log.Debugf("SERVICE: keyword reply looks like reasoning, using heuristic keywords")
		return HeuristicKeywords(query)
	}

	if kws := limitAndUnique(splitAndCleanKeywords(firstLine), maxKeywords); len(kws) > 0 {
		return kws
	}

	return HeuristicKeywords(query)
}

// HeuristicKeywords derives phrases from the query alone: unigrams, bigrams
// and trigrams of the tokens left after dropping short words and stopwords.
// It is pure; the same query always yields the same phrases.
func HeuristicKeywords(query string) []string {
	cleaned := strings.ToLower(queryDisallow.ReplaceAllString(query, " "))

	var candidates []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, stop := keywordStopwords[tok]; stop {
			continue
		}
		candidates = append(candidates, tok)
	}

	var phrases []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}
	for i, w := range candidates {
		add(w)
		if i+1 < len(candidates) {
			add(w + " " + candidates[i+1])
		}
		if i+2 < len(candidates) {
			add(w + " " + candidates[i+1] + " " + candidates[i+2])
		}
		if len(phrases) >= maxHeuristicPhrase {
			break
		}
	}

	for i := range phrases {
		phrases[i] = shortenPhrase(phrases[i])
	}
	if len(phrases) > maxKeywords {
		phrases = phrases[:maxKeywords]
	}
	return limitAndUnique(phrases, maxKeywords)
}

// looksLikeKeywordLine accepts a short line made only of letters, digits,
// whitespace, hyphens and commas. Without commas it may hold at most six words.
func looksLikeKeywordLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if utf8.RuneCountInString(line) > maxKeywordLineLen {
		return false
	}
	if !keywordLineRe.MatchString(line) {
		return false
	}
	return strings.Contains(line, ",") || len(strings.Fields(line)) <= maxKeywords
}

// looksLikeAnalysis reports replies that read like reasoning rather than a
// keyword list. Such replies are never mined for keywords.
func looksLikeAnalysis(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range analysisMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	length := utf8.RuneCountInString(text)
	sentences := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '\n' })
	if len(sentences) > 1 && length > 80 {
		return true
	}
	return length > 120
}

func splitAndCleanKeywords(line string) []string {
	cleaned := strings.TrimSpace(keywordDisallow.ReplaceAllString(line, " "))
	if cleaned == "" {
		return nil
	}
	var out []string
	for _, part := range commaSplit.Split(cleaned, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, shortenPhrase(p))
		}
	}
	return out
}

// shortenPhrase keeps the first three whitespace-separated tokens.
func shortenPhrase(s string) string {
	toks := strings.Fields(s)
	if len(toks) > maxPhraseTokens {
		toks = toks[:maxPhraseTokens]
	}
	return strings.Join(toks, " ")
}

// limitAndUnique lower-cases and trims, drops empties and duplicates, and
// keeps insertion order up to limit entries.
func limitAndUnique(items []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		t := strings.ToLower(strings.TrimSpace(s))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}
	return out
}
