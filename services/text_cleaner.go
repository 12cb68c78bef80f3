package services

import (
	"regexp"
	"strings"
)

var (
	thinkTagRe   = regexp.MustCompile(`(?is)</?think.*?>`)
	bracketSpan  = regexp.MustCompile(`(?s)\[.*?\]`)
	braceSpan    = regexp.MustCompile(`(?s)\{.*?\}`)
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd  = regexp.MustCompile(`[.!?]\s+`)
	closingThink = regexp.MustCompile(`(?i)</think>`)
)

// removeArtifacts drops reasoning tags and bracketed or braced asides while
// keeping line breaks intact. Removed spans become a single space so that no
// new tag or span can be formed from the surrounding text.
//
// This is a blunt heuristic: legitimate bracketed note text goes too.
func removeArtifacts(raw string) string {
	s := thinkTagRe.ReplaceAllString(raw, " ")
	s = bracketSpan.ReplaceAllString(s, " ")
	s = braceSpan.ReplaceAllString(s, " ")
	return s
}

// StripThoughts cleans raw model output: reasoning tags and bracketed/braced
// spans are removed and all whitespace runs collapse to one space.
// StripThoughts(StripThoughts(x)) == StripThoughts(x).
func StripThoughts(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(removeArtifacts(raw)), " ")
}

// StripThoughtLines is StripThoughts applied line by line. Empty lines are
// dropped, so callers that care about the reply's line structure (first line,
// marker lines) still see it.
func StripThoughtLines(raw string) []string {
	if raw == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(removeArtifacts(raw), "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// StripReasoningTags removes only the think tags and collapses whitespace.
func StripReasoningTags(raw string) string {
	return strings.Join(strings.Fields(thinkTagRe.ReplaceAllString(raw, " ")), " ")
}

// ExtractFinalAnswer recovers the conclusion from a reply that leaked its
// reasoning first. Text after the last closing think tag wins; otherwise the
// last sentence of the last reasonably sized paragraph; otherwise everything.
func ExtractFinalAnswer(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if after := afterClosingThink(raw); after != "" {
		return after
	}

	cleaned := removeArtifacts(raw)
	paragraphs := blankLineRe.Split(cleaned, -1)
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := strings.Join(strings.Fields(paragraphs[i]), " ")
		if p == "" || len([]rune(p)) >= 1000 {
			continue
		}
		sentences := splitSentences(p)
		return sentences[len(sentences)-1]
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// afterClosingThink returns the trimmed text after the last closing think
// tag, or "" when there is no tag or nothing follows it.
func afterClosingThink(raw string) string {
	locs := closingThink.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return ""
	}
	return strings.TrimSpace(raw[locs[len(locs)-1][1]:])
}

// splitSentences splits after sentence-ending punctuation followed by
// whitespace. The punctuation stays with its sentence.
func splitSentences(p string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(p, -1) {
		// loc[0] is the punctuation, keep it.
		out = append(out, strings.TrimSpace(p[start:loc[0]+1]))
		start = loc[1]
	}
	if rest := strings.TrimSpace(p[start:]); rest != "" || len(out) == 0 {
		out = append(out, rest)
	}
	return out
}
