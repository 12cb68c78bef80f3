package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripThoughts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "  hello   world ", "hello world"},
		{"think tags keep inner text", "<think>hmm</think> Hello", "hmm Hello"},
		{"think tag with attributes", "<THINK reason=\"x\">a</think>b", "a b"},
		{"bracket span", "keep [drop this] keep", "keep keep"},
		{"brace span", "a {\"k\": 1} b", "a b"},
		{"multiline spans", "a [x\ny] b {p\nq} c", "a b c"},
		{"newlines collapse", "line1\n\nline2\tend", "line1 line2 end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripThoughts(tt.in))
		})
	}
}

func TestStripThoughts_Idempotent(t *testing.T) {
	inputs := []string{
		"<think>plan</think>answer",
		"<thi<think>nk>",
		"[a[b]c]",
		"{a{b}c}",
		"x ] [ y",
		"<think><think>",
		"text with\n\n\nblank lines and [notes] and {json}",
		"Résumé: ünïcode [ok] stays",
	}
	for _, in := range inputs {
		once := StripThoughts(in)
		assert.Equal(t, once, StripThoughts(once), "input %q", in)
	}
}

func TestStripThoughtLines(t *testing.T) {
	got := StripThoughtLines("line one\n\n[x]\n  line   two \n<think></think>")
	assert.Equal(t, []string{"line one", "line two"}, got)

	assert.Nil(t, StripThoughtLines(""))
}

func TestStripReasoningTags(t *testing.T) {
	assert.Equal(t, "NOTES", StripReasoningTags("<think>\n</think>\nNOTES\n"))
	// Brackets are left alone.
	assert.Equal(t, "[a] b", StripReasoningTags("[a]  b"))
}

func TestExtractFinalAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"text after closing tag", "<think>reasoning here</think>\nThe answer is 4.", "The answer is 4."},
		{"last closing tag wins", "<think>a</think>b<think>c</think> d ", "d"},
		{
			"last sentence of last paragraph",
			"First I consider it. Then I compute.\n\nSo it is 4. The answer is four.",
			"The answer is four.",
		},
		{"only reasoning", "<think>only reasoning</think>", "only reasoning"},
		{"single sentence", "Paris", "Paris"},
		{"oversized last paragraph skipped", "Final bit.\n\n" + strings.Repeat("a", 1001), "Final bit."},
		{"paragraph of 1000 runes skipped", "Final bit.\n\n" + strings.Repeat("a", 1000), "Final bit."},
		{"paragraph under 1000 runes kept", "Final bit.\n\n" + strings.Repeat("a", 999), strings.Repeat("a", 999)},
		{"every paragraph oversized", strings.Repeat("a", 1000) + "\n\n" + strings.Repeat("b", 1000),
			strings.Repeat("a", 1000) + " " + strings.Repeat("b", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFinalAnswer(tt.in))
		})
	}
}
