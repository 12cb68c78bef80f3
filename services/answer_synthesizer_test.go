package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github/itish2003/notechat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shoppingNote = models.Note{ID: "n1", UserID: "u1", Title: "Shopping", Content: "Buy milk and bread."}

const shoppingFallback = "Yes — you have note(s): Shopping. Would you like to open them?"

func TestSynthesize_NoNotesSkipsBackend(t *testing.T) {
	gen := newScriptedGen(map[string]string{"answer": "should not be used"})
	s := NewAnswerSynthesizer(gen, nopLog(), false)

	assert.Equal(t, NotFoundAnswer, s.Synthesize(context.Background(), "anything", nil))
	assert.Equal(t, NotFoundAnswer, s.Synthesize(context.Background(), "anything", []models.Note{}))
	assert.Zero(t, gen.callCount("answer"))
}

func TestSynthesize_StripsFinalMarker(t *testing.T) {
	gen := newScriptedGen(map[string]string{
		"answer": "Shopping: Your Shopping note lists milk and bread.\n\nFinal: Yes, your Shopping note lists milk. (Title: Shopping)",
	})
	s := NewAnswerSynthesizer(gen, nopLog(), false)

	got := s.Synthesize(context.Background(), "Do I have milk on my shopping list?", []models.Note{shoppingNote})
	assert.Equal(t,
		"Shopping: Your Shopping note lists milk and bread.\nYes, your Shopping note lists milk. (Title: Shopping)",
		got)
}

func TestSynthesize_WithoutFinalMarker(t *testing.T) {
	gen := newScriptedGen(map[string]string{"answer": "  Your Shopping note lists milk.  "})
	s := NewAnswerSynthesizer(gen, nopLog(), false)

	got := s.Synthesize(context.Background(), "milk?", []models.Note{shoppingNote})
	assert.Equal(t, "Your Shopping note lists milk.", got)
}

func TestSynthesize_GuardrailRejectsLeakedReasoning(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"let me", "Let me think about this... the note says milk"},
		{"analysis", "Analysis: the note mentions milk"},
		{"step", "Step 1: read the note"},
		{"empty", ""},
		{"only artifacts", "[internal] {\"x\": 1}"},
		{"only final marker", "Final:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newScriptedGen(map[string]string{"answer": tt.reply})
			s := NewAnswerSynthesizer(gen, nopLog(), false)

			got := s.Synthesize(context.Background(), "milk?", []models.Note{shoppingNote})
			assert.Equal(t, shoppingFallback, got)
		})
	}
}

func TestSynthesize_BackendFailureFallsBack(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, []Message) (string, error) {
		return "", errors.New("timeout")
	})
	s := NewAnswerSynthesizer(gen, nopLog(), false)

	notes := []models.Note{
		shoppingNote,
		{ID: "n2", Title: "Work", Content: "Standup at 9."},
		{ID: "n3", Title: "Shopping", Content: "Eggs."},
		{ID: "n4", Title: "  ", Content: "no title"},
	}
	got := s.Synthesize(context.Background(), "milk?", notes)
	assert.Equal(t, "Yes — you have note(s): Shopping, Work, Untitled. Would you like to open them?", got)
}

func TestSynthesize_StrictGrounding(t *testing.T) {
	reply := "Final: Your Unrelated note says so. (Title: Unrelated)"

	strict := NewAnswerSynthesizer(newScriptedGen(map[string]string{"answer": reply}), nopLog(), true)
	assert.Equal(t, shoppingFallback,
		strict.Synthesize(context.Background(), "milk?", []models.Note{shoppingNote}))

	lenient := NewAnswerSynthesizer(newScriptedGen(map[string]string{"answer": reply}), nopLog(), false)
	assert.Equal(t, "Your Unrelated note says so. (Title: Unrelated)",
		lenient.Synthesize(context.Background(), "milk?", []models.Note{shoppingNote}))
}

func TestSynthesize_PromptCarriesNotesAsJSON(t *testing.T) {
	gen := newScriptedGen(map[string]string{"answer": "ok"})
	s := NewAnswerSynthesizer(gen, nopLog(), false)

	long := strings.Repeat("x", 1600)
	notes := []models.Note{
		{ID: "a", Title: "", Content: "<b>bold</b> & more"},
		{ID: "b", Title: "Long", Content: long},
	}
	s.Synthesize(context.Background(), "what do I have?", notes)

	sent := gen.sent["answer"]
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Content, answerExamples)

	user := sent[1].Content
	assert.Contains(t, user, `{"title":"Untitled","content":"<b>bold</b> & more"}`)
	assert.Contains(t, user, `"content":"`+strings.Repeat("x", 1500)+`..."`)
	assert.NotContains(t, user, strings.Repeat("x", 1501))
	assert.Contains(t, user, `ALLOWED_TITLES: ["Untitled","Long"]`)
	assert.Contains(t, user, `Question: "what do I have?"`)
}

func TestIsAcceptableAnswer(t *testing.T) {
	notes := []models.Note{
		shoppingNote,
		{ID: "n2", Title: "", Content: "loose text"},
		{ID: "n3", Title: "Ünïcode title", Content: "unicode notes"},
	}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"no citation", "You need milk and bread.", true},
		{"matched title mentioned", "Your Shopping note lists milk.", true},
		{"matched title repeated", "Shopping, shopping: milk and bread.", true},
		{"non-ascii title mention", "Your Ünïcode title note covers it.", true},
		{"non-ascii title inside a longer word", "Your ÄÜnïcode title note covers it.", false},
		{"grounded citation keeps the title word", "Your Shopping note lists milk. (Title: Shopping)", false},
		{"case-insensitive grounded citation", "Milk is listed (title: shopping).", false},
		{"untitled note citation", "Some loose text. (Title: Untitled)", false},
		{"blank", "   ", false},
		{"unknown citation", "See (Title: Unrelated)", false},
		{"reasoning marker", "I think you need milk.", false},
		{"okay marker", "Okay, you need milk.", false},
		{"step by step", "Step by step: buy milk.", false},
		{"uncited title word", "Your note titled Groceries has eggs.", false},
		{"title word next to real title", "The title Shopping lists milk.", false},
		{"too long", strings.Repeat("a", 1001), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptableAnswer(tt.answer, notes))
		})
	}
}
