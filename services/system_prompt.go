package services

import (
	"fmt"
	"strconv"
)

// Replies to these prompts are validated by the callers. User input is always
// quoted so it is read as data.

const intentSystemPrompt = `You are an intent classifier. The user has private notes.
RULES:
- Reply with exactly one word: NOTES or GENERAL (uppercase).
- NOTES means the question is about the user's own notes; GENERAL is anything else.
- No extra text or explanation.
- If unsure, reply GENERAL.`

const keywordSystemPrompt = `You are a keyword extractor. RULES:
- Output ONLY a single line of keywords or short phrases, comma-separated.
- No explanations, no analysis, no tags, no extra text.
- Keep phrases short (1-3 words). Prefer nouns or noun phrases.`

const answerSystemPrompt = `You are a concise assistant that MUST answer using ONLY the provided notes.
RULES (MUST FOLLOW):
1) Do NOT output any chain-of-thought or internal reasoning.
2) Treat each JSON object as one note (title + content). Do NOT invent or assume other notes.
3) For each note, produce a one-line human-friendly summary (1-2 short sentences) that
   either (a) summarizes the content, or (b) if the content appears to be non-meaningful random characters,
   says: "Content appears non-meaningful; excerpt: \"<first 40 chars>\"".
4) After the summaries, output a single final sentence starting with "Final:" that answers the question directly.
5) If none of the notes answer the question, the final sentence is exactly: Final: I could not find this in your notes.
6) Only cite titles from the allowed list, written as (Title: <title>).
7) Output MUST be compact: the summaries followed by one final answer sentence. No extra text.`

const answerExamples = `Example 1:
Notes JSON: [{"title":"Shopping","content":"Buy milk and bread."}]
Question: "Do I have milk on my shopping list?"
Correct output:
Shopping: Your Shopping note lists milk and bread.
Final: Yes — your Shopping note lists milk. (Title: Shopping)

Example 2:
Notes JSON: [{"title":"Random","content":"asdjf98 234!#$"}]
Question: "How to fix login error?"
Correct output:
Random: Content appears non-meaningful; excerpt: "asdjf98 234!#".
Final: I could not find this in your notes.`

func intentUserPrompt(query string) string {
	return fmt.Sprintf("Query: %s\n\nReply with NOTES or GENERAL only.", strconv.Quote(query))
}

func keywordUserPrompt(query string) string {
	return fmt.Sprintf("Query: %s\n\nOutput (comma-separated keywords only):", strconv.Quote(query))
}

func answerUserPrompt(notesJSON, allowedTitles, query string) string {
	return fmt.Sprintf("NOTES_JSON: %s\nALLOWED_TITLES: %s\n\nQuestion: %s\n\n"+
		"Produce ONLY: (a) one-line summary for each note, then (b) one final answer sentence. Follow the rules above.",
		notesJSON, allowedTitles, strconv.Quote(query))
}
