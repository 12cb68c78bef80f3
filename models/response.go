package models

type IngestNoteResponse struct {
	Message string `json:"message"`
	Note    *Note  `json:"note,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatResult is the answer to one query. MatchedNotes is nil for GENERAL
// queries and a (possibly empty) list for NOTES queries.
type ChatResult struct {
	Intent       Intent `json:"intent"`
	Answer       string `json:"answer"`
	MatchedNotes []Note `json:"matchedNotes"`
}
