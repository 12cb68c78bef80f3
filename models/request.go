package models

type IngestNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Query string `json:"query"`
}
