package models

// Note is a single user note as read from the note store. The pipeline only
// reads notes; an empty Title or Content means the field was not set.
type Note struct {
	ID      string `json:"id"`
	UserID  string `json:"userId,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// GetAllNotesResponse is the structure for the response of the GET /notes endpoint.
type GetAllNotesResponse struct {
	Count int    `json:"count"`
	Notes []Note `json:"notes"`
}
