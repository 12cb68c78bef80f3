package models

// Intent labels a query as note-directed or general.
type Intent string

const (
	IntentNotes   Intent = "NOTES"
	IntentGeneral Intent = "GENERAL"
)
