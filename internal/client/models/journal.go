package models

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	EntryDate Date   `json:"entry_date"`
}
