package models

// Category is one candidate classification option supplied by the caller.
// It is serialized as-is into the record's categories column.
type Category struct {
	ID   string `json:"id"`   // Caller-assigned identifier.
	Text string `json:"text"` // Human-readable label.
}
