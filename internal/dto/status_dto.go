package dto

// StatusEvent is the wire payload pushed over the status channel and stored
// under the document's status key. Status is one of: processing, analyzing,
// enhancing, completed, failed. Progress is 0-100.
type StatusEvent struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Message    string `json:"message,omitempty"`
}
