package amqp

import (
	"encoding/json"
	"time"
)

// IndexDocumentMessage asks the index worker to embed one parsed
// document into the vector store. It carries only the document id; the
// worker fetches the transactions from storage.
type IndexDocumentMessage struct {
	DocumentID string    `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewIndexDocumentMessage creates an index request for a document.
func NewIndexDocumentMessage(documentID string) *IndexDocumentMessage {
	return &IndexDocumentMessage{
		DocumentID: documentID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *IndexDocumentMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IndexDocumentMessageFromJSON creates a message from JSON bytes
func IndexDocumentMessageFromJSON(data []byte) (*IndexDocumentMessage, error) {
	var msg IndexDocumentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
