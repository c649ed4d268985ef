package core

import (
	"fmt"
	"time"
)

// Document lifecycle states.
const (
	StatusPending DocumentStatus = "PENDING"
	StatusParsed  DocumentStatus = "PARSED"
	StatusFailed  DocumentStatus = "FAILED"
	StatusIndexed DocumentStatus = "INDEXED"
)

type (
	DocumentStatus string

	// Document is the bookkeeping record for one uploaded statement.
	Document struct {
		ID           string
		Filename     string
		Checksum     string // SHA-256 of the uploaded bytes
		Status       DocumentStatus
		TxCount      int
		ErrorMessage string
		UploadedAt   time.Time
		ProcessedAt  *time.Time
	}
)

// DuplicateDocumentError is returned when an upload's checksum matches
// an already ingested statement.
type DuplicateDocumentError struct {
	Filename string
	Checksum string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("document already ingested as %q (checksum %.12s)", e.Filename, e.Checksum)
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusParsed, StatusFailed, StatusIndexed:
		return true
	}
	return false
}
