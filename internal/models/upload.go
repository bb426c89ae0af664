package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status int

// pending is the default status of a freshly uploaded file
const (
	StatusUnknown    Status = iota
	StatusPending           // 1
	StatusProcessing        // 2
	StatusParsed            // 3
	StatusFailed            // 4
)

// UploadRecord is one uploaded resume file waiting for, or done with, ingestion.
type UploadRecord struct {
	ID uuid.UUID `json:"id" db:"id"`

	OwnerID int64 `json:"user_id" db:"user_id"`

	StorageKey string `json:"-" db:"storage_key"`

	Filename string `json:"filename" db:"filename"`

	ContentType string `json:"content_type" db:"content_type"`

	Status Status `json:"status" db:"status"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	// set once the upload has been parsed
	ResumeID *int64 `json:"resume_id,omitempty" db:"resume_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusParsed:
		return "parsed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusParsed || s == StatusFailed
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "parsed":
		return StatusParsed, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusUnknown, fmt.Errorf("invalid upload status %q", s)
	}
}
