package models

import "github.com/google/uuid"

type FileKind string

const (
	KindResume FileKind = "resume"
	KindAudio  FileKind = "audio"
)

// StoredFile is an uploaded file persisted under a generated identifier.
type StoredFile struct {
	ID               uuid.UUID `json:"id"`
	Path             string    `json:"path"`
	OriginalFilename string    `json:"original_filename"`
	Kind             FileKind  `json:"kind"`
}
