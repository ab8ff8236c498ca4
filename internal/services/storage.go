package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/interview-helper/api/internal/models"
)

const defaultAudioExt = ".wav"
const defaultResumeExt = ".pdf"

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

type StorageService interface {
	Store(content []byte, originalFilename string, kind models.FileKind) (*models.StoredFile, error)
	EnsureDirs() error
}

type storageService struct {
	basePath string
}

func NewStorageService(basePath string) (StorageService, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}
	return &storageService{basePath: abs}, nil
}

func (s *storageService) EnsureDirs() error {
	for _, kind := range []models.FileKind{models.KindResume, models.KindAudio} {
		if err := os.MkdirAll(s.dirFor(kind), 0o755); err != nil {
			return wrapKind(ErrStorage, "create storage directory", err)
		}
	}
	return nil
}

func (s *storageService) Store(content []byte, originalFilename string, kind models.FileKind) (*models.StoredFile, error) {
	dir := s.dirFor(kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapKind(ErrStorage, "create storage directory", err)
	}

	id := uuid.New()
	filePath := filepath.Join(dir, id.String()+extensionFor(originalFilename, kind))

	// O_EXCL so a colliding id can never overwrite an earlier upload.
	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, wrapKind(ErrStorage, "create destination file", err)
	}
	if _, err := dst.Write(content); err != nil {
		dst.Close()
		return nil, wrapKind(ErrStorage, "write file", err)
	}
	if err := dst.Close(); err != nil {
		return nil, wrapKind(ErrStorage, "close file", err)
	}

	return &models.StoredFile{
		ID:               id,
		Path:             filePath,
		OriginalFilename: originalFilename,
		Kind:             kind,
	}, nil
}

func (s *storageService) dirFor(kind models.FileKind) string {
	switch kind {
	case models.KindAudio:
		return filepath.Join(s.basePath, "audio")
	default:
		return filepath.Join(s.basePath, "resumes")
	}
}

// extensionFor keeps only a short alphanumeric suffix of the client filename.
func extensionFor(originalFilename string, kind models.FileKind) string {
	base := filepath.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if safeExt.MatchString(ext) {
		return ext
	}
	if kind == models.KindAudio {
		return defaultAudioExt
	}
	return defaultResumeExt
}
