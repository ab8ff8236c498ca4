package services

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-helper/api/internal/models"
)

func TestStoreIdenticalContentGetsDistinctIDs(t *testing.T) {
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 same bytes")
	first, err := storage.Store(content, "cv.pdf", models.KindResume)
	require.NoError(t, err)
	second, err := storage.Store(content, "cv.pdf", models.KindResume)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Path, second.Path)

	for _, stored := range []*models.StoredFile{first, second} {
		onDisk, err := os.ReadFile(stored.Path)
		require.NoError(t, err)
		assert.Equal(t, content, onDisk)
		assert.Equal(t, "cv.pdf", stored.OriginalFilename)
	}
}

func TestStorePlacesFilesByKind(t *testing.T) {
	base := t.TempDir()
	storage, err := NewStorageService(base)
	require.NoError(t, err)

	resume, err := storage.Store([]byte("pdf"), "resume.PDF", models.KindResume)
	require.NoError(t, err)
	audio, err := storage.Store([]byte("wav"), "clip.mp3", models.KindAudio)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "resumes"), filepath.Dir(resume.Path))
	assert.Equal(t, filepath.Join(base, "audio"), filepath.Dir(audio.Path))
	assert.Equal(t, resume.ID.String()+".pdf", filepath.Base(resume.Path))
	assert.Equal(t, audio.ID.String()+".mp3", filepath.Base(audio.Path))
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		kind     models.FileKind
		want     string
	}{
		{"plain pdf", "cv.pdf", models.KindResume, ".pdf"},
		{"upper case", "CV.PDF", models.KindResume, ".pdf"},
		{"audio webm", "meeting.webm", models.KindAudio, ".webm"},
		{"no extension audio", "recording", models.KindAudio, ".wav"},
		{"no extension resume", "resume", models.KindResume, ".pdf"},
		{"traversal", "../../etc/passwd", models.KindResume, ".pdf"},
		{"windows traversal", `..\..\evil.exe`, models.KindAudio, ".exe"},
		{"weird suffix", "cv.p d f", models.KindResume, ".pdf"},
		{"overlong suffix", "clip.abcdefghijklm", models.KindAudio, ".wav"},
		{"empty", "", models.KindAudio, ".wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extensionFor(tt.filename, tt.kind))
		})
	}
}

func TestStoreNeverEscapesBaseDir(t *testing.T) {
	base := t.TempDir()
	storage, err := NewStorageService(base)
	require.NoError(t, err)

	stored, err := storage.Store([]byte("x"), "../../../../tmp/owned.pdf", models.KindResume)
	require.NoError(t, err)

	rel, err := filepath.Rel(base, stored.Path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("resumes", stored.ID.String()+".pdf"), rel)
}

func TestStoreConcurrentUploads(t *testing.T) {
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	const uploads = 32
	var wg sync.WaitGroup
	ids := make(chan string, uploads)

	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, err := storage.Store([]byte("same"), "a.wav", models.KindAudio)
			if assert.NoError(t, err) {
				ids <- stored.ID.String()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, uploads)
}

func TestEnsureDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")
	storage, err := NewStorageService(base)
	require.NoError(t, err)

	require.NoError(t, storage.EnsureDirs())
	assert.DirExists(t, filepath.Join(base, "resumes"))
	assert.DirExists(t, filepath.Join(base, "audio"))
}

func TestStoreFailureIsStorageError(t *testing.T) {
	base := t.TempDir()
	// a regular file where the resumes directory should be
	require.NoError(t, os.WriteFile(filepath.Join(base, "resumes"), []byte("x"), 0o644))

	storage, err := NewStorageService(base)
	require.NoError(t, err)

	_, err = storage.Store([]byte("pdf"), "cv.pdf", models.KindResume)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
}
