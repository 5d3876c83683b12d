package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"astrocat/internal/pkg/storage"
)

// Service is the chunk store: it tracks in-progress upload sessions and
// materializes completed files through the assembler.
type Service struct {
	registry *Registry
	store    *storage.Store
}

func NewService(registry *Registry, store *storage.Store) *Service {
	return &Service{registry: registry, store: store}
}

// InitResult is what Init hands back to the handler.
type InitResult struct {
	SessionID string
}

// Init opens a new upload session and its private fragment directory.
func (s *Service) Init(fileName string, fileSize int64, mimeType, category, fileID string, totalChunks int) (*InitResult, error) {
	cat, ok := ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	id := uuid.New().String()
	dir, err := s.store.SessionDir(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.registry.Put(&Session{
		ID:           id,
		FileName:     fileName,
		FileSize:     fileSize,
		MimeType:     mimeType,
		Category:     cat,
		FileID:       fileID,
		TotalChunks:  totalChunks,
		received:     make(map[int]bool),
		ChunkDir:     dir,
		CreatedAt:    now,
		LastActivity: now,
	})

	return &InitResult{SessionID: id}, nil
}

// PutChunk writes one fragment keyed by index. Out-of-order and duplicate
// indices are accepted; a duplicate overwrites its fragment (last write
// wins) without inflating the received count.
func (s *Service) PutChunk(sessionID string, chunkIndex int, chunk io.Reader) (received, total int, err error) {
	err = s.registry.Update(sessionID, func(sess *Session) error {
		path := filepath.Join(sess.ChunkDir, fragmentName(chunkIndex))
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", chunkIndex, err)
		}
		if _, err := io.Copy(out, chunk); err != nil {
			out.Close()
			os.Remove(path)
			return fmt.Errorf("failed to write chunk %d: %w", chunkIndex, err)
		}
		if err := out.Close(); err != nil {
			os.Remove(path)
			return fmt.Errorf("failed to write chunk %d: %w", chunkIndex, err)
		}

		sess.received[chunkIndex] = true
		sess.LastActivity = time.Now()
		received = sess.receivedCount()
		total = sess.TotalChunks
		return nil
	})
	return received, total, err
}

// CompleteResult reports the assembled file for the complete response.
type CompleteResult struct {
	FilePath string
	Category Category
	FileID   string
	FileName string
	MimeType string
}

// Complete assembles the session's fragments into one file under the
// category destination, purges the fragment directory and retires the
// session. Fails with IncompleteUploadError when chunks are missing.
func (s *Service) Complete(sessionID string) (*CompleteResult, error) {
	var res *CompleteResult
	err := s.registry.Update(sessionID, func(sess *Session) error {
		if got := sess.receivedCount(); got != sess.TotalChunks {
			return &IncompleteUploadError{Received: got, Total: sess.TotalChunks}
		}

		destDir, err := s.store.CategoryDir(string(sess.Category))
		if err != nil {
			return err
		}
		destPath := filepath.Join(destDir, s.store.UniqueName(sess.FileName))

		if err := assemble(sess.ChunkDir, sess.TotalChunks, destPath); err != nil {
			return err
		}

		if err := os.RemoveAll(sess.ChunkDir); err != nil {
			log.Printf("upload_cleanup_warning session=%s dir=%s error=%v", sess.ID, sess.ChunkDir, err)
		}

		res = &CompleteResult{
			FilePath: destPath,
			Category: sess.Category,
			FileID:   sess.FileID,
			FileName: sess.FileName,
			MimeType: sess.MimeType,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.registry.Delete(sessionID)
	return res, nil
}

// Sweep expires sessions idle past ttl and removes their fragment
// directories. Returns the number of sessions removed.
func (s *Service) Sweep(ttl time.Duration) int {
	expired := s.registry.TakeExpired(time.Now().Add(-ttl))
	for _, sess := range expired {
		if err := os.RemoveAll(sess.ChunkDir); err != nil {
			log.Printf("upload_sweep_warning session=%s dir=%s error=%v", sess.ID, sess.ChunkDir, err)
		}
	}
	if len(expired) > 0 {
		log.Printf("upload_sweep expired=%d active=%d", len(expired), s.registry.Len())
	}
	return len(expired)
}

// ScheduleSweep runs Sweep every interval until ctx is done.
func (s *Service) ScheduleSweep(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ttl)
			case <-ctx.Done():
				return
			}
		}
	}()
	log.Printf("upload sweeper started interval=%s ttl=%s", interval, ttl)
}
