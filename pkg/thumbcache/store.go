// Package thumbcache implements the content-addressed on-disk store
// for generated thumbnails.
//
// Artifacts are PNG files named by a digest of the canonical source
// path, so equivalent paths (relative, symlinked) resolve to the same
// artifact. An artifact is reused only while it is newer than its
// source; staleness detection is best-effort and leans towards
// availability: if timestamps cannot be read, the artifact is assumed
// fresh.
package thumbcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/metrics"
)

// ErrMiss is returned by Open when no fresh artifact exists for the
// source: either nothing is cached, or the cached artifact is stale.
var ErrMiss = errors.New("thumbnail not cached")

// artifactExt is the extension of cache artifacts. Thumbnails are
// always stored as PNG regardless of the source format.
const artifactExt = ".png"

// Store is an on-disk thumbnail cache rooted at a single directory.
//
// Store is safe for use from a single goroutine at a time per source;
// the pipeline's single worker is the only writer during operation.
type Store struct {
	dir     string
	maxSize bytesize.ByteSize // 0 = unlimited
	metrics *metrics.CacheMetrics
}

// New opens (creating if needed) a thumbnail store rooted at dir.
// maxSize of 0 disables the size cap. m may be nil.
func New(dir string, maxSize bytesize.ByteSize, m *metrics.CacheMetrics) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %q: %w", dir, err)
	}
	return &Store{dir: dir, maxSize: maxSize, metrics: m}, nil
}

// Dir returns the cache root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Canonicalize resolves a source path to its canonical absolute form:
// symlinks resolved, relative components removed. Cache keys must be
// derived from canonical paths or equivalent paths would produce
// divergent keys.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return resolved, nil
}

// Key derives the cache key for a canonical source path: the SHA-256
// digest of the path bytes, hex encoded.
//
// The path must be absolute; a relative path here means Canonicalize
// was skipped, which is a caller bug.
func Key(canonical string) string {
	if !filepath.IsAbs(canonical) {
		panic("thumbcache: key derived from a non-absolute path")
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ArtifactPath returns the on-disk path of the artifact for a
// canonical source path, whether or not it exists.
func (s *Store) ArtifactPath(canonical string) string {
	return filepath.Join(s.dir, Key(canonical)+artifactExt)
}

// Open returns a reader for a fresh cached thumbnail of the source.
//
// Returns ErrMiss when no artifact exists or the artifact is stale.
// The caller must close the returned reader.
func (s *Store) Open(canonical string) (io.ReadCloser, error) {
	artifact := s.ArtifactPath(canonical)

	info, err := os.Stat(artifact)
	if err != nil {
		s.metrics.RecordMiss()
		return nil, ErrMiss
	}

	if s.stale(artifact, canonical) {
		logger.Debug("cached thumbnail is stale",
			logger.KeyPath, canonical, logger.KeyArtifact, artifact)
		s.metrics.RecordStale()
		return nil, ErrMiss
	}

	f, err := os.Open(artifact)
	if err != nil {
		// Raced with removal; treat as a miss.
		s.metrics.RecordMiss()
		return nil, ErrMiss
	}

	logger.Debug("thumbnail cache hit",
		logger.KeyPath, canonical, logger.KeySize, info.Size())
	s.metrics.RecordHit()
	return f, nil
}

// stale reports whether the source has been modified since the
// artifact was written. Indeterminate timestamps count as fresh.
func (s *Store) stale(artifact, src string) bool {
	artInfo, err := os.Stat(artifact)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	return !srcInfo.ModTime().Before(artInfo.ModTime())
}

// Put writes a thumbnail artifact for the source, replacing any
// previous one. The write is atomic: data lands in a temp file that is
// renamed into place, so readers never observe partial artifacts.
func (s *Store) Put(canonical string, r io.Reader) (int64, error) {
	artifact := s.ArtifactPath(canonical)

	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp artifact: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("failed to write artifact for %q: %w", canonical, err)
	}

	if err := os.Rename(tmp, artifact); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("failed to publish artifact for %q: %w", canonical, err)
	}

	logger.Debug("thumbnail cached",
		logger.KeyPath, canonical, logger.KeyArtifact, artifact, logger.KeySize, n)
	s.metrics.RecordWrite(n)

	if s.maxSize > 0 {
		if _, err := s.Prune(); err != nil {
			logger.Warn("thumbnail cache prune failed", logger.KeyError, err)
		}
	}
	return n, nil
}

// Remove deletes the artifact for the source, if present.
func (s *Store) Remove(canonical string) error {
	err := os.Remove(s.ArtifactPath(canonical))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact for %q: %w", canonical, err)
	}
	return nil
}
