package thumbcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
	"github.com/JoshuaHockley/rlens/internal/logger"
)

// Artifact describes one cached thumbnail on disk.
type Artifact struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the artifacts currently in the store, oldest first.
// Temp files from in-flight writes are skipped.
func (s *Store) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Key:     strings.TrimSuffix(name, artifactExt),
			Path:    filepath.Join(s.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].ModTime.Before(artifacts[j].ModTime)
	})
	return artifacts, nil
}

// TotalSize returns the combined size of all artifacts in the store.
func (s *Store) TotalSize() (bytesize.ByteSize, error) {
	artifacts, err := s.List()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, a := range artifacts {
		total += a.Size
	}
	return bytesize.ByteSize(total), nil
}

// Prune removes the oldest artifacts until the store fits within its
// size cap. A cap of 0 means unlimited and prunes nothing. Returns the
// number of bytes freed.
func (s *Store) Prune() (int64, error) {
	if s.maxSize == 0 {
		return 0, nil
	}
	return s.PruneTo(s.maxSize)
}

// PruneTo removes the oldest artifacts until the store's total size is
// at most limit. Returns the number of bytes freed.
func (s *Store) PruneTo(limit bytesize.ByteSize) (int64, error) {
	artifacts, err := s.List()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, a := range artifacts {
		total += a.Size
	}

	var freed int64
	for _, a := range artifacts {
		if total-freed <= int64(limit) {
			break
		}
		if err := os.Remove(a.Path); err != nil {
			logger.Warn("failed to prune artifact",
				logger.KeyArtifact, a.Path, logger.KeyError, err)
			continue
		}
		freed += a.Size
	}

	if freed > 0 {
		logger.Info("pruned thumbnail cache",
			logger.KeySize, freed, "limit", limit.String())
		s.metrics.RecordPruned(freed)
	}
	return freed, nil
}
