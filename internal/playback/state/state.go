// Package state persists a local snapshot of the play queue and position so
// the client can restore its queue UI when the server has no session record.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Dastari/librarian/internal/models"
)

const (
	// CurrentVersion is the current version of the snapshot format
	CurrentVersion = "1.0"
	// DefaultSnapshotFile is the default path for the snapshot file
	DefaultSnapshotFile = "./data/playback_state.json"
)

// Snapshot is the locally persisted playback state
type Snapshot struct {
	Version     string             `json:"version"`
	SavedAt     int64              `json:"savedAt"`
	ContentType models.ContentType `json:"contentType,omitempty"`
	ParentID    string             `json:"parentId,omitempty"`
	QueueItems  []models.QueueItem `json:"queueItems,omitempty"`
	QueueIndex  int                `json:"queueIndex"`
	Position    float64            `json:"position"`
	Shuffle     bool               `json:"shuffle"`
	Repeat      models.RepeatMode  `json:"repeat"`
	Volume      float64            `json:"volume"`
	IsMuted     bool               `json:"isMuted"`
}

// Store reads and writes snapshots at a fixed path
type Store struct {
	path string
}

// NewStore creates a snapshot store for the given path
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultSnapshotFile
	}
	return &Store{path: path}
}

// Load reads the snapshot file. A missing file yields (nil, nil).
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file at %q: %w", s.path, err)
	}

	var version struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &version); err != nil {
		return nil, fmt.Errorf("invalid snapshot file format: %w", err)
	}
	if version.Version != "" && version.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %s", version.Version)
	}

	snapshot := &Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snapshot, nil
}

// Save writes the snapshot atomically: temp file in the target directory,
// fsync, then rename.
func (s *Store) Save(snapshot Snapshot) error {
	snapshot.Version = CurrentVersion
	snapshot.SavedAt = time.Now().Unix()

	targetDir := filepath.Dir(s.path)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %q: %w", targetDir, err)
	}

	tmpFile, err := os.CreateTemp(targetDir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", targetDir, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		if _, err := os.Stat(tmpPath); err == nil {
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file to %q: %w", s.path, err)
	}
	return nil
}

// Clear removes the snapshot file. Missing files are not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	return nil
}
