package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const metadataFileName = ".wsm.yaml"

type Metadata struct {
	Name      string    `yaml:"name"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

func LoadMetadata(wsDir string) (Metadata, error) {
	if strings.TrimSpace(wsDir) == "" {
		return Metadata{}, fmt.Errorf("workspace dir is required")
	}
	data, err := os.ReadFile(metadataPath(wsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

func SaveMetadata(wsDir string, meta Metadata) error {
	if strings.TrimSpace(wsDir) == "" {
		return fmt.Errorf("workspace dir is required")
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath(wsDir), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// touchMetadata records a materialize run, keeping the original creation
// time.
func touchMetadata(wsDir, name string, now time.Time) error {
	meta, err := LoadMetadata(wsDir)
	if err != nil {
		meta = Metadata{}
	}
	meta.Name = name
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	return SaveMetadata(wsDir, meta)
}

func metadataPath(wsDir string) string {
	return filepath.Join(wsDir, metadataFileName)
}
