package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fortuna/victoria/internal/model"
)

// Artifact file names for a group label, shared with the artifacts API.
func MatchesFile(label string) string {
	return fmt.Sprintf("matches_%s.json", model.SafeLabel(label))
}

func EnrichedFile(label string) string {
	return fmt.Sprintf("matches_%s_enriched.json", model.SafeLabel(label))
}

func StandingsFile(label string) string {
	return fmt.Sprintf("standings_%s.json", model.SafeLabel(label))
}

func LeaderboardFile(label string) string {
	return fmt.Sprintf("elo_%s.json", model.SafeLabel(label))
}

// writeArtifact persists v as indented JSON using the same temp+rename
// discipline as the resource cache, so readers never observe partial files.
func writeArtifact(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	dst := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
