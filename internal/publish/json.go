package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/navtrend/navtrend/internal/domain"
)

// JSONFile publishes the fund list as an indented JSON array at Path.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a JSON file publisher.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Encode renders funds in the published format: a 2-space indented array
// followed by a newline. Equal input always yields equal bytes.
func Encode(funds []domain.Fund) ([]byte, error) {
	if funds == nil {
		funds = []domain.Fund{}
	}
	data, err := json.MarshalIndent(funds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling funds: %w", err)
	}
	return append(data, '\n'), nil
}

// Publish writes the file atomically, creating parent directories as needed.
func (j *JSONFile) Publish(_ context.Context, funds []domain.Fund) error {
	data, err := Encode(funds)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(j.Path, data); err != nil {
		return err
	}
	slog.Info("publish: json written", "path", j.Path, "funds", len(funds), "bytes", len(data))
	return nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpName, path, err)
	}
	return nil
}
