package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func EncodeJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteJSON writes r to path, creating missing parent directories.
func WriteJSON(r *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := EncodeJSON(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
