// Package jsonfile reads and writes whole JSON documents on disk.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

const defaultPerm fs.FileMode = 0o644

// ErrCorrupted is returned by Load when the file exists but does not hold a valid document.
var ErrCorrupted = errors.New("corrupted json document")

// Load decodes the JSON document stored at path into v.
// A missing or empty file leaves v untouched and is not an error.
func Load(path string, v any) error {
	const op = "jsonfile.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("%s: failed to read file: %w", op, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w: %s: %v", op, ErrCorrupted, path, err)
	}

	return nil
}

// Save writes v to path as indented JSON. The previous content is replaced
// atomically: readers see either the old or the new document, never a mix.
func Save(path string, v any) error {
	const op = "jsonfile.Save"

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to encode document: %w", op, err)
	}

	if err := renameio.WriteFile(path, data, defaultPerm); err != nil {
		return fmt.Errorf("%s: failed to write file: %w", op, err)
	}

	return nil
}
