package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "shelfsort/internal/errors"
)

// EncodeJSON pretty-prints v with two-space indentation and a trailing
// newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path through a temp file and rename, so a failed
// run never leaves a partial file behind.
func WriteJSON(path string, v any) error {
	blob, err := EncodeJSON(v)
	if err != nil {
		return apperrors.Internal("encode output", err)
	}
	return writeAtomic(path, blob)
}

func writeAtomic(path string, blob []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Internal(fmt.Sprintf("create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Internal(fmt.Sprintf("write %s", path), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return apperrors.Internal(fmt.Sprintf("write %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Internal(fmt.Sprintf("write %s", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.Internal(fmt.Sprintf("write %s", path), err)
	}
	return nil
}
