package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteResult describes the outcome of WriteDefault.
type WriteResult int

const (
	WriteCreated WriteResult = iota
	WriteAlreadyExists
)

// WriteDefault writes DefaultFileContents to path unless a file is already
// there. The write goes through a temp file and rename so a partially
// written config is never observed.
func WriteDefault(path string) (WriteResult, error) {
	if path == "" {
		return 0, errors.New("no config path: home directory unknown")
	}
	if _, err := os.Stat(path); err == nil {
		return WriteAlreadyExists, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("checking %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := writeAtomic(path, []byte(DefaultFileContents)); err != nil {
		return 0, err
	}
	return WriteCreated, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".config-*.toml.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied writing to %s", dir)
		}
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up the temp file on any error.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	tmpPath = ""
	return nil
}
