package filestorage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStorage reads and writes line-oriented files under a base directory.
type LocalStorage struct {
	basePath string // The directory holding every data file
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath string, logger zerolog.Logger) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "."
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		logger:   logger,
	}, nil
}

// Path returns the full filesystem path of a file managed by this storage.
func (ls *LocalStorage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ls.basePath, name)
}

// ReadLines calls fn for every line of the named file. A missing file reads as empty.
func (ls *LocalStorage) ReadLines(name string, fn func(lineNo int, line string) error) error {
	path := ls.Path(name)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ls.logger.Debug().Str("path", path).Msg("Data file does not exist yet, treating as empty")
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := fn(lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Rewrite replaces the named file with whatever write produces.
// Content goes to a temp file first and is renamed over the target.
func (ls *LocalStorage) Rewrite(name string, write func(w io.Writer) error) error {
	path := ls.Path(name)
	tmp := path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if err := writeAndClose(file, write); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	ls.logger.Debug().Str("path", path).Msg("File rewritten")
	return nil
}

// Append adds whatever write produces to the end of the named file.
func (ls *LocalStorage) Append(name string, write func(w io.Writer) error) error {
	path := ls.Path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}

	if err := writeAndClose(file, write); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}

	ls.logger.Debug().Str("path", path).Msg("File appended")
	return nil
}

// OpenAppend opens the named file for appending and leaves it open for the caller.
func (ls *LocalStorage) OpenAppend(name string) (*os.File, error) {
	path := ls.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return file, nil
}

func writeAndClose(file *os.File, write func(w io.Writer) error) error {
	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		_ = file.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
