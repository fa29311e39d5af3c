package query

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLines reads a newline-delimited query list.
// Blank and whitespace-only lines are skipped rather than rejected
func ReadLines(r io.Reader) ([]string, error) {
	var (
		lines   = make([]string, 0, 16)
		scanner = bufio.NewScanner(r)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read query list: %w", err)
	}

	return lines, nil
}

// FileSource reads the query list from a file, on every call.
// Blank lines are skipped (see ReadLines), every other line must be a directive
type FileSource struct {
	path string
}

// NewFileSource creates a new query list file source
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: path,
	}
}

func (s *FileSource) Lines(_ context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("unable to open query list: %w", err)
	}
	defer f.Close()

	return ReadLines(f)
}
