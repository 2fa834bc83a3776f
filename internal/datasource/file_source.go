package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const fileSourceName = "file"

// FileSlateSource reads the slate JSON written by the upstream fetcher
type FileSlateSource struct {
	path   string
	logger *logrus.Logger
}

// NewFileSlateSource creates a source reading from path
func NewFileSlateSource(path string, logger *logrus.Logger) *FileSlateSource {
	return &FileSlateSource{path: path, logger: logger}
}

// Name returns the name of the source
func (s *FileSlateSource) Name() string {
	return fileSourceName
}

// FetchSlate reads and decodes the slate file
func (s *FileSlateSource) FetchSlate(ctx context.Context) (*Slate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewSourceError(fileSourceName, ErrCodeNotFound, s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open slate file: %w", err)
	}
	defer f.Close()

	slate, err := decodeSlate(f)
	if err != nil {
		return nil, NewSourceError(fileSourceName, ErrCodeInvalidData, s.path, err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"path":      s.path,
			"subjects":  len(slate.Subjects),
			"opponents": len(slate.Opponents),
			"offers":    len(slate.Offers),
		}).Debug("Slate loaded")
	}

	return slate, nil
}

func decodeSlate(r io.Reader) (*Slate, error) {
	var slate Slate
	if err := json.NewDecoder(r).Decode(&slate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &slate, nil
}
