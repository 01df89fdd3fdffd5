package sink

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"keyinvader/keylog"

	"github.com/alexflint/go-filemutex"
)

// FileSink appends every event to a plain text log. The file is opened, written,
// synced and closed on each event, so nothing is held open between key strokes.
type FileSink struct {
	path   string
	mux    *filemutex.FileMutex
	logger *slog.Logger
}

// NewFileSink writes the session banner and returns the sink. mux may be nil;
// when set it serialises appends with other processes writing the same log.
func NewFileSink(path string, mux *filemutex.FileMutex, startedAt time.Time, logger *slog.Logger) (*FileSink, error) {
	s := &FileSink{
		path:   path,
		mux:    mux,
		logger: logger,
	}
	if err := s.append(Banner(startedAt)); err != nil {
		return nil, fmt.Errorf("write banner: %w", err)
	}
	return s, nil
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Update(src keylog.Source) error {
	e := src.Current()
	if err := s.append(e.Line()); err != nil {
		s.logger.Error("append event", slog.String("path", s.path), slog.String("kind", string(e.Kind)), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (s *FileSink) append(text string) (err error) {
	if s.mux != nil {
		if err := s.mux.Lock(); err != nil {
			return fmt.Errorf("lock %s: %w", s.path, err)
		}
		defer s.mux.Unlock()
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		return err
	}
	return f.Sync()
}
