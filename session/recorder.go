package session

import (
	"log/slog"
	"sync"
	"time"

	"keyinvader/keylog"

	"github.com/alexflint/go-filemutex"
)

// Recorder is a subscriber that keeps the running session summary up to date.
// The summary is stored when the session opens and again when it ends.
type Recorder struct {
	repo   Repository
	mux    *filemutex.FileMutex
	logger *slog.Logger
	clock  func() time.Time

	mu      sync.Mutex
	session Session
}

func NewRecorder(repo Repository, mux *filemutex.FileMutex, logger *slog.Logger, clock func() time.Time, startedAt time.Time, logPath string) (*Recorder, error) {
	if clock == nil {
		clock = time.Now
	}
	r := &Recorder{
		repo:    repo,
		mux:     mux,
		logger:  logger,
		clock:   clock,
		session: Session{StartedAt: startedAt, LogPath: logPath},
	}
	if err := r.save(r.session); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) Update(src keylog.Source) error {
	e := src.Current()

	r.mu.Lock()
	switch e.Kind {
	case keylog.KindKeyDown, keylog.KindKeyDownSpecial:
		r.session.Presses++
	case keylog.KindKeyUp, keylog.KindKeyUpSpecial:
		r.session.Releases++
	}
	if !e.Kind.Terminal() {
		r.mu.Unlock()
		return nil
	}
	endedAt := r.clock()
	r.session.EndedAt = &endedAt
	r.session.Reason = string(e.Kind)
	s := r.session
	r.mu.Unlock()

	if err := r.save(s); err != nil {
		r.logger.Error("save session", slog.String("err", err.Error()))
		return err
	}
	r.logger.Debug("session saved", slog.Int("presses", s.Presses), slog.Int("releases", s.Releases), slog.String("reason", s.Reason))
	return nil
}

func (r *Recorder) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *Recorder) save(s Session) error {
	if r.mux != nil {
		if err := r.mux.Lock(); err != nil {
			return err
		}
		defer r.mux.Unlock()
	}
	return r.repo.Save(s)
}
