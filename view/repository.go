package view

import (
	"keyinvader/session"
	"time"
)

type Viewer interface {
	Do(yearMonth string) error
}

type ViewRepository interface {
	ListSessions(yearMonth string) (sessionsForView, error)
}

type viewRepository struct {
	sessionRepo session.Repository
}

func NewViewRepository(sessionRepo session.Repository) ViewRepository {
	return &viewRepository{sessionRepo}
}

func (r *viewRepository) ListSessions(yearMonth string) (sessionsForView, error) {
	if yearMonth == "" {
		yearMonth = time.Now().Format("2006-01")
	}
	ss, err := r.sessionRepo.ListByMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	return sessionsForView(ss), nil
}

type sessionsForView []session.Session

func (ss sessionsForView) Totals() (presses, releases int, tracked time.Duration) {
	for _, s := range ss {
		presses += s.Presses
		releases += s.Releases
		tracked += s.Duration()
	}
	return presses, releases, tracked
}
