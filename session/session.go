package session

import "time"

// Session summarises one tracking run. Only counters are kept, never keys.
type Session struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Presses   int        `json:"presses"`
	Releases  int        `json:"releases"`
	Reason    string     `json:"reason"`
	LogPath   string     `json:"log_path"`
}

func (s *Session) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
