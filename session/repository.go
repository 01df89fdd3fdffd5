package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

type Repository interface {
	Save(s Session) error
	Get(startedAt time.Time) (*Session, error)
	ListByMonth(yearMonth string) ([]Session, error)
}

func NewRepository(db *buntdb.DB) Repository {
	return &repository{db: db}
}

type repository struct {
	db *buntdb.DB
}

const (
	keyPrefix = "session:"
	keyLayout = "2006-01-02T15:04:05.000000000"
)

func sessionKey(startedAt time.Time) string {
	return keyPrefix + startedAt.Local().Format(keyLayout)
}

func (r *repository) Save(s Session) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		bs, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(sessionKey(s.StartedAt), string(bs), nil)
		return err
	})
}

func (r *repository) Get(startedAt time.Time) (*Session, error) {
	var s *Session
	err := r.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(sessionKey(startedAt))
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		s = &Session{}
		return json.Unmarshal([]byte(v), s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) ListByMonth(yearMonth string) ([]Session, error) {
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return nil, fmt.Errorf("invalid month %q, ex: 2024-03", yearMonth)
	}

	var ss []Session
	err := r.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(keyPrefix+yearMonth+"-*", func(key, value string) bool {
			var s Session
			if decodeErr = json.Unmarshal([]byte(value), &s); decodeErr != nil {
				decodeErr = fmt.Errorf("decode %s: %w", key, decodeErr)
				return false
			}
			ss = append(ss, s)
			return true
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}
