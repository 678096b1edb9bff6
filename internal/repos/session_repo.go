package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRepo stores the upstream cookies a browser session holds, one row
// per identity kind.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// Cookies returns the stored cookies, or an empty map when none are held.
func (r *SessionRepo) Cookies(sid, kind string) (map[string]string, error) {
	var raw string
	err := r.db.Get(&raw, `SELECT cookies_json FROM sessions WHERE sid_hash=? AND kind=?`, HashSID(sid), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode session cookies: %w", err)
	}
	return out, nil
}

// Save replaces the stored cookies. An empty map removes the row.
func (r *SessionRepo) Save(sid, kind string, cookies map[string]string) error {
	if len(cookies) == 0 {
		return r.Clear(sid, kind)
	}
	b, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`INSERT INTO sessions(sid_hash,kind,cookies_json,last_seen)
                        VALUES(?,?,?,CURRENT_TIMESTAMP)
                        ON CONFLICT(sid_hash,kind) DO UPDATE SET cookies_json=excluded.cookies_json,last_seen=CURRENT_TIMESTAMP`,
		HashSID(sid), kind, string(b))
	return err
}

func (r *SessionRepo) Touch(sid, kind string) error {
	_, err := r.db.Exec(`UPDATE sessions SET last_seen=CURRENT_TIMESTAMP WHERE sid_hash=? AND kind=?`, HashSID(sid), kind)
	return err
}

func (r *SessionRepo) Clear(sid, kind string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE sid_hash=? AND kind=?`, HashSID(sid), kind)
	return err
}

// PurgeIdle drops sessions not seen within maxIdle.
func (r *SessionRepo) PurgeIdle(maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxIdle).Format("2006-01-02 15:04:05")
	res, err := r.db.Exec(`DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
