package repos

import (
	"encoding/hex"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Browser sessions: upstream cookies held for each identity kind
CREATE TABLE IF NOT EXISTS sessions(
  sid_hash TEXT NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('admin','store_owner')),
  cookies_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(sid_hash, kind)
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);

-- Uploads staged by a form until submit or cancel
CREATE TABLE IF NOT EXISTS staged_files(
  id TEXT PRIMARY KEY,
  owner TEXT NOT NULL,
  form_key TEXT NOT NULL,
  slot TEXT NOT NULL,
  position INTEGER NOT NULL,
  filename TEXT NOT NULL,
  mime TEXT NOT NULL,
  size INTEGER NOT NULL CHECK (size >= 0),
  content BLOB NOT NULL,
  preview BLOB,
  preview_mime TEXT NOT NULL DEFAULT '',
  created_unix INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_staged_owner_form ON staged_files(owner, form_key);
CREATE INDEX IF NOT EXISTS idx_staged_created    ON staged_files(created_unix);
`
	_, err := db.Exec(schema)
	return err
}

// HashSID is how browser session ids are stored at rest.
func HashSID(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:])
}
