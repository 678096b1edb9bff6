package repos

import (
	"database/sql"
	"errors"

	"elyukal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var ErrStagedNotFound = errors.New("staged file not found")

type StagingRepo struct{ db *sqlx.DB }

func NewStagingRepo(db *sqlx.DB) *StagingRepo { return &StagingRepo{db: db} }

// Insert stores f at the end of its slot and returns the assigned position.
func (r *StagingRepo) Insert(f domain.StagedFile) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var pos int
	if err := tx.Get(&pos, `SELECT COALESCE(MAX(position),0)+1 FROM staged_files WHERE owner=? AND form_key=? AND slot=?`,
		f.Owner, f.FormKey, f.Slot); err != nil {
		return 0, err
	}
	f.Position = pos
	if _, err := tx.NamedExec(`INSERT INTO staged_files(id,owner,form_key,slot,position,filename,mime,size,content,preview,preview_mime,created_unix)
        VALUES(:id,:owner,:form_key,:slot,:position,:filename,:mime,:size,:content,:preview,:preview_mime,:created_unix)`, f); err != nil {
		return 0, err
	}
	return pos, tx.Commit()
}

// List returns metadata (no content) for a form's staged files in slot order.
func (r *StagingRepo) List(owner, formKey string) ([]domain.StagedFile, error) {
	var out []domain.StagedFile
	err := r.db.Select(&out, `SELECT id,owner,form_key,slot,position,filename,mime,size,preview_mime,created_unix
        FROM staged_files WHERE owner=? AND form_key=? ORDER BY slot, position`, owner, formKey)
	return out, err
}

// Contents returns a form's staged files with their bytes, in slot order.
func (r *StagingRepo) Contents(owner, formKey string) ([]domain.StagedFile, error) {
	var out []domain.StagedFile
	err := r.db.Select(&out, `SELECT id,owner,form_key,slot,position,filename,mime,size,content,preview_mime,created_unix
        FROM staged_files WHERE owner=? AND form_key=? ORDER BY slot, position`, owner, formKey)
	return out, err
}

func (r *StagingRepo) Get(owner, id string) (domain.StagedFile, error) {
	var f domain.StagedFile
	err := r.db.Get(&f, `SELECT id,owner,form_key,slot,position,filename,mime,size,content,preview,preview_mime,created_unix
        FROM staged_files WHERE id=? AND owner=?`, id, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrStagedNotFound
	}
	return f, err
}

// Delete removes one file, scoped to the form it was staged for.
func (r *StagingRepo) Delete(owner, formKey, id string) error {
	res, err := r.db.Exec(`DELETE FROM staged_files WHERE id=? AND owner=? AND form_key=?`, id, owner, formKey)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStagedNotFound
	}
	return nil
}

func (r *StagingRepo) DeleteSlot(owner, formKey, slot string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM staged_files WHERE owner=? AND form_key=? AND slot=?`, owner, formKey, slot)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *StagingRepo) DeleteForm(owner, formKey string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM staged_files WHERE owner=? AND form_key=?`, owner, formKey)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOlderThan releases whole forms whose newest file was staged before
// cutoff (unix seconds). A form still receiving uploads keeps all of them.
func (r *StagingRepo) DeleteOlderThan(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM staged_files WHERE (owner, form_key) IN (
        SELECT owner, form_key FROM staged_files GROUP BY owner, form_key HAVING MAX(created_unix) < ?)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
