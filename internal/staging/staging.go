// Package staging holds form uploads server-side until the form is
// submitted or abandoned. Every staged file is released on removal, on
// replacement, on submit, on cancel, or by the janitor once it outlives
// the TTL.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"elyukal/internal/domain"
	applog "elyukal/internal/log"
	"elyukal/internal/repos"

	nanoid "github.com/jaevor/go-nanoid"
)

var (
	ErrNotFound    = repos.ErrStagedNotFound
	ErrTooLarge    = errors.New("file is too large")
	ErrUnsupported = errors.New("unsupported file type")
	ErrUnknownSlot = errors.New("unknown upload slot")
	ErrTooMany     = errors.New("too many files")
)

const MaxImagesPerForm = 10

// DocumentMaxBytes caps seller application documents below the general limit.
const DocumentMaxBytes = 5 << 20

var modelMIME = map[string]string{
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
	".usdz": "model/vnd.usdz+zip",
}

// single slots hold at most one file; staging another replaces it
var single = map[string]bool{
	domain.SlotARAsset:        true,
	domain.SlotStoreImage:     true,
	domain.SlotBusinessPermit: true,
	domain.SlotValidID:        true,
	domain.SlotDTI:            true,
}

var documentSlot = map[string]bool{
	domain.SlotBusinessPermit: true,
	domain.SlotValidID:        true,
	domain.SlotDTI:            true,
}

type Store struct {
	repo     *repos.StagingRepo
	maxBytes int64
	ttl      time.Duration
	newID    func() string
	now      func() time.Time
}

func New(repo *repos.StagingRepo, maxBytes int64, ttl time.Duration) (*Store, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("staging id generator: %w", err)
	}
	return &Store{repo: repo, maxBytes: maxBytes, ttl: ttl, newID: gen, now: time.Now}, nil
}

func (s *Store) TTL() time.Duration { return s.ttl }

// Stage stores one upload for the browser session sid under formKey.
func (s *Store) Stage(sid, formKey, slot, filename string, r io.Reader) (domain.StagedFile, error) {
	owner := repos.HashSID(sid)
	limit := s.maxBytes
	if documentSlot[slot] {
		limit = min(limit, DocumentMaxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return domain.StagedFile{}, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > limit {
		return domain.StagedFile{}, ErrTooLarge
	}
	if len(data) == 0 {
		return domain.StagedFile{}, ErrUnsupported
	}

	f := domain.StagedFile{
		ID:          s.newID(),
		Owner:       owner,
		FormKey:     formKey,
		Slot:        slot,
		Filename:    filepath.Base(filename),
		Size:        int64(len(data)),
		Content:     data,
		CreatedUnix: s.now().Unix(),
	}

	switch slot {
	case domain.SlotImages, domain.SlotStoreImage:
		f.MIME = http.DetectContentType(data)
		if !imageMIME[f.MIME] {
			return domain.StagedFile{}, fmt.Errorf("%w: %s", ErrUnsupported, f.MIME)
		}
		if f.Preview, err = thumbnail(data); err != nil {
			return domain.StagedFile{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		f.PreviewMIME = "image/jpeg"
	case domain.SlotARAsset:
		mime, ok := modelMIME[strings.ToLower(filepath.Ext(filename))]
		if !ok {
			return domain.StagedFile{}, fmt.Errorf("%w: 3D models must be .glb, .gltf or .usdz", ErrUnsupported)
		}
		f.MIME = mime
	case domain.SlotBusinessPermit, domain.SlotValidID, domain.SlotDTI:
		f.MIME = http.DetectContentType(data)
		switch {
		case f.MIME == "application/pdf":
		case f.MIME == "image/jpeg" || f.MIME == "image/png":
			if f.Preview, err = thumbnail(data); err != nil {
				return domain.StagedFile{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
			}
			f.PreviewMIME = "image/jpeg"
		default:
			return domain.StagedFile{}, fmt.Errorf("%w: documents must be JPEG, PNG or PDF", ErrUnsupported)
		}
	default:
		return domain.StagedFile{}, ErrUnknownSlot
	}

	if single[slot] {
		if _, err := s.repo.DeleteSlot(owner, formKey, slot); err != nil {
			return domain.StagedFile{}, err
		}
	} else {
		existing, err := s.repo.List(owner, formKey)
		if err != nil {
			return domain.StagedFile{}, err
		}
		n := 0
		for _, e := range existing {
			if e.Slot == slot {
				n++
			}
		}
		if n >= MaxImagesPerForm {
			return domain.StagedFile{}, ErrTooMany
		}
	}

	if f.Position, err = s.repo.Insert(f); err != nil {
		return domain.StagedFile{}, err
	}
	f.Content, f.Preview = nil, nil
	return f, nil
}

// List returns metadata for the form's staged files, slot then upload order.
func (s *Store) List(sid, formKey string) ([]domain.StagedFile, error) {
	return s.repo.List(repos.HashSID(sid), formKey)
}

// Files returns the staged files with content, ready to attach to a payload.
func (s *Store) Files(sid, formKey string) ([]domain.StagedFile, error) {
	return s.repo.Contents(repos.HashSID(sid), formKey)
}

// Open loads one file for preview. Files are only visible to their owner.
func (s *Store) Open(sid, id string) (domain.StagedFile, error) {
	return s.repo.Get(repos.HashSID(sid), id)
}

// Remove drops one file from formKey; files of other forms are untouched.
func (s *Store) Remove(sid, formKey, id string) error {
	return s.repo.Delete(repos.HashSID(sid), formKey, id)
}

// Release drops everything staged for a form (submit or cancel).
func (s *Store) Release(sid, formKey string) (int64, error) {
	return s.repo.DeleteForm(repos.HashSID(sid), formKey)
}

// Sweep releases forms that have not staged anything within the TTL.
func (s *Store) Sweep() (int64, error) {
	return s.repo.DeleteOlderThan(s.now().Add(-s.ttl).Unix())
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep()
			if err != nil {
				applog.Bg("staging.sweep.fail", err, nil)
				continue
			}
			if n > 0 {
				applog.Bg("staging.sweep", nil, map[string]any{"released": n})
			}
		}
	}
}
