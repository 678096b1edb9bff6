package staging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"elyukal/internal/domain"
	"elyukal/internal/repos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	s, err := New(repos.NewStagingRepo(db), maxBytes, time.Hour)
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStageImageBuildsPreview(t *testing.T) {
	s := newStore(t, 1<<20)
	f, err := s.Stage("sid", "product:new", domain.SlotImages, "../../etc/big.png", bytes.NewReader(pngBytes(t, 800, 400)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MIME)
	assert.Equal(t, "big.png", f.Filename)
	assert.Equal(t, 1, f.Position)
	assert.Len(t, f.ID, 21)
	assert.Equal(t, "/staged/"+f.ID, f.URL())

	got, err := s.Open("sid", f.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", got.PreviewMIME)
	prev, _, err := image.Decode(bytes.NewReader(got.Preview))
	require.NoError(t, err)
	assert.Equal(t, PreviewMaxDimension, prev.Bounds().Dx())
	assert.Equal(t, PreviewMaxDimension/2, prev.Bounds().Dy())

	// other browser sessions cannot see it
	_, err = s.Open("other", f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveMiddleImageKeepsOrder(t *testing.T) {
	s := newStore(t, 1<<20)
	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		f, err := s.Stage("sid", "product:new", domain.SlotImages, name, bytes.NewReader(pngBytes(t, 10, 10)))
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}

	assert.ErrorIs(t, s.Remove("sid", "store:new", ids[1]), ErrNotFound)
	require.NoError(t, s.Remove("sid", "product:new", ids[1]))
	assert.ErrorIs(t, s.Remove("sid", "product:new", ids[1]), ErrNotFound)

	list, err := s.List("sid", "product:new")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.png", list[0].Filename)
	assert.Equal(t, "c.png", list[1].Filename)

	files, err := s.Files("sid", "product:new")
	require.NoError(t, err)
	assert.NotEmpty(t, files[0].Content)
}

func TestSingleSlotIsReplaced(t *testing.T) {
	s := newStore(t, 1<<20)
	_, err := s.Stage("sid", "product:4", domain.SlotARAsset, "old.glb", strings.NewReader("glTF-old"))
	require.NoError(t, err)
	f, err := s.Stage("sid", "product:4", domain.SlotARAsset, "new.GLB", strings.NewReader("glTF-new"))
	require.NoError(t, err)
	assert.Equal(t, "model/gltf-binary", f.MIME)

	list, err := s.List("sid", "product:4")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new.GLB", list[0].Filename)
	assert.False(t, list[0].IsImage())
}

func TestStageRejections(t *testing.T) {
	s := newStore(t, 64)
	_, err := s.Stage("sid", "store:new", domain.SlotStoreImage, "a.png", bytes.NewReader(make([]byte, 65)))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Stage("sid", "store:new", domain.SlotStoreImage, "a.png", strings.NewReader("just text"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = s.Stage("sid", "product:new", domain.SlotARAsset, "model.obj", strings.NewReader("v 0 0 0"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = s.Stage("sid", "product:new", "avatar", "a.glb", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnknownSlot)

	_, err = s.Stage("sid", "product:new", domain.SlotARAsset, "a.glb", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReleaseAndSweep(t *testing.T) {
	s := newStore(t, 1<<20)
	_, err := s.Stage("sid", "product:new", domain.SlotARAsset, "a.glb", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = s.Stage("sid", "store:new", domain.SlotARAsset, "b.glb", strings.NewReader("y"))
	require.NoError(t, err)

	n, err := s.Release("sid", "product:new")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Sweep()
	require.NoError(t, err)
	assert.Zero(t, n)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = s.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunStopsWithContext(t *testing.T) {
	s := newStore(t, 1<<20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestStageApplicationDocuments(t *testing.T) {
	s := newStore(t, 8<<20)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	f, err := s.Stage("sid", "apply:new", domain.SlotBusinessPermit, "permit.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.MIME)
	got, err := s.Open("sid", f.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Preview)

	id, err := s.Stage("sid", "apply:new", domain.SlotValidID, "id.png", bytes.NewReader(pngBytes(t, 400, 300)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", id.MIME)

	// replacing the permit keeps one file in the slot
	_, err = s.Stage("sid", "apply:new", domain.SlotBusinessPermit, "permit-2.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	list, err := s.List("sid", "apply:new")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.Stage("sid", "apply:new", domain.SlotDTI, "dti.txt", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrUnsupported)

	big := append([]byte("%PDF-1.4\n"), make([]byte, DocumentMaxBytes)...)
	_, err = s.Stage("sid", "apply:new", domain.SlotDTI, "dti.pdf", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)
}
