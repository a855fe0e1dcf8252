package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "kemahasiswaan_backend/internals/helpers"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStorage_StoreAndDelete(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/uploads")
	ctx := context.Background()

	ref, err := s.Store(ctx, DirFormTemplates, FromBytes("Template KTP.pdf", []byte("%PDF-1.4 dummy")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/form_templates/"))
	assert.True(t, strings.HasSuffix(ref, "-template-ktp.pdf"))

	full := filepath.Join(root, strings.TrimPrefix(ref, "/uploads/"))
	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 dummy", string(got))

	require.NoError(t, s.Delete(ctx, ref))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// hapus ulang file yang sudah tidak ada → no-op
	assert.NoError(t, s.Delete(ctx, ref))
}

func TestLocalStorage_RejectsTraversalAndOversize(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/uploads")
	s.MaxBytes = 10
	ctx := context.Background()

	err := s.Delete(ctx, "/uploads/../../etc/passwd")
	require.Error(t, err)

	_, err = s.Store(ctx, DirSubmissionFiles, FromBytes("besar.txt", []byte("lebih dari sepuluh byte")))
	require.Error(t, err)
	var se *helper.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "store", se.Op)
}

func TestLocalStorage_ConvertsImagesToWebP(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/uploads")
	s.WebP = WebPOptions{MaxW: 32, MaxH: 32, Quality: 70}

	ref, err := s.Store(context.Background(), DirScholarships, FromBytes("poster.png", pngBytes(t, 64, 48)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, "-poster.webp"))

	data, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	ref, err := m.Store(ctx, DirSubmissionFiles, FromBytes("ktp.pdf", []byte("x")))
	require.NoError(t, err)
	assert.True(t, m.Has(ref))
	assert.Equal(t, []string{ref}, m.Refs())

	require.NoError(t, m.Delete(ctx, ref))
	assert.False(t, m.Has(ref))
	assert.Equal(t, []string{ref}, m.Deleted())

	m.FailStore = errors.New("disk penuh")
	_, err = m.Store(ctx, DirSubmissionFiles, FromBytes("ktp.pdf", []byte("x")))
	var se *helper.StorageError
	require.True(t, errors.As(err, &se))
}

func TestOSSStorage_KeyOf(t *testing.T) {
	s := &OSSStorage{Endpoint: "oss-ap-southeast-5.aliyuncs.com", BucketName: "kampus"}
	url := s.PublicURL("kemahasiswaan/form_templates/a.pdf")
	assert.Equal(t, "https://kampus.oss-ap-southeast-5.aliyuncs.com/kemahasiswaan/form_templates/a.pdf", url)

	key, err := s.keyOf(url)
	require.NoError(t, err)
	assert.Equal(t, "kemahasiswaan/form_templates/a.pdf", key)

	s.PublicBase = "https://cdn.kampus.ac.id"
	key, err = s.keyOf("https://cdn.kampus.ac.id/x/y.webp")
	require.NoError(t, err)
	assert.Equal(t, "x/y.webp", key)
}
