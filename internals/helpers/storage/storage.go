package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"kemahasiswaan_backend/internals/configs"
	"kemahasiswaan_backend/internals/constants"
	helper "kemahasiswaan_backend/internals/helpers"
)

// Direktori objek per jenis file
const (
	DirFormTemplates   = "form_templates"
	DirSubmissionFiles = "submission_files"
	DirScholarships    = "scholarship_posters"
)

// FileStorage: penyimpanan file eksternal. Store mengembalikan ref (URL publik),
// Delete atas ref yang sudah tidak ada tidak dianggap error.
type FileStorage interface {
	Store(ctx context.Context, dir string, up *Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Upload: file yang akan disimpan, terlepas dari sumbernya (multipart, seed, test).
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func FromFileHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil {
		return nil
	}
	return &Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func FromBytes(filename string, b []byte) *Upload {
	return &Upload{
		Filename: filename,
		Size:     int64(len(b)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// MaxUploadBytes dari MAX_UPLOAD_MB (default 5MB).
func MaxUploadBytes() int64 {
	return int64(configs.GetEnvInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024
}

// prepared: isi file siap tulis (sudah dikonversi bila gambar).
type prepared struct {
	Name        string
	ContentType string
	Data        []byte
}

func prepare(up *Upload, maxBytes int64, opt WebPOptions) (*prepared, error) {
	if up == nil || up.Open == nil {
		return nil, errors.New("file kosong")
	}
	if maxBytes > 0 && up.Size > maxBytes {
		return nil, fmt.Errorf("ukuran file melebihi batas %d MB", maxBytes/(1024*1024))
	}

	rc, err := up.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	if len(data) == 0 {
		return nil, errors.New("file kosong")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("ukuran file melebihi batas %d MB", maxBytes/(1024*1024))
	}

	ct := sniffContentType(up, data)
	name := up.Filename
	if constants.ConvertibleImage(name, ct) {
		webpData, convErr := ConvertToWebP(data, opt)
		if convErr != nil {
			return nil, errors.Wrap(convErr, "konversi webp")
		}
		data = webpData
		ct = "image/webp"
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".webp"
	}

	return &prepared{Name: objectName(name), ContentType: ct, Data: data}, nil
}

func sniffContentType(up *Upload, data []byte) string {
	ct := strings.TrimSpace(up.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(up.Filename)))
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// objectName: <uuid>-<slug>.<ext>
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := helper.Slugify(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), 60)
	return uuid.NewString() + "-" + base + ext
}

func objectKey(prefix, dir, name string) string {
	return strings.TrimPrefix(path.Join(strings.Trim(prefix, "/"), strings.Trim(dir, "/"), name), "/")
}

func storeErr(op, ref string, err error) error {
	return &helper.StorageError{Op: op, Ref: ref, Err: err}
}

// NewFromEnv memilih adapter dari STORAGE_DRIVER (local|oss).
func NewFromEnv() (FileStorage, error) {
	switch strings.ToLower(configs.GetEnv("STORAGE_DRIVER", "local")) {
	case "oss":
		return NewOSSStorageFromEnv()
	case "local", "":
		return NewLocalStorageFromEnv()
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER tidak dikenal: %s", configs.GetEnv("STORAGE_DRIVER"))
	}
}

// ReleaseAll menghapus ref satu per satu; gagal hapus hanya di-log (best-effort).
func ReleaseAll(ctx context.Context, fs FileStorage, refs []string) {
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if err := fs.Delete(ctx, ref); err != nil {
			configs.SLog.Warnw("⚠️ gagal menghapus file", "ref", ref, "error", err)
		}
	}
}
