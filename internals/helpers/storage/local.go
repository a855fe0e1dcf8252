package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"kemahasiswaan_backend/internals/configs"
)

// LocalStorage menulis ke disk (UPLOAD_PATH) dan disajikan fiber static di PublicURL.
type LocalStorage struct {
	Root      string
	PublicURL string // mis. "/uploads" atau "https://cdn.kampus.ac.id/uploads"
	MaxBytes  int64
	WebP      WebPOptions
}

func NewLocalStorage(root, publicURL string) *LocalStorage {
	return &LocalStorage{
		Root:      root,
		PublicURL: strings.TrimRight(publicURL, "/"),
		MaxBytes:  MaxUploadBytes(),
		WebP:      WebPOptionsFromEnv(),
	}
}

func NewLocalStorageFromEnv() (*LocalStorage, error) {
	root := configs.GetEnv("UPLOAD_PATH", "./uploads")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "buat UPLOAD_PATH")
	}
	return NewLocalStorage(root, configs.GetEnv("UPLOAD_PUBLIC_URL", "/uploads")), nil
}

func (s *LocalStorage) Store(ctx context.Context, dir string, up *Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storeErr("store", "", err)
	}
	p, err := prepare(up, s.MaxBytes, s.WebP)
	if err != nil {
		return "", storeErr("store", "", err)
	}

	key := objectKey("", dir, p.Name)
	full := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", storeErr("store", key, err)
	}
	if err := os.WriteFile(full, p.Data, 0o644); err != nil {
		return "", storeErr("store", key, err)
	}
	return s.PublicURL + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	full, ok := s.pathOf(ref)
	if !ok {
		return storeErr("delete", ref, errors.New("ref di luar direktori upload"))
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return storeErr("delete", ref, err)
	}
	return nil
}

// pathOf: ref (URL publik atau key relatif) → path di disk, tidak boleh keluar dari Root.
func (s *LocalStorage) pathOf(ref string) (string, bool) {
	key := strings.TrimSpace(ref)
	if s.PublicURL != "" {
		key = strings.TrimPrefix(key, s.PublicURL)
	}
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", false
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", false
	}
	return full, true
}
