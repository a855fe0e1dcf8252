package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"kemahasiswaan_backend/internals/configs"
)

/* =======================================================================
   OSS Storage (Aliyun)
======================================================================= */

type OSSStorage struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // optional: "kemahasiswaan"
	PublicBase string // optional: CDN di depan bucket
	MaxBytes   int64
	WebP       WebPOptions
}

func NewOSSStorageFromEnv() (*OSSStorage, error) {
	endpoint := configs.GetEnv("OSS_ENDPOINT")
	ak := configs.GetEnv("OSS_ACCESS_KEY_ID")
	sk := configs.GetEnv("OSS_ACCESS_KEY_SECRET")
	bucketName := configs.GetEnv("OSS_BUCKET_NAME")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET_NAME")
	}

	client, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, errors.Wrap(err, "oss.New")
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "client.Bucket")
	}

	// Verifikasi ringan lokasi bucket
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 {
			configs.SLog.Warnw("[OSS] skip location check (AccessDenied)", "bucket", bucketName)
		} else {
			return nil, errors.Wrap(err, "verify bucket")
		}
	} else {
		configs.SLog.Infow("[OSS] bucket siap", "bucket", bucketName, "location", loc)
	}

	return &OSSStorage{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(configs.GetEnv("OSS_PREFIX"), "/"),
		PublicBase: strings.TrimRight(configs.GetEnv("OSS_PUBLIC_BASE"), "/"),
		MaxBytes:   MaxUploadBytes(),
		WebP:       WebPOptionsFromEnv(),
	}, nil
}

func (s *OSSStorage) Store(ctx context.Context, dir string, up *Upload) (string, error) {
	p, err := prepare(up, s.MaxBytes, s.WebP)
	if err != nil {
		return "", storeErr("store", "", err)
	}

	key := objectKey(s.Prefix, dir, p.Name)
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(p.ContentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(p.Data), opts...); err != nil {
		return "", storeErr("store", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStorage) Delete(ctx context.Context, ref string) error {
	key, err := s.keyOf(ref)
	if err != nil {
		return storeErr("delete", ref, err)
	}
	if err := s.Bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil && !isNotFound(err) {
		return storeErr("delete", ref, err)
	}
	return nil
}

func (s *OSSStorage) PublicURL(key string) string {
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSStorage) keyOf(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty ref")
	}
	if s.PublicBase != "" && strings.HasPrefix(ref, s.PublicBase+"/") {
		return strings.TrimPrefix(ref, s.PublicBase+"/"), nil
	}
	u := ref
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
		if j := strings.Index(u, "/"); j >= 0 {
			return u[j+1:], nil
		}
		return "", fmt.Errorf("cannot extract key from url: %s", ref)
	}
	return strings.TrimLeft(u, "/"), nil
}

func isNotFound(err error) bool {
	if e, ok := err.(oss.ServiceError); ok {
		return e.StatusCode == 404
	}
	return false
}
