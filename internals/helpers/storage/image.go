package storage

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"kemahasiswaan_backend/internals/configs"
)

/* =======================================================================
   Konfigurasi WebP (ENV-Driven)
======================================================================= */

type WebPOptions struct {
	MaxW    int     // batas lebar (resize keep-aspect)
	MaxH    int     // batas tinggi
	Quality float32 // 0..100
}

func WebPOptionsFromEnv() WebPOptions {
	q := float32(80)
	if v := configs.GetEnv("WEBP_QUALITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 && f <= 100 {
			q = float32(f)
		}
	}
	return WebPOptions{
		MaxW:    configs.GetEnvInt("WEBP_MAX_WIDTH", 1600),
		MaxH:    configs.GetEnvInt("WEBP_MAX_HEIGHT", 1600),
		Quality: q,
	}
}

// ConvertToWebP: decode (jpeg/png/gif, orientasi EXIF ikut) → downscale bila perlu → encode webp.
func ConvertToWebP(data []byte, opt WebPOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("format gambar tidak didukung: %w", err)
	}

	b := img.Bounds()
	if (opt.MaxW > 0 && b.Dx() > opt.MaxW) || (opt.MaxH > 0 && b.Dy() > opt.MaxH) {
		maxW, maxH := opt.MaxW, opt.MaxH
		if maxW <= 0 {
			maxW = b.Dx()
		}
		if maxH <= 0 {
			maxH = b.Dy()
		}
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
