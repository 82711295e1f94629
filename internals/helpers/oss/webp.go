// file: internals/helpers/oss/webp.go
package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("format gambar tidak didukung (pakai jpg/png/webp)")

/* =======================================================================
   Konfigurasi WebP (dari config) + Opsi per-call
======================================================================= */

type WebPOptions struct {
	MaxW        int     // batas lebar (resize keep-aspect)
	MaxH        int     // batas tinggi
	TargetKB    int     // target ukuran; 0 = non-aktif (pakai Quality saja)
	Quality     float32 // default quality saat TargetKB=0
	MinQ        float32 // min quality utk binary search
	MaxQ        float32 // max quality utk binary search
	ToleranceKB int     // toleransi di atas target
	Lossless    bool
	MinW        int     // lebar minimum saat iterative downscale
	MinH        int     // tinggi minimum
	ScaleStep   float32 // faktor perkecil tiap iterasi (0<step<1)
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{
		MaxW:        1600,
		MaxH:        1600,
		Quality:     80,
		MinQ:        45,
		MaxQ:        85,
		ToleranceKB: 8,
		MinW:        480,
		MinH:        480,
		ScaleStep:   0.85,
	}
}

// Preset avatar/logo: kecil, persegi.
func (o WebPOptions) Thumbnail(maxSide int) WebPOptions {
	o.MaxW, o.MaxH = maxSide, maxSide
	if o.MinW > maxSide {
		o.MinW = maxSide / 2
	}
	if o.MinH > maxSide {
		o.MinH = maxSide / 2
	}
	return o
}

// ConvertToWebP: decode -> resize (opsional) -> encode webp
func ConvertToWebP(data []byte, filename string, opts WebPOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	img, err := decodeImage(data, filename)
	if err != nil {
		return nil, err
	}
	img = downscaleIfNeeded(img, opts.MaxW, opts.MaxH)
	return encodeToWebP(img, opts)
}

/* =======================================================================
   Decode gambar (jpeg/png/webp) dengan sniff MIME
======================================================================= */

func decodeImage(all []byte, filename string) (image.Image, error) {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	kind := ""
	switch {
	case strings.Contains(ct, "jpeg"):
		kind = "jpeg"
	case strings.Contains(ct, "png"):
		kind = "png"
	case strings.Contains(ct, "webp"):
		kind = "webp"
	default:
		// fallback by extension
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".jpg", ".jpeg":
			kind = "jpeg"
		case ".png":
			kind = "png"
		case ".webp":
			kind = "webp"
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
		}
	}

	var (
		img image.Image
		err error
	)
	switch kind {
	case "jpeg":
		img, err = jpeg.Decode(bytes.NewReader(all))
	case "png":
		img, err = png.Decode(bytes.NewReader(all))
	case "webp":
		img, err = webp.Decode(bytes.NewReader(all))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

/* =======================================================================
   Resize helper (keep aspect). Pakai CatmullRom.
======================================================================= */

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	return resize(src, int(math.Round(float64(w)*scale)), int(math.Round(float64(h)*scale)))
}

func resize(src image.Image, nw, nh int) image.Image {
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

/* =======================================================================
   Encode WebP
   - TargetKB > 0 → binary search quality hingga <= target+tol,
     lalu perkecil dimensi bila masih kebesaran
   - TargetKB = 0 → encode sekali dengan Quality
======================================================================= */

func encodeQ(img image.Image, q float32, lossless bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: lossless, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	if opt.Lossless {
		return encodeQ(img, 0, true)
	}
	if opt.TargetKB <= 0 {
		q := opt.Quality
		if q <= 0 {
			q = 80
		}
		return encodeQ(img, q, false)
	}

	target := opt.TargetKB * 1024
	tol := opt.ToleranceKB * 1024
	if tol <= 0 {
		tol = 8 * 1024
	}
	minQ, maxQ := opt.MinQ, opt.MaxQ
	if minQ <= 0 {
		minQ = 45
	}
	if maxQ <= 0 {
		maxQ = 85
	}
	if minQ > maxQ {
		minQ, maxQ = maxQ, minQ
	}
	minW, minH := opt.MinW, opt.MinH
	if minW <= 0 {
		minW = 480
	}
	if minH <= 0 {
		minH = 480
	}
	step := opt.ScaleStep
	if step <= 0 || step >= 1 {
		step = 0.85
	}

	cur := img
	var last []byte
	for attempt := 0; attempt < 6; attempt++ {
		low, high := minQ, maxQ
		var best []byte
		for i := 0; i < 8; i++ {
			q := (low + high) / 2
			data, err := encodeQ(cur, q, false)
			if err != nil {
				return nil, err
			}
			if len(data) <= target+tol {
				best = data
				high = q
			} else {
				low = q
			}
		}
		if best == nil {
			var err error
			if best, err = encodeQ(cur, low, false); err != nil {
				return nil, err
			}
		}
		last = best
		if len(best) <= target+tol {
			return best, nil
		}

		b := cur.Bounds()
		cw, ch := b.Dx(), b.Dy()
		if cw <= minW && ch <= minH {
			return best, nil
		}

		// skala ~ sqrt(target/actual) * 0.95, di-clamp ke [0.5, step]
		scale := math.Sqrt(float64(target+tol)/float64(len(best))) * 0.95
		if scale > float64(step) {
			scale = float64(step)
		} else if scale < 0.5 {
			scale = 0.5
		}
		nw := maxInt(int(math.Round(float64(cw)*scale)), minW)
		nh := maxInt(int(math.Round(float64(ch)*scale)), minH)
		if nw >= cw && nh >= ch {
			nw = maxInt(int(float64(cw)*float64(step)), minW)
			nh = maxInt(int(float64(ch)*float64(step)), minH)
		}
		cur = resize(cur, nw, nh)
	}
	return last, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
