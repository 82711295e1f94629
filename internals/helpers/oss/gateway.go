// file: internals/helpers/oss/gateway.go
package helper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Gateway: object storage (bucket tunggal). Implementasi: OSSService (aliyun), S3Service (R2/S3/minio).
type Gateway interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

var ErrEmptyKey = errors.New("empty object key")

// cache header yang sama untuk semua aset (key selalu unik per upload)
const cacheForever = "public, max-age=31536000, immutable"

/* =======================================================================
   Public URL & Key utils
======================================================================= */

// JoinPublicURL: base + "/" + key (base tanpa trailing slash).
func JoinPublicURL(base, key string) string {
	if key == "" || base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// BuildObjectKey: "<dir>/<slug>_<yyyymmdd_hhmmss>_<rand6><ext>"
func BuildObjectKey(dir, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := fmt.Sprintf("%s_%s_%s%s", slugify(base), now.Format("20060102_150405"), randHex(3), ext)
	if dir = JoinDir(dir); dir != "" {
		return dir + "/" + key
	}
	return key
}

// JoinDir: gabung bagian path dengan slug aman, bagian kosong dilewati.
func JoinDir(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(p, "/") {
			if strings.TrimSpace(seg) == "" {
				continue
			}
			clean = append(clean, slugify(seg))
		}
	}
	return strings.Join(clean, "/")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(" ", "-", "_", "-", "—", "-", "–", "-")
	s = r.Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// DetectContentType: ekstensi dulu, lalu sniff 512B; override untuk format modern.
func DetectContentType(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	case ".svg":
		return "image/svg+xml"
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" || ct == "application/octet-stream" {
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		if len(head) > 0 {
			ct = http.DetectContentType(head)
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

func init() {
	_ = mime.AddExtensionType(".webp", "image/webp")
	_ = mime.AddExtensionType(".avif", "image/avif")
	_ = mime.AddExtensionType(".svg", "image/svg+xml")
}
