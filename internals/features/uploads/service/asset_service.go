// file: internals/features/uploads/service/asset_service.go
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"edudesk_backend/internals/constants"
	model "edudesk_backend/internals/features/uploads/model"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/store"
)

// batas ukuran file sebelum diproses
const DefaultMaxUploadSize = int64(5 * 1024 * 1024)

type Blob struct {
	Name        string
	Data        []byte
	ContentType string
}

// AssetService: upload dengan urutan put baru -> update record -> hapus lama.
// Gagal hapus tidak pernah sampai ke user; dicatat sebagai orphan untuk sweeper.
type AssetService struct {
	Gateway helperOSS.Gateway
	Orphans *store.Collection[model.OrphanCandidate]
	WebP    helperOSS.WebPOptions
	MaxSize int64
	Log     *zap.Logger
	Now     func() time.Time
}

func NewAssetService(gw helperOSS.Gateway, b store.Backend, webp helperOSS.WebPOptions, log *zap.Logger) *AssetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetService{
		Gateway: gw,
		Orphans: model.NewOrphanCollection(b),
		WebP:    webp,
		MaxSize: DefaultMaxUploadSize,
		Log:     log,
		Now:     time.Now,
	}
}

/* =======================================================================
   Prepare (multipart -> Blob)
======================================================================= */

func (s *AssetService) read(fh *multipart.FileHeader) ([]byte, error) {
	if fh == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	if s.MaxSize > 0 && fh.Size > s.MaxSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("Ukuran file maksimal %d MB", s.MaxSize/(1024*1024)))
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File kosong")
	}
	return data, nil
}

// PrepareImage: jpg/png/webp -> webp (resize sesuai maxSide, 0 = opsi default).
func (s *AssetService) PrepareImage(fh *multipart.FileHeader, maxSide int) (Blob, error) {
	data, err := s.read(fh)
	if err != nil {
		return Blob{}, err
	}
	return s.ImageBlob(data, fh.Filename, maxSide)
}

func (s *AssetService) ImageBlob(data []byte, filename string, maxSide int) (Blob, error) {
	opts := s.WebP
	if maxSide > 0 {
		opts = opts.Thumbnail(maxSide)
	}
	out, err := helperOSS.ConvertToWebP(data, filename, opts)
	if err != nil {
		if errors.Is(err, helperOSS.ErrUnsupportedImage) {
			return Blob{}, fiber.NewError(fiber.StatusUnsupportedMediaType, "Unsupported image format (pakai jpg/png/webp)")
		}
		return Blob{}, err
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return Blob{Name: base + ".webp", Data: out, ContentType: "image/webp"}, nil
}

// PrepareDocument: upload apa adanya (pdf/doc/gambar).
func (s *AssetService) PrepareDocument(fh *multipart.FileHeader) (Blob, error) {
	if fh != nil && !constants.AllowedStudentDocument(fh.Filename) {
		return Blob{}, fiber.NewError(fiber.StatusUnsupportedMediaType, "Tipe file tidak didukung (pdf/doc/docx/jpg/png/webp)")
	}
	data, err := s.read(fh)
	if err != nil {
		return Blob{}, err
	}
	return Blob{Name: fh.Filename, Data: data, ContentType: helperOSS.DetectContentType(data, fh.Filename)}, nil
}

/* =======================================================================
   Replace / Remove
======================================================================= */

// Replace: put blob baru, commit(stored) menulis record, lalu hapus oldKey.
//   - put gagal        -> error 502, tidak ada yang berubah
//   - commit gagal     -> objek baru dihapus (best-effort), error commit dikembalikan
//   - hapus lama gagal -> sukses untuk user, oldKey dicatat sebagai orphan
func (s *AssetService) Replace(
	ctx context.Context,
	tenant, dir string,
	blob Blob,
	oldKey string,
	commit func(model.StoredFile) error,
) (model.StoredFile, error) {
	now := s.now()
	key := helperOSS.BuildObjectKey(helperOSS.JoinDir(tenant, dir), blob.Name, now)

	if err := s.Gateway.Put(ctx, key, bytes.NewReader(blob.Data), int64(len(blob.Data)), blob.ContentType); err != nil {
		s.Log.Error("storage put failed", zap.String("tenant", tenant), zap.String("key", key), zap.Error(err))
		return model.StoredFile{}, fiber.NewError(fiber.StatusBadGateway, "Gagal upload ke storage")
	}

	stored := model.StoredFile{
		Key:         key,
		URL:         s.Gateway.PublicURL(key),
		Name:        blob.Name,
		ContentType: blob.ContentType,
		Size:        int64(len(blob.Data)),
		UploadedAt:  now,
	}

	if err := commit(stored); err != nil {
		if derr := s.Gateway.Delete(ctx, key); derr != nil {
			s.RecordOrphan(ctx, tenant, key, "rollback after record update failed", derr)
		}
		return model.StoredFile{}, err
	}

	if oldKey != "" && oldKey != key {
		s.cleanup(ctx, tenant, oldKey, "replaced")
	}
	return stored, nil
}

// Remove: commit (hapus referensi di record) dulu, baru objeknya.
func (s *AssetService) Remove(ctx context.Context, tenant, key string, commit func() error) error {
	if err := commit(); err != nil {
		return err
	}
	if key != "" {
		s.cleanup(ctx, tenant, key, "removed")
	}
	return nil
}

func (s *AssetService) cleanup(ctx context.Context, tenant, key, reason string) {
	if err := s.Gateway.Delete(ctx, key); err != nil {
		s.Log.Warn("storage cleanup failed", zap.String("tenant", tenant), zap.String("key", key), zap.Error(err))
		s.RecordOrphan(ctx, tenant, key, reason, err)
	}
}

// RecordOrphan: simpan kandidat orphan; kalau ini pun gagal hanya di-log.
func (s *AssetService) RecordOrphan(ctx context.Context, tenant, key, reason string, cause error) {
	now := s.now()
	o := model.OrphanCandidate{
		ID:         uuid.NewString(),
		TenantCode: tenant,
		Key:        key,
		Reason:     reason,
		Status:     model.OrphanPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cause != nil {
		o.LastError = cause.Error()
	}
	// context request bisa sudah habis; pencatatan tetap jalan
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Orphans.Insert(rctx, store.GlobalTenant, o.ID, &o); err != nil {
		s.Log.Error("record orphan failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AssetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
