package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	model "edudesk_backend/internals/features/institutions/model"
	uploadModel "edudesk_backend/internals/features/uploads/model"
	uploadService "edudesk_backend/internals/features/uploads/service"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

const LogoMaxSide = 800

var ErrInstitutionExists = fiber.NewError(fiber.StatusConflict, "Institution untuk tenant ini sudah ada")

// Settings: pengaturan & branding institution milik satu tenant.
type Settings struct {
	Institutions *store.Collection[model.Institution]
	Assets       *uploadService.AssetService
	Now          func() time.Time
}

func NewSettings(b store.Backend, assets *uploadService.AssetService) *Settings {
	return &Settings{
		Institutions: model.NewInstitutionCollection(b),
		Assets:       assets,
		Now:          time.Now,
	}
}

// CheckLists: tahun ajaran valid, kelas/divisi/jurusan tanpa duplikat (case-insensitive).
func CheckLists(i model.Institution) error {
	if !helper.ValidAcademicYear(i.AcademicYear) {
		return helper.NewFieldError("academicYear", "format start-end, mis. 25-26")
	}
	for field, list := range map[string][]string{"classes": i.Classes, "divisions": i.Divisions, "courses": i.Courses} {
		seen := make(map[string]bool, len(list))
		for _, v := range list {
			k := helper.NormalizeKey(v)
			if seen[k] {
				return helper.NewFieldError(field, "duplikat: "+strings.TrimSpace(v))
			}
			seen[k] = true
		}
	}
	return nil
}

// Create: dokumen institution pertama untuk tenant (id == tenantCode).
func (s *Settings) Create(ctx context.Context, tenant string, in model.Institution) (model.Institution, error) {
	in.ID = tenant
	in.TenantCode = tenant
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = helper.Slugify(in.Name, 80)
	} else {
		in.Slug = helper.Slugify(in.Slug, 80)
	}
	in.Counters = model.Counters{}
	in.Logo = nil
	if err := CheckLists(in); err != nil {
		return in, err
	}
	now := s.Now()
	in.CreatedAt, in.UpdatedAt = now, now
	err := s.Institutions.Insert(ctx, tenant, tenant, &in)
	if errors.Is(err, store.ErrDuplicate) {
		return in, ErrInstitutionExists
	}
	return in, err
}

func (s *Settings) Get(ctx context.Context, tenant string) (model.Institution, error) {
	return s.Institutions.Get(ctx, tenant, tenant)
}

// Update: counters & logo tidak bisa diubah lewat sini.
func (s *Settings) Update(ctx context.Context, tenant string, mutate func(*model.Institution)) (model.Institution, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return inst, err
	}
	counters, logo, created := inst.Counters, inst.Logo, inst.CreatedAt
	mutate(&inst)
	inst.Counters, inst.Logo, inst.CreatedAt = counters, logo, created
	inst.Slug = helper.Slugify(firstNonEmpty(inst.Slug, inst.Name), 80)
	if err := CheckLists(inst); err != nil {
		return inst, err
	}
	inst.UpdatedAt = s.Now()
	if err := s.Institutions.Put(ctx, tenant, inst.ID, &inst); err != nil {
		return inst, err
	}
	return inst, nil
}

// SetLogo: replace-then-delete lewat AssetService.
func (s *Settings) SetLogo(ctx context.Context, tenant string, blob uploadService.Blob) (model.Institution, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return inst, err
	}
	oldKey := ""
	if inst.Logo != nil {
		oldKey = inst.Logo.Key
	}
	_, err = s.Assets.Replace(ctx, tenant, "institution/logo", blob, oldKey, func(f uploadModel.StoredFile) error {
		inst.Logo = &f
		inst.UpdatedAt = s.Now()
		return s.Institutions.Put(ctx, tenant, inst.ID, &inst)
	})
	return inst, err
}

func (s *Settings) RemoveLogo(ctx context.Context, tenant string) (model.Institution, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if err != nil {
		return inst, err
	}
	if inst.Logo == nil {
		return inst, nil
	}
	key := inst.Logo.Key
	err = s.Assets.Remove(ctx, tenant, key, func() error {
		inst.Logo = nil
		inst.UpdatedAt = s.Now()
		return s.Institutions.Put(ctx, tenant, inst.ID, &inst)
	})
	return inst, err
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
