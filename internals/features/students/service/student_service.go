// file: internals/features/students/service/student_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	instService "edudesk_backend/internals/features/institutions/service"
	model "edudesk_backend/internals/features/students/model"
	busService "edudesk_backend/internals/features/transport/buses/service"
	uploadModel "edudesk_backend/internals/features/uploads/model"
	uploadService "edudesk_backend/internals/features/uploads/service"
	helper "edudesk_backend/internals/helpers"
	"edudesk_backend/internals/store"
)

const (
	AvatarMaxSide = 512
	MaxDocuments  = 20
)

var ErrInstitutionMissing = fiber.NewError(fiber.StatusNotFound, "Institution belum dikonfigurasi")

// FeeProvider: tarif awal siswa baru.
type FeeProvider interface {
	Lookup(ctx context.Context, tenant, className, academicYear string, s *model.Student) (feeService.FeeQuote, error)
}

type StudentService struct {
	Students     *store.Collection[model.Student]
	Institutions *store.Collection[instModel.Institution]
	Counters     *instService.Counters
	Fees         FeeProvider
	Buses        *busService.BusService
	Assets       *uploadService.AssetService
	Log          *zap.Logger
	Now          func() time.Time
}

type Deps struct {
	Backend store.Backend
	Fees    FeeProvider
	Buses   *busService.BusService
	Assets  *uploadService.AssetService
	Log     *zap.Logger
}

func NewStudentService(d Deps) *StudentService {
	insts := instModel.NewInstitutionCollection(d.Backend)
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &StudentService{
		Students:     model.NewStudentCollection(d.Backend),
		Institutions: insts,
		Counters:     instService.NewCounters(insts),
		Fees:         d.Fees,
		Buses:        d.Buses,
		Assets:       d.Assets,
		Log:          log,
		Now:          time.Now,
	}
}

func (s *StudentService) institution(ctx context.Context, tenant string) (instModel.Institution, error) {
	inst, err := s.Institutions.Get(ctx, tenant, tenant)
	if errors.Is(err, store.ErrNotFound) {
		return inst, ErrInstitutionMissing
	}
	return inst, err
}

/* =======================================================================
   Create
======================================================================= */

// Create: validasi kelas, fee id dari counter institution, status awal "new",
// biaya awal dari fee schedule bila AllFee belum diisi.
func (s *StudentService) Create(ctx context.Context, tenant string, st model.Student, withFees bool) (model.Student, error) {
	inst, err := s.institution(ctx, tenant)
	if err != nil {
		return st, err
	}
	if len(inst.Classes) > 0 && !inst.HasClass(st.Class) {
		return st, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Kelas %q tidak terdaftar di institution", st.Class))
	}
	if strings.TrimSpace(st.AcademicYear) == "" {
		st.AcademicYear = inst.AcademicYear
	}

	now := s.Now()
	st.ID = uuid.NewString()
	st.TenantCode = tenant
	st.Status = model.StudentStatusNew
	st.Transactions = []model.Transaction{}
	st.CreatedAt, st.UpdatedAt = now, now

	if !withFees && s.Fees != nil {
		quote, err := s.Fees.Lookup(ctx, tenant, st.Class, st.AcademicYear, &st)
		switch {
		case err == nil:
			st.AllFee.SchoolFees.AdmissionFee = quote.StudentFees.AdmissionFee
			st.AllFee.SchoolFees.TutionFee = quote.StudentFees.TutionFee
			st.AllFee.TuitionFeesDiscount = quote.Discount()
		case errors.Is(err, feeService.ErrScheduleNotFound):
			// biaya diisi manual belakangan
			s.Log.Info("no fee schedule for new student", zap.String("tenant", tenant), zap.String("class", st.Class))
		default:
			return st, err
		}
	}

	n, err := s.Counters.Next(ctx, tenant, instService.CounterFeeID)
	if err != nil {
		return st, err
	}
	st.FeeID = instService.FormatFeeID(tenant, n)

	if err := s.Students.Insert(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}

/* =======================================================================
   Status & transport
======================================================================= */

func (s *StudentService) SetStatus(ctx context.Context, tenant, id string, status model.StudentStatus) (model.Student, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}
	st.Status = status
	st.UpdatedAt = s.Now()
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}

type TransportAssignment struct {
	BusPlate             string
	BusStop              string
	TransportFee         *decimal.Decimal // nil = tarif halte
	TransportFeeDiscount decimal.Decimal
}

// AssignTransport: plat + halte harus ada di data bus tenant. Plat kosong = lepas transport.
func (s *StudentService) AssignTransport(ctx context.Context, tenant, id string, in TransportAssignment) (model.Student, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}

	if strings.TrimSpace(in.BusPlate) == "" {
		st.BusPlate, st.BusStop = "", ""
		st.AllFee.TransportFee = decimal.Zero
		st.AllFee.TransportFeeDiscount = decimal.Zero
	} else {
		bus, stop, err := s.Buses.ResolveStop(ctx, tenant, in.BusPlate, in.BusStop)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return st, helper.NewFieldError("busPlate", "bus tidak ditemukan")
		case errors.Is(err, busService.ErrStopNotFound):
			return st, helper.NewFieldError("busStop", "halte tidak ada di rute bus")
		case err != nil:
			return st, err
		}
		if !bus.Active {
			return st, helper.NewFieldError("busPlate", "bus tidak aktif")
		}
		fee := stop.Fee
		if in.TransportFee != nil {
			fee = *in.TransportFee
		}
		st.BusPlate, st.BusStop = bus.NumberPlate, stop.Name
		st.AllFee.TransportFee = fee
		st.AllFee.TransportFeeDiscount = in.TransportFeeDiscount
	}

	st.UpdatedAt = s.Now()
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}

/* =======================================================================
   Avatar & dokumen (replace-then-delete)
======================================================================= */

func (s *StudentService) SetAvatar(ctx context.Context, tenant, id string, blob uploadService.Blob) (model.Student, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}
	oldKey := ""
	if st.Avatar != nil {
		oldKey = st.Avatar.Key
	}
	_, err = s.Assets.Replace(ctx, tenant, "students/"+st.ID+"/avatar", blob, oldKey, func(f uploadModel.StoredFile) error {
		st.Avatar = &f
		st.UpdatedAt = s.Now()
		return s.Students.Put(ctx, tenant, st.ID, &st)
	})
	return st, err
}

func (s *StudentService) AddDocument(ctx context.Context, tenant, id string, blob uploadService.Blob) (model.Student, uploadModel.StoredFile, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, uploadModel.StoredFile{}, err
	}
	if len(st.Documents) >= MaxDocuments {
		return st, uploadModel.StoredFile{}, helper.NewFieldError("file", fmt.Sprintf("maksimal %d dokumen", MaxDocuments))
	}
	f, err := s.Assets.Replace(ctx, tenant, "students/"+st.ID+"/docs", blob, "", func(f uploadModel.StoredFile) error {
		st.Documents = append(st.Documents, f)
		st.UpdatedAt = s.Now()
		return s.Students.Put(ctx, tenant, st.ID, &st)
	})
	return st, f, err
}

func (s *StudentService) RemoveDocument(ctx context.Context, tenant, id, key string) (model.Student, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}
	idx := -1
	for i, d := range st.Documents {
		if d.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return st, store.ErrNotFound
	}
	err = s.Assets.Remove(ctx, tenant, key, func() error {
		st.Documents = append(st.Documents[:idx:idx], st.Documents[idx+1:]...)
		st.UpdatedAt = s.Now()
		return s.Students.Put(ctx, tenant, st.ID, &st)
	})
	return st, err
}

// Update: mutasi profil/biaya; ganti kelas harus ke kelas yang terdaftar.
// schoolFees.total dihitung ulang oleh normalizer koleksi.
func (s *StudentService) Update(ctx context.Context, tenant, id string, mutate func(*model.Student)) (model.Student, error) {
	st, err := s.Students.Get(ctx, tenant, id)
	if err != nil {
		return st, err
	}
	prevClass := st.Class
	mutate(&st)
	if !strings.EqualFold(strings.TrimSpace(st.Class), strings.TrimSpace(prevClass)) {
		inst, err := s.institution(ctx, tenant)
		if err != nil {
			return st, err
		}
		if len(inst.Classes) > 0 && !inst.HasClass(st.Class) {
			return st, helper.NewFieldError("class", "kelas tidak terdaftar")
		}
	}
	st.UpdatedAt = s.Now()
	if err := s.Students.Put(ctx, tenant, st.ID, &st); err != nil {
		return st, err
	}
	return st, nil
}
