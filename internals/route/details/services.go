// file: internals/route/details/services.go
package details

import (
	"time"

	"go.uber.org/zap"

	applicantService "edudesk_backend/internals/features/admissions/applied_students/service"
	feeModel "edudesk_backend/internals/features/finance/fee_schedules/model"
	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	paymentService "edudesk_backend/internals/features/finance/payments/service"
	promotionService "edudesk_backend/internals/features/finance/promotions/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	instService "edudesk_backend/internals/features/institutions/service"
	studentModel "edudesk_backend/internals/features/students/model"
	studentService "edudesk_backend/internals/features/students/service"
	busService "edudesk_backend/internals/features/transport/buses/service"
	uploadService "edudesk_backend/internals/features/uploads/service"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/store"
)

type Options struct {
	WebP               helperOSS.WebPOptions
	Sweeper            uploadService.SweeperConfig
	PromotionWritesSec float64
	PromotionTimeout   time.Duration
	MidtransServerKey  string
	MidtransUseProd    bool
}

// Services: satu instance per proses, dibangun sekali di main.
type Services struct {
	Backend store.Backend
	Log     *zap.Logger
	Opts    Options

	Assets     *uploadService.AssetService
	Sweeper    *uploadService.Sweeper
	Fees       *feeService.Provider
	Buses      *busService.BusService
	Students   *studentService.StudentService
	Promoter   *promotionService.Promoter
	Payments   *paymentService.PaymentService
	Applicants *applicantService.ApplicantService
	Settings   *instService.Settings
}

func NewServices(b store.Backend, gw helperOSS.Gateway, log *zap.Logger, o Options) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	assets := uploadService.NewAssetService(gw, b, o.WebP, log.Named("assets"))
	fees := feeService.NewProvider(feeModel.NewFeeScheduleCollection(b))
	buses := busService.NewBusService(b)
	students := studentService.NewStudentService(studentService.Deps{
		Backend: b,
		Fees:    fees,
		Buses:   buses,
		Assets:  assets,
		Log:     log.Named("students"),
	})

	// gateway snap nil = pembayaran online nonaktif (503)
	var snap paymentService.SnapGateway
	if o.MidtransServerKey != "" {
		snap = paymentService.NewMidtransSnap(o.MidtransServerKey, o.MidtransUseProd)
	}

	return &Services{
		Backend:  b,
		Log:      log,
		Opts:     o,
		Assets:   assets,
		Sweeper:  uploadService.NewSweeper(gw, b, o.Sweeper, log.Named("sweeper")),
		Fees:     fees,
		Buses:    buses,
		Students: students,
		Promoter: promotionService.NewPromoter(
			studentModel.NewStudentCollection(b),
			instModel.NewInstitutionCollection(b),
			fees,
			o.PromotionWritesSec,
			log.Named("promotion"),
		),
		Payments:   paymentService.NewPaymentService(b, snap, log.Named("payments")),
		Applicants: applicantService.NewApplicantService(b, students, log.Named("admissions")),
		Settings:   instService.NewSettings(b, assets),
	}
}
