package controller

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	feeModel "edudesk_backend/internals/features/finance/fee_schedules/model"
	feeService "edudesk_backend/internals/features/finance/fee_schedules/service"
	instModel "edudesk_backend/internals/features/institutions/model"
	dto "edudesk_backend/internals/features/students/dto"
	model "edudesk_backend/internals/features/students/model"
	"edudesk_backend/internals/features/students/service"
	busModel "edudesk_backend/internals/features/transport/buses/model"
	busService "edudesk_backend/internals/features/transport/buses/service"
	uploadService "edudesk_backend/internals/features/uploads/service"
	"edudesk_backend/internals/helpers/apitest"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/helpers/oss/osstest"
	"edudesk_backend/internals/store/memstore"
)

type fixture struct {
	app *fiber.App
	svc *service.StudentService
	gw  *osstest.Gateway
}

func newStudentApp(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()

	insts := instModel.NewInstitutionCollection(mem)
	require.NoError(t, insts.Insert(ctx, "acme", "acme", &instModel.Institution{
		TenantCode: "acme", Name: "Acme Public School", AcademicYear: "25-26",
		Classes: []string{"5", "6", "7"},
	}))

	schedules := feeModel.NewFeeScheduleCollection(mem)
	require.NoError(t, schedules.Insert(ctx, "acme", "f1", &feeModel.FeeSchedule{
		ID: "f1", TenantCode: "acme", AcademicYear: "25-26", ClassName: "6", Tier: "standard",
		AdmissionFee: decimal.NewFromInt(1000), TutionFee: decimal.NewFromInt(20000),
	}))

	buses := busService.NewBusService(mem)
	require.NoError(t, buses.Buses.Insert(ctx, "acme", "b1", &busModel.Bus{
		ID: "b1", TenantCode: "acme", BusNo: "1", NumberPlate: "KA01AB1234", Active: true,
		Stops: []busModel.BusStop{{Name: "Market", Fee: decimal.NewFromInt(4000)}},
	}))
	require.NoError(t, buses.Buses.Insert(ctx, "acme", "b2", &busModel.Bus{
		ID: "b2", TenantCode: "acme", BusNo: "2", NumberPlate: "KA01AB9999", Active: false,
		Stops: []busModel.BusStop{{Name: "Market", Fee: decimal.NewFromInt(4000)}},
	}))

	gw := osstest.New()
	svc := service.NewStudentService(service.Deps{
		Backend: mem,
		Fees:    feeService.NewProvider(schedules),
		Buses:   buses,
		Assets:  uploadService.NewAssetService(gw, mem, helperOSS.DefaultWebPOptions(), zap.NewNop()),
	})
	svc.Now = func() time.Time { return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) }

	h := NewStudentHandler(svc)
	app := apitest.NewApp("acme", "admin")
	g := app.Group("/students")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Patch("/:id/status", h.SetStatus)
	g.Get("/:id/outstanding", h.Outstanding)
	g.Put("/:id/transport", h.AssignTransport)
	g.Post("/:id/avatar", h.UploadAvatar)
	g.Post("/:id/documents", h.UploadDocument)
	g.Delete("/:id/documents", h.DeleteDocument)
	return fixture{app: app, svc: svc, gw: gw}
}

func createStudent(t *testing.T, f fixture, body fiber.Map) dto.StudentDetail {
	t.Helper()
	res := apitest.JSON(t, f.app, "POST", "/students", body)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Body))
	var out dto.StudentDetail
	res.Decode(t, &out)
	return out
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestStudentCreate_FeesFromSchedule(t *testing.T) {
	f := newStudentApp(t)

	st := createStudent(t, f, fiber.Map{"firstName": "Asha", "lastName": "Rao", "class": "6"})
	assert.Equal(t, "ACME-F0001", st.FeeID)
	assert.Equal(t, model.StudentStatusNew, st.Status)
	assert.Equal(t, "25-26", st.AcademicYear)
	assert.Equal(t, "Asha Rao", st.FullName)
	assert.True(t, st.AllFee.SchoolFees.TutionFee.Equal(dec(20000)))
	assert.True(t, st.Outstanding.Total.Equal(dec(21000)), st.Outstanding.Total.String())

	// kelas tanpa fee schedule: biaya nol, tetap tersimpan
	st2 := createStudent(t, f, fiber.Map{"firstName": "Ben", "class": "7"})
	assert.Equal(t, "ACME-F0002", st2.FeeID)
	assert.True(t, st2.Outstanding.Total.IsZero())

	// allFee eksplisit mengalahkan schedule
	st3 := createStudent(t, f, fiber.Map{"firstName": "Chen", "class": "6",
		"allFee": fiber.Map{"schoolFees": fiber.Map{"TutionFee": 15000}, "lastYearBalanceFee": 500}})
	assert.True(t, st3.Outstanding.Total.Equal(dec(15500)), st3.Outstanding.Total.String())
}

func TestStudentCreate_Validation(t *testing.T) {
	f := newStudentApp(t)

	res := apitest.JSON(t, f.app, "POST", "/students", fiber.Map{"class": "6"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Env.Errors, "firstName")

	res = apitest.JSON(t, f.app, "POST", "/students", fiber.Map{"firstName": "X", "class": "12"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)

	res = apitest.JSON(t, f.app, "POST", "/students", fiber.Map{"firstName": "X", "class": "6",
		"allFee": fiber.Map{"hostelFee": -10}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Env.Errors, "allFee.hostelFee")
}

func TestStudentListFiltersAndSearch(t *testing.T) {
	f := newStudentApp(t)
	createStudent(t, f, fiber.Map{"firstName": "Asha", "class": "6", "division": "A"})
	createStudent(t, f, fiber.Map{"firstName": "Ben", "class": "6", "division": "B"})
	b := createStudent(t, f, fiber.Map{"firstName": "Beatriz", "class": "5"})

	res := apitest.JSON(t, f.app, "GET", "/students?class=6", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	var rows []dto.StudentListItem
	res.Decode(t, &rows)
	assert.Len(t, rows, 2)

	res = apitest.JSON(t, f.app, "GET", "/students?q=be", nil)
	res.Decode(t, &rows)
	assert.Len(t, rows, 2)

	res = apitest.JSON(t, f.app, "GET", "/students?q=be&class=5", nil)
	res.Decode(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)

	res = apitest.JSON(t, f.app, "GET", "/students?status=graduated", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)
}

func TestStudentUpdateAndStatus(t *testing.T) {
	f := newStudentApp(t)
	st := createStudent(t, f, fiber.Map{"firstName": "Asha", "class": "6"})

	res := apitest.JSON(t, f.app, "PATCH", "/students/"+st.ID, fiber.Map{"class": "7", "allFee": fiber.Map{"hostelFee": 9000}})
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	var upd dto.StudentDetail
	res.Decode(t, &upd)
	assert.Equal(t, "7", upd.Class)
	assert.True(t, upd.Outstanding.Items[model.FeeTypeHostel].Equal(dec(9000)))

	res = apitest.JSON(t, f.app, "PATCH", "/students/"+st.ID, fiber.Map{"class": "99"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)

	res = apitest.JSON(t, f.app, "PATCH", "/students/"+st.ID, fiber.Map{"allFee": fiber.Map{"messFee": -1}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)

	res = apitest.JSON(t, f.app, "PATCH", "/students/"+st.ID+"/status", fiber.Map{"status": "current"})
	require.Equal(t, fiber.StatusOK, res.Status)
	res = apitest.JSON(t, f.app, "PATCH", "/students/"+st.ID+"/status", fiber.Map{"status": "gone"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)

	res = apitest.JSON(t, f.app, "GET", "/students/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
}

func TestStudentTransportAndOutstanding(t *testing.T) {
	f := newStudentApp(t)
	st := createStudent(t, f, fiber.Map{"firstName": "Asha", "class": "6"})

	res := apitest.JSON(t, f.app, "PUT", "/students/"+st.ID+"/transport", fiber.Map{"busPlate": "ka 01 ab 1234", "busStop": "market"})
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	var withBus dto.StudentDetail
	res.Decode(t, &withBus)
	assert.Equal(t, "KA01AB1234", withBus.BusPlate)
	assert.Equal(t, "Market", withBus.BusStop)
	assert.True(t, withBus.AllFee.TransportFee.Equal(dec(4000)))

	res = apitest.JSON(t, f.app, "GET", "/students/"+st.ID+"/outstanding?fee_type=TransportFee", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	var out dto.OutstandingResponse
	res.Decode(t, &out)
	assert.Equal(t, model.FeeTypeTransport, out.FeeType)
	assert.True(t, out.Amount.Equal(dec(4000)))
	assert.True(t, out.Breakdown.Total.Equal(dec(25000)), out.Breakdown.Total.String())

	res = apitest.JSON(t, f.app, "GET", "/students/"+st.ID+"/outstanding?fee_type=libraryFee", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)

	cases := []struct {
		name  string
		body  fiber.Map
		field string
	}{
		{"unknown bus", fiber.Map{"busPlate": "XX00", "busStop": "Market"}, "busPlate"},
		{"unknown stop", fiber.Map{"busPlate": "KA01AB1234", "busStop": "Airport"}, "busStop"},
		{"inactive bus", fiber.Map{"busPlate": "KA01AB9999", "busStop": "Market"}, "busPlate"},
		{"stop required", fiber.Map{"busPlate": "KA01AB1234"}, "busStop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := apitest.JSON(t, f.app, "PUT", "/students/"+st.ID+"/transport", tc.body)
			assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)
			assert.Contains(t, res.Env.Errors, tc.field)
		})
	}

	// plat kosong = lepas transport
	res = apitest.JSON(t, f.app, "PUT", "/students/"+st.ID+"/transport", fiber.Map{"busPlate": ""})
	require.Equal(t, fiber.StatusOK, res.Status)
	var cleared dto.StudentDetail
	res.Decode(t, &cleared)
	assert.Empty(t, cleared.BusPlate)
	assert.True(t, cleared.AllFee.TransportFee.IsZero())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(y), B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStudentAvatarAndDocuments(t *testing.T) {
	f := newStudentApp(t)
	st := createStudent(t, f, fiber.Map{"firstName": "Asha", "class": "6"})

	res := apitest.Upload(t, f.app, "POST", "/students/"+st.ID+"/avatar", "me.png", pngBytes(t), nil)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	first, err := f.svc.Students.Get(context.Background(), "acme", st.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	assert.Equal(t, "image/webp", first.Avatar.ContentType)

	res = apitest.Upload(t, f.app, "POST", "/students/"+st.ID+"/avatar", "me2.png", pngBytes(t), nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	second, err := f.svc.Students.Get(context.Background(), "acme", st.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Avatar.Key, second.Avatar.Key)
	assert.False(t, f.gw.Has(first.Avatar.Key), "old avatar removed")
	assert.True(t, f.gw.Has(second.Avatar.Key))

	res = apitest.Upload(t, f.app, "POST", "/students/"+st.ID+"/avatar", "notes.txt", []byte("hello"), nil)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, res.Status)

	res = apitest.Upload(t, f.app, "POST", "/students/"+st.ID+"/documents", "tc.pdf", []byte("%PDF-1.4 x"), nil)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Body))
	var doc dto.DocumentResponse
	res.Decode(t, &doc)
	require.Len(t, doc.Documents, 1)
	assert.True(t, f.gw.Has(doc.Document.Key))

	res = apitest.Upload(t, f.app, "POST", "/students/"+st.ID+"/documents", "run.exe", []byte("MZ"), nil)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, res.Status)

	res = apitest.JSON(t, f.app, "DELETE", "/students/"+st.ID+"/documents?key="+url.QueryEscape(doc.Document.Key), nil)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	assert.False(t, f.gw.Has(doc.Document.Key))

	res = apitest.JSON(t, f.app, "DELETE", "/students/"+st.ID+"/documents?key=missing", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
}

func TestStudentExport(t *testing.T) {
	f := newStudentApp(t)
	createStudent(t, f, fiber.Map{"firstName": "Asha", "class": "6"})
	createStudent(t, f, fiber.Map{"firstName": "Ben", "class": "7"})

	res := apitest.JSON(t, f.app, "GET", "/students/export?class=6", nil)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	assert.Contains(t, res.Header.Get(fiber.HeaderContentDisposition), "students_acme_")

	wb, err := excelize.OpenReader(bytes.NewReader(res.Body))
	require.NoError(t, err)
	rows, err := wb.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fee ID", rows[0][0])
	assert.Equal(t, "Total Outstanding", rows[0][len(rows[0])-1])
	assert.Equal(t, "ACME-F0001", rows[1][0])
	assert.Equal(t, "21000", rows[1][len(rows[1])-1])
}
