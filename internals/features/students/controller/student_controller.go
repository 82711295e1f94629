// file: internals/features/students/controller/student_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	feeCalc "edudesk_backend/internals/features/finance/fee_snapshot/service"
	dto "edudesk_backend/internals/features/students/dto"
	model "edudesk_backend/internals/features/students/model"
	"edudesk_backend/internals/features/students/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type StudentHandler struct {
	Svc *service.StudentService
}

func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{Svc: svc}
}

var studentSort = map[string]string{
	"created_at":    "createdAt",
	"updated_at":    "updatedAt",
	"first_name":    "firstName",
	"class":         "class",
	"academic_year": "academicYear",
	"fee_id":        "feeId",
}

// POST /api/a/students
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StudentCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if in.AllFee != nil {
		if f := dto.NegativeFee(*in.AllFee); f != "" {
			return helper.FieldError(c, f, "must not be negative")
		}
	}

	st, err := h.Svc.Create(c.UserContext(), tenant, in.ToModel(), in.AllFee != nil)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "student created", dto.ToDetail(st))
}

// filter: ?class=&division=&academic_year=&status=&bus_plate=&q=
func (h *StudentHandler) collect(c *fiber.Ctx, tenant string, p helper.Params) ([]model.Student, int64, error) {
	var filters []store.Filter
	for param, field := range map[string]string{
		"class":         "class",
		"division":      "division",
		"course":        "course",
		"academic_year": "academicYear",
		"bus_plate":     "busPlate",
		"bus_stop":      "busStop",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			filters = append(filters, store.Filter{Field: field, Value: v})
		}
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		switch model.StudentStatus(v) {
		case model.StudentStatusNew, model.StudentStatusCurrent, model.StudentStatusInactive:
			filters = append(filters, store.Filter{Field: "status", Value: v})
		default:
			return nil, 0, helper.NewFieldError("status", "oneof=new current inactive")
		}
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return h.Svc.Students.Find(c.UserContext(), tenant, p.StoreQuery(studentSort, "created_at", filters...))
	}
	all, _, err := h.Svc.Students.Find(c.UserContext(), tenant, p.FullQuery(studentSort, "created_at", filters...))
	if err != nil {
		return nil, 0, err
	}
	hit := make([]model.Student, 0, len(all))
	for _, s := range all {
		if helper.MatchQ(q, s.FullName(), s.FeeID, s.AdmissionNo, s.GuardianName, s.Phone) {
			hit = append(hit, s)
		}
	}
	return helper.PageSlice(hit, p), int64(len(hit)), nil
}

// GET /api/a/students
func (h *StudentHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToListItems(rows), helper.BuildMeta(total, p))
}

func outstandingColumn(t model.FeeType) helper.ExcelColumn[model.Student] {
	return helper.ExcelColumn[model.Student]{
		Header: "Outstanding " + string(t),
		Value:  func(s model.Student) any { return feeCalc.OutstandingFor(&s, t) },
	}
}

func studentExportColumns() []helper.ExcelColumn[model.Student] {
	cols := []helper.ExcelColumn[model.Student]{
		{Header: "Fee ID", Value: func(s model.Student) any { return s.FeeID }},
		{Header: "Admission No", Value: func(s model.Student) any { return s.AdmissionNo }},
		{Header: "Name", Value: func(s model.Student) any { return s.FullName() }},
		{Header: "Class", Value: func(s model.Student) any { return s.Class }},
		{Header: "Division", Value: func(s model.Student) any { return s.Division }},
		{Header: "Academic Year", Value: func(s model.Student) any { return s.AcademicYear }},
		{Header: "Status", Value: func(s model.Student) any { return string(s.Status) }},
		{Header: "Guardian", Value: func(s model.Student) any { return s.GuardianName }},
		{Header: "Phone", Value: func(s model.Student) any { return s.Phone }},
		{Header: "Bus Plate", Value: func(s model.Student) any { return s.BusPlate }},
		{Header: "Bus Stop", Value: func(s model.Student) any { return s.BusStop }},
	}
	for _, t := range model.CurrentFeeTypes {
		cols = append(cols, outstandingColumn(t))
	}
	cols = append(cols,
		outstandingColumn(model.FeeTypeLastYearBalance),
		outstandingColumn(model.FeeTypeLastYearTransport),
		helper.ExcelColumn[model.Student]{Header: "Total Outstanding", Value: func(s model.Student) any { return feeCalc.TotalOutstanding(&s) }},
	)
	return cols
}

// GET /api/a/students/export
func (h *StudentHandler) Export(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.ExportOpts)
	if c.Query("per_page") == "" {
		p.PerPage, p.Page, p.All = helper.ExportOpts.AllHardCap, 1, true
	}
	rows, _, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	buf, err := helper.BuildExcel("Students", studentExportColumns(), rows)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SendExcel(c, helper.ExportFilename("students", tenant, h.Svc.Now()), buf)
}

// GET /api/a/students/:id
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	st, err := h.Svc.Students.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDetail(st))
}

// PATCH /api/a/students/:id
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StudentUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}

	if f := in.AllFee.Negative(); f != "" {
		return helper.FieldError(c, f, "must not be negative")
	}

	st, err := h.Svc.Update(c.UserContext(), tenant, c.Params("id"), in.Apply)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "student updated", dto.ToDetail(st))
}

// PATCH /api/a/students/:id/status
func (h *StudentHandler) SetStatus(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	st, err := h.Svc.SetStatus(c.UserContext(), tenant, c.Params("id"), model.StudentStatus(in.Status))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "status updated", dto.ToListItem(st))
}

// GET /api/a/students/:id/outstanding?fee_type=transportFee
func (h *StudentHandler) Outstanding(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	st, err := h.Svc.Students.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}

	bd := feeCalc.Compute(&st)
	out := dto.OutstandingResponse{
		StudentID:    st.ID,
		Amount:       bd.Total,
		Breakdown:    bd,
		AcademicYear: st.AcademicYear,
	}
	if raw := strings.TrimSpace(c.Query("fee_type")); raw != "" {
		ft, ok := model.ParseFeeType(raw)
		if !ok {
			return helper.FieldError(c, "fee_type", "unknown fee type")
		}
		out.FeeType = ft
		out.Amount = feeCalc.OutstandingFor(&st, ft)
	}
	return helper.JsonOK(c, "ok", out)
}

// PUT /api/a/students/:id/transport
func (h *StudentHandler) AssignTransport(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.TransportRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if in.TransportFee != nil && in.TransportFee.IsNegative() {
		return helper.FieldError(c, "transportFee", "must not be negative")
	}
	st, err := h.Svc.AssignTransport(c.UserContext(), tenant, c.Params("id"), service.TransportAssignment{
		BusPlate:             in.BusPlate,
		BusStop:              in.BusStop,
		TransportFee:         in.TransportFee,
		TransportFeeDiscount: in.TransportFeeDiscount,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "transport updated", dto.ToDetail(st))
}

// POST /api/a/students/:id/avatar (multipart: file)
func (h *StudentHandler) UploadAvatar(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.FieldError(c, "file", "required")
	}
	blob, err := h.Svc.Assets.PrepareImage(fh, service.AvatarMaxSide)
	if err != nil {
		return helper.FromError(c, err)
	}
	st, err := h.Svc.SetAvatar(c.UserContext(), tenant, c.Params("id"), blob)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "avatar updated", st.Avatar)
}

// POST /api/a/students/:id/documents (multipart: file)
func (h *StudentHandler) UploadDocument(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.FieldError(c, "file", "required")
	}
	blob, err := h.Svc.Assets.PrepareDocument(fh)
	if err != nil {
		return helper.FromError(c, err)
	}
	st, doc, err := h.Svc.AddDocument(c.UserContext(), tenant, c.Params("id"), blob)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "document uploaded", dto.DocumentResponse{Document: doc, Documents: st.Documents})
}

// DELETE /api/a/students/:id/documents?key=
func (h *StudentHandler) DeleteDocument(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		return helper.FieldError(c, "key", "required")
	}
	st, err := h.Svc.RemoveDocument(c.UserContext(), tenant, c.Params("id"), key)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "document deleted", fiber.Map{"documents": st.Documents})
}
