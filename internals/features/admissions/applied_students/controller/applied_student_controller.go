// file: internals/features/admissions/applied_students/controller/applied_student_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "edudesk_backend/internals/features/admissions/applied_students/dto"
	model "edudesk_backend/internals/features/admissions/applied_students/model"
	"edudesk_backend/internals/features/admissions/applied_students/service"
	studentDto "edudesk_backend/internals/features/students/dto"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

var validate = validator.New()

type ApplicantHandler struct {
	Svc *service.ApplicantService
}

func NewApplicantHandler(svc *service.ApplicantService) *ApplicantHandler {
	return &ApplicantHandler{Svc: svc}
}

var applicantSort = map[string]string{
	"created_at":     "createdAt",
	"application_no": "applicationNo",
	"first_name":     "firstName",
	"class_applied":  "classApplied",
}

// POST /api/public/:tenant_code/applications
func (h *ApplicantHandler) Apply(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCodeFromPath(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.ApplyRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}

	a, err := h.Svc.Apply(c.UserContext(), tenant, in.ToModel())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "application received", dto.PublicReceipt{
		ApplicationNo: a.ApplicationNo,
		FullName:      a.FullName(),
		ClassApplied:  a.ClassApplied,
		AcademicYear:  a.AcademicYear,
		Status:        a.Status,
	})
}

// filter: ?status=&class=&academic_year=&q=
func (h *ApplicantHandler) collect(c *fiber.Ctx, tenant string, p helper.Params) ([]model.AppliedStudent, int64, error) {
	var filters []store.Filter
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		switch model.ApplicationStatus(v) {
		case model.ApplicationApplied, model.ApplicationApproved, model.ApplicationRejected, model.ApplicationAdmitted:
			filters = append(filters, store.Filter{Field: "status", Value: v})
		default:
			return nil, 0, helper.NewFieldError("status", "oneof=applied approved rejected admitted")
		}
	}
	if v := strings.TrimSpace(c.Query("class")); v != "" {
		filters = append(filters, store.Filter{Field: "classApplied", Value: v})
	}
	if v := strings.TrimSpace(c.Query("academic_year")); v != "" {
		filters = append(filters, store.Filter{Field: "academicYear", Value: v})
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return h.Svc.Applicants.Find(c.UserContext(), tenant, p.StoreQuery(applicantSort, "created_at", filters...))
	}
	all, _, err := h.Svc.Applicants.Find(c.UserContext(), tenant, p.FullQuery(applicantSort, "created_at", filters...))
	if err != nil {
		return nil, 0, err
	}
	hit := make([]model.AppliedStudent, 0, len(all))
	for _, a := range all {
		if helper.MatchQ(q, a.FullName(), a.ApplicationNo, a.Phone, a.GuardianName) {
			hit = append(hit, a)
		}
	}
	return helper.PageSlice(hit, p), int64(len(hit)), nil
}

// GET /api/a/applied-students
func (h *ApplicantHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := h.collect(c, tenant, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildMeta(total, p))
}

var applicantExportColumns = []helper.ExcelColumn[model.AppliedStudent]{
	{Header: "Application No", Value: func(a model.AppliedStudent) any { return a.ApplicationNo }},
	{Header: "Name", Value: func(a model.AppliedStudent) any { return a.FullName() }},
	{Header: "Gender", Value: func(a model.AppliedStudent) any { return a.Gender }},
	{Header: "Date of Birth", Value: func(a model.AppliedStudent) any { return a.DateOfBirth }},
	{Header: "Guardian", Value: func(a model.AppliedStudent) any { return a.GuardianName }},
	{Header: "Phone", Value: func(a model.AppliedStudent) any { return a.Phone }},
	{Header: "Email", Value: func(a model.AppliedStudent) any { return a.Email }},
	{Header: "Class", Value: func(a model.AppliedStudent) any { return a.ClassApplied }},
	{Header: "Academic Year", Value: func(a model.AppliedStudent) any { return a.AcademicYear }},
	{Header: "Previous School", Value: func(a model.AppliedStudent) any { return a.PreviousSchool }},
	{Header: "Status", Value: func(a model.AppliedStudent) any { return string(a.Status) }},
	{Header: "Applied At", Value: func(a model.AppliedStudent) any { return a.CreatedAt }},
}

// GET /api/a/applied-students/export
func (h *ApplicantHandler) Export(c *fiber.Ctx) error {
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
	buf, err := helper.BuildExcel("Applicants", applicantExportColumns, rows)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SendExcel(c, helper.ExportFilename("applied_students", tenant, h.Svc.Now()), buf)
}

// GET /api/a/applied-students/:id
func (h *ApplicantHandler) Get(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	a, err := h.Svc.Applicants.Get(c.UserContext(), tenant, c.Params("id"))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(a))
}

// POST /api/a/applied-students/:id/review
func (h *ApplicantHandler) Review(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.ReviewRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	a, err := h.Svc.Review(c.UserContext(), tenant, c.Params("id"), service.Decision(in.Decision), in.Note, helperAuth.GetUserID(c))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "application "+string(a.Status), dto.FromModel(a))
}

// POST /api/a/applied-students/:id/admit
func (h *ApplicantHandler) Admit(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var in dto.AdmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
		}
	}
	if err := validate.Struct(in); err != nil {
		return helper.FromError(c, err)
	}
	if in.AllFee != nil {
		if f := studentDto.NegativeFee(*in.AllFee); f != "" {
			return helper.FieldError(c, f, "must not be negative")
		}
	}

	a, st, err := h.Svc.Admit(c.UserContext(), tenant, c.Params("id"), service.Admission{Division: in.Division, AllFee: in.AllFee})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "student admitted", fiber.Map{
		"application": dto.FromModel(a),
		"student":     studentDto.ToDetail(st),
	})
}
