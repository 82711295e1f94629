// file: internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	applicantController "edudesk_backend/internals/features/admissions/applied_students/controller"
	ApplicantRoute "edudesk_backend/internals/features/admissions/applied_students/route"
	instController "edudesk_backend/internals/features/institutions/controller"
	InstitutionRoute "edudesk_backend/internals/features/institutions/route"
	studentController "edudesk_backend/internals/features/students/controller"
	StudentRoute "edudesk_backend/internals/features/students/route"
)

func SchoolPublicRoutes(r fiber.Router, s *Services, applyMw ...fiber.Handler) {
	InstitutionRoute.InstitutionPublicRoutes(r, instController.NewInstitutionHandler(s.Settings))
	ApplicantRoute.AppliedStudentPublicRoutes(r, applicantController.NewApplicantHandler(s.Applicants), applyMw...)
}

func SchoolAdminRoutes(r fiber.Router, s *Services) {
	InstitutionRoute.InstitutionAdminRoutes(r, instController.NewInstitutionHandler(s.Settings))
	StudentRoute.StudentAdminRoutes(r, studentController.NewStudentHandler(s.Students))
	ApplicantRoute.AppliedStudentAdminRoutes(r, applicantController.NewApplicantHandler(s.Applicants))
}
