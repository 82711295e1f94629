// file: internals/middlewares/features/is_school_admin.go
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/constants"
	helperAuth "edudesk_backend/internals/helpers/auth"
)

/* ==========================
   Guard berbasis role di token (tenant sudah di-scope oleh AuthJWT)
========================== */

// RequireRoles: 401 bila tenant belum ter-hydrate, 403 bila role tidak cocok.
func RequireRoles(feature string, allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := helperAuth.GetTenantCode(c); err != nil {
			return err
		}
		if err := helperAuth.EnsureRoles(c, feature, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// IsSchoolAdmin: owner/admin.
func IsSchoolAdmin() fiber.Handler {
	return RequireRoles("ini", constants.AdminAndAbove...)
}

// IsFinance: owner/admin/accountant (pembayaran & biaya).
func IsFinance() fiber.Handler {
	return RequireRoles("keuangan", constants.FinanceRoles...)
}

// IsStaff: semua role staf sekolah.
func IsStaff() fiber.Handler {
	return RequireRoles("ini", constants.StaffAndAbove...)
}
