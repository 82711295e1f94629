// file: internals/helpers/auth/tenant_context.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/constants"
)

// Locals keys (diisi middleware AuthJWT)
const (
	LocTenantCode = "tenant_code"
	LocRoles      = "roles"
	LocUserID     = "user_id"
	LocUserName   = "user_name"
)

// GetTenantCode: tenant dari token. Tanpa token tenant -> 401.
func GetTenantCode(c *fiber.Ctx) (string, error) {
	if v, ok := c.Locals(LocTenantCode).(string); ok {
		if s := strings.TrimSpace(v); s != "" {
			return s, nil
		}
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Tenant tidak ditemukan di token")
}

// GetTenantCodeFromPath: untuk route publik (/public/:tenant_code/...).
func GetTenantCodeFromPath(c *fiber.Ctx) (string, error) {
	s := strings.TrimSpace(c.Params("tenant_code"))
	if s == "" || strings.HasPrefix(s, "_") {
		return "", fiber.NewError(fiber.StatusBadRequest, "tenant_code wajib diisi")
	}
	return s, nil
}

func GetRoles(c *fiber.Ctx) []string {
	switch t := c.Locals(LocRoles).(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocUserID).(string)
	return strings.TrimSpace(s)
}

// EnsureRoles: 403 bila user tidak punya salah satu role.
func EnsureRoles(c *fiber.Ctx, feature string, allowed ...string) error {
	if constants.HasAnyRole(GetRoles(c), allowed...) {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorFor(feature, allowed))
}
