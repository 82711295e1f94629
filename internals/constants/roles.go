package constants

import (
	"fmt"
	"strings"
)

const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleStaff      = "staff"
	RoleTeacher    = "teacher"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess  = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyFinanceCanAccess = "❌ Hanya admin atau bagian keuangan yang boleh mengakses fitur %s."
	ErrOnlyOwnersCanAccess  = "❌ Hanya owner yang boleh mengakses fitur %s."
	ErrOnlyStaffCanAccess   = "❌ Hanya staf sekolah yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorFinance(feature string) string {
	return fmt.Sprintf(ErrOnlyFinanceCanAccess, feature)
}

func RoleErrorOwner(feature string) string {
	return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// RoleErrorFor: pesan 403 sesuai grup role yang diizinkan.
func RoleErrorFor(feature string, allowed []string) string {
	switch {
	case HasAnyRole(allowed, RoleStaff):
		return RoleErrorStaff(feature)
	case HasAnyRole(allowed, RoleAccountant):
		return RoleErrorFinance(feature)
	case len(allowed) == 1 && HasAnyRole(allowed, RoleOwner):
		return RoleErrorOwner(feature)
	default:
		return RoleErrorAdmin(feature)
	}
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	// owner selalu lolos guard admin
	AdminAndAbove = []string{
		RoleOwner,
		RoleAdmin,
	}

	FinanceRoles = []string{
		RoleOwner,
		RoleAdmin,
		RoleAccountant,
	}

	StaffAndAbove = []string{
		RoleOwner,
		RoleAdmin,
		RoleAccountant,
		RoleStaff,
	}

	OwnerOnly = []string{
		RoleOwner,
	}
)

// HasAnyRole: case-insensitive.
func HasAnyRole(have []string, allowed ...string) bool {
	for _, h := range have {
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSpace(h), a) {
				return true
			}
		}
	}
	return false
}
