// file: internals/helpers/academic_year.go
package helper

import (
	"fmt"
	"strconv"
	"strings"
)

// NextAcademicYear menaikkan kedua bagian "start-end" satu tahun, lebar digit dipertahankan.
//
//	"24-25"     -> "25-26"
//	"2024-2025" -> "2025-2026"
//	"99-00"     -> "00-01"
func NextAcademicYear(year string) (string, error) {
	parts := strings.Split(strings.TrimSpace(year), "-")
	if len(parts) != 2 {
		return "", fmt.Errorf("academic year %q: want start-end", year)
	}
	out := make([]string, 2)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p == "" {
			return "", fmt.Errorf("academic year %q: bad part %q", year, p)
		}
		n++
		if len(p) <= 2 {
			out[i] = fmt.Sprintf("%02d", n%100)
			continue
		}
		out[i] = fmt.Sprintf("%0*d", len(p), n)
	}
	return out[0] + "-" + out[1], nil
}

// ValidAcademicYear: format start-end, end = start + 1 (modulo lebar 2 digit).
func ValidAcademicYear(year string) bool {
	parts := strings.Split(strings.TrimSpace(year), "-")
	if len(parts) != 2 || len(parts[0]) != len(parts[1]) {
		return false
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil || a < 0 || b < 0 {
		return false
	}
	if len(parts[0]) == 2 {
		return (a+1)%100 == b
	}
	return a+1 == b
}
