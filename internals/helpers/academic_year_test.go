package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAcademicYear(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "24-25", want: "25-26"},
		{in: "2024-2025", want: "2025-2026"},
		{in: "99-00", want: "00-01"},
		{in: "09-10", want: "10-11"},
		{in: " 24-25 ", want: "25-26"},
		{in: "2024", wantErr: true},
		{in: "ab-cd", wantErr: true},
		{in: "24-", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NextAcademicYear(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidAcademicYear(t *testing.T) {
	assert.True(t, ValidAcademicYear("24-25"))
	assert.True(t, ValidAcademicYear("2024-2025"))
	assert.True(t, ValidAcademicYear("99-00"))
	assert.False(t, ValidAcademicYear("24-26"))
	assert.False(t, ValidAcademicYear("2024-25"))
	assert.False(t, ValidAcademicYear("x"))
}
