package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "romportal/pkg/domain-errors"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"all parts", []string{"juan", "d", "dela cruz", "jr."}, "JUAN D DELA CRUZ JR."},
		{"skips empty middle and suffix", []string{"Ana", "", "Santos", ""}, "ANA SANTOS"},
		{"collapses whitespace", []string{"  maria  ", " ", "clara   de  leon", ""}, "MARIA CLARA DE LEON"},
		{"all empty", []string{"", "", "", ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullName(tt.parts...))
		})
	}
}

func TestParsers(t *testing.T) {
	t.Run("cohort is case-insensitive", func(t *testing.T) {
		c, err := ParseCohort(" Modern ")
		require.NoError(t, err)
		assert.Equal(t, CohortModern, c)
	})

	t.Run("unknown cohort is a validation error", func(t *testing.T) {
		_, err := ParseCohort("archive")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty validity defaults to VALID", func(t *testing.T) {
		v, err := ParseValidity("")
		require.NoError(t, err)
		assert.Equal(t, ValidityValid, v)
	})

	t.Run("type labels must match exactly", func(t *testing.T) {
		_, err := ParseCertificateType("Awards Certificate")
		require.NoError(t, err)
		_, err = ParseCertificateType("Award")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestSerialBucketKey(t *testing.T) {
	byType := SerialBucket{Type: TypeCompletion, YearGraduated: "2026"}
	byYear := SerialBucket{Type: TypeCompletion, YearGraduated: "2026", ByYear: true}
	assert.Equal(t, "serial:Certificate of Completion", byType.Key())
	assert.Equal(t, "serial:2026:Certificate of Completion", byYear.Key())
}

func TestCertificateMatches(t *testing.T) {
	c := &Certificate{IssuedTo: "JUAN DELA CRUZ", CertNumber: "RMMO-26J03D27C01", SchoolYear: "2025-2026"}
	assert.True(t, c.Matches("dela"))
	assert.True(t, c.Matches("26j03"))
	assert.True(t, c.Matches("2025"))
	assert.True(t, c.Matches(""))
	assert.False(t, c.Matches("santos"))
}

func TestGraduationYear(t *testing.T) {
	assert.Equal(t, "2026", GraduationYear("2025-2026"))
	assert.Equal(t, "2024", GraduationYear("SY 2024"))
	assert.Equal(t, "", GraduationYear("24-25"))
}

func TestIssueDisplayName(t *testing.T) {
	cmd := IssueCertificate{FirstName: "juan", Surname: "cruz"}
	assert.Equal(t, "JUAN CRUZ", cmd.DisplayName())

	cmd = IssueCertificate{IssuedTo: " maria  clara "}
	assert.Equal(t, "MARIA CLARA", cmd.DisplayName())
}

func TestContainsAny(t *testing.T) {
	markers := []string{"2025", "2026"}
	assert.True(t, ContainsAny("2025-2026", markers))
	assert.True(t, ContainsAny("2024-2025", markers))
	assert.False(t, ContainsAny("2023-2024", markers))
	assert.False(t, ContainsAny("2025", []string{" "}))
}
