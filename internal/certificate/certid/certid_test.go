package certid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"romportal/internal/certificate/models"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		surname  string
		date     string
		certType models.CertificateType
		serial   int
		want     string
	}{
		{"completion", "Juan", "Dela Cruz", "2026-03-27", models.TypeCompletion, 1, "RMMO-26J03D27C01"},
		{"awards", "ana", "santos", "2025-12-05", models.TypeAwards, 12, "RMMO-25A12S05A12"},
		{"appreciation", "Maria", "Reyes", "2024-07-09", models.TypeAppreciation, 3, "RMMO-24M07R09S03"},
		{"unknown type defaults to C", "Maria", "Reyes", "2024-07-09", models.CertificateType("Other"), 3, "RMMO-24M07R09C03"},
		{"serial is never truncated", "Juan", "Cruz", "2026-01-02", models.TypeCompletion, 104, "RMMO-26J01C02C104"},
		{"empty date falls back", "Juan", "Cruz", "", models.TypeCompletion, 1, "RMMO-26J01C01C01"},
		{"partial date falls back per part", "Juan", "Cruz", "2023", models.TypeCompletion, 5, "RMMO-23J01C01C05"},
		{"empty names omit initials", "", "", "2026-03-27", models.TypeCompletion, 1, "RMMO-260327C01"},
		{"malformed date fragments are uppercased", "Juan", "Cruz", "20ab-0x-1y", models.TypeCompletion, 1, "RMMO-ABJ0XC1YC01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.first, tt.surname, tt.date, tt.certType, tt.serial))
		})
	}
}

func TestGenerateIsPure(t *testing.T) {
	a := Generate("Juan", "Dela Cruz", "2026-03-27", models.TypeCompletion, 7)
	b := Generate("Juan", "Dela Cruz", "2026-03-27", models.TypeCompletion, 7)
	assert.Equal(t, a, b)
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase bare code", "26j03d27c01", "RMMO-26J03D27C01"},
		{"already prefixed", "RMMO-26J03D27C01", "RMMO-26J03D27C01"},
		{"doubled prefix", "rmmo-RMMO-26J03D27C01", "RMMO-26J03D27C01"},
		{"surrounding whitespace", "  rmmo-26j03d27c01 \n", "RMMO-26J03D27C01"},
		{"share link query", "https://portal.example.org/?c=26J03D27C01", "RMMO-26J03D27C01"},
		{"query with prefix", "https://portal.example.org/verify?c=RMMO-26J03D27C01&x=1", "RMMO-26J03D27C01"},
		{"trailing path segment", "https://portal.example.org/verify/26j03d27c01/", "RMMO-26J03D27C01"},
		{"legacy number with slash", "rmmo-2019/015", "RMMO-2019/015"},
		{"legacy number with question mark", "LEG?42", "RMMO-LEG?42"},
		{"relative path is not unwrapped", "batch/2019/015", "RMMO-BATCH/2019/015"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.raw))
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "RMMO-LEGACY-0042", NormalizeNumber(" legacy-0042 "))
	assert.Equal(t, "RMMO-A/B", NormalizeNumber("rmmo-a/b"))
	assert.Equal(t, "", NormalizeNumber(""))
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "https://portal.example.org/?c=26J03D27C01",
		ShareLink("https://portal.example.org/", "RMMO-26J03D27C01"))
}

func FuzzNormalizeCode(f *testing.F) {
	f.Add("26j03d27c01")
	f.Add("https://x.org/?c=rmmo-rmmo-abc")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		got := NormalizeCode(raw)
		if got == "" {
			return
		}
		if !strings.HasPrefix(got, Prefix) {
			t.Fatalf("missing prefix: %q", got)
		}
		if strings.HasPrefix(got, Prefix+Prefix) {
			t.Fatalf("doubled prefix: %q", got)
		}
		if got != strings.ToUpper(got) {
			t.Fatalf("not uppercase: %q", got)
		}
	})
}
