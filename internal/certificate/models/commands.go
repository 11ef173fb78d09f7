package models

import (
	"regexp"
	"strings"
)

// IssueCertificate carries an admin issue request. Legacy issues need
// CertNumber; modern issues generate one when it is empty.
type IssueCertificate struct {
	Cohort           Cohort
	CertNumber       string
	FirstName        string
	MiddleName       string
	Surname          string
	Suffix           string
	IssuedTo         string
	Type             CertificateType
	IssuedBy         string
	DateIssued       string
	Validity         Validity
	SchoolYear       string
	YearGraduated    string
	GooglePhotosLink string
}

// DisplayName prefers the structured name parts and falls back to IssuedTo.
func (c *IssueCertificate) DisplayName() string {
	if name := FullName(c.FirstName, c.MiddleName, c.Surname, c.Suffix); name != "" {
		return name
	}
	return FullName(c.IssuedTo)
}

// UpdateCertificate is a full overwrite of a certificate's mutable fields.
// CertNumber is honored for legacy rows only.
type UpdateCertificate struct {
	Cohort           Cohort
	CertNumber       string
	IssuedTo         string
	Type             CertificateType
	IssuedBy         string
	DateIssued       string
	Validity         Validity
	SchoolYear       string
	YearGraduated    string
	GooglePhotosLink string
}

// PromoteRegistrant carries the admin's choices when approving a registrant.
type PromoteRegistrant struct {
	Type             CertificateType
	IssuedBy         string
	DateIssued       string
	CertNumber       string
	Validity         Validity
	YearGraduated    string
	GooglePhotosLink string
}

// ListFilter narrows the dashboard listing. Zero values match everything.
type ListFilter struct {
	Cohort   Cohort
	Query    string
	Type     CertificateType
	Validity Validity
	// SortByYear orders by graduation year instead of newest id first.
	SortByYear SortOrder
}

type SortOrder string

const (
	SortNone       SortOrder = ""
	SortYearNewest SortOrder = "year_desc"
	SortYearOldest SortOrder = "year_asc"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// GraduationYear picks the last four-digit year in a school year label, so
// "2025-2026" yields "2026". Returns "" when no year is present.
func GraduationYear(schoolYear string) string {
	years := yearPattern.FindAllString(schoolYear, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// ContainsAny reports whether s contains any of the markers.
func ContainsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
