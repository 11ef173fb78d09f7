package models

import (
	"strings"
	"time"

	dErrors "romportal/pkg/domain-errors"
)

// Cohort selects the numbering policy a certificate was issued under.
// Legacy rows carry manually entered numbers; modern rows carry numbers
// generated from the serial counter.
type Cohort string

const (
	CohortLegacy Cohort = "legacy"
	CohortModern Cohort = "modern"
)

// ParseCohort parses a cohort selector, case-insensitively.
func ParseCohort(s string) (Cohort, error) {
	switch Cohort(strings.ToLower(strings.TrimSpace(s))) {
	case CohortLegacy:
		return CohortLegacy, nil
	case CohortModern:
		return CohortModern, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "cohort must be one of [legacy modern]")
	}
}

func (c Cohort) IsModern() bool {
	return c == CohortModern
}

func (c Cohort) String() string {
	return string(c)
}

// CertificateType is the kind of document issued.
type CertificateType string

const (
	TypeCompletion   CertificateType = "Certificate of Completion"
	TypeAppreciation CertificateType = "Certificate of Appreciation"
	TypeAwards       CertificateType = "Awards Certificate"
)

// CertificateTypes lists the known types in display order.
var CertificateTypes = []CertificateType{TypeCompletion, TypeAppreciation, TypeAwards}

// ParseCertificateType matches one of the known type labels exactly.
func ParseCertificateType(s string) (CertificateType, error) {
	t := CertificateType(strings.TrimSpace(s))
	for _, known := range CertificateTypes {
		if t == known {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "type must be one of [Certificate of Completion, Certificate of Appreciation, Awards Certificate]")
}

// Validity is the public standing of a certificate.
type Validity string

const (
	ValidityValid   Validity = "VALID"
	ValidityRevoked Validity = "REVOKED"
	ValidityPending Validity = "PENDING"
)

// ParseValidity parses a validity label; empty input defaults to VALID.
func ParseValidity(s string) (Validity, error) {
	v := Validity(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "":
		return ValidityValid, nil
	case ValidityValid, ValidityRevoked, ValidityPending:
		return v, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "validity must be one of [VALID REVOKED PENDING]")
	}
}

// Certificate is an issued document.
//
// Invariants:
//   - CertNumber is uppercase and unique within its Cohort
//   - CertNumber of a modern certificate never changes after issue
//   - IssuedTo is the uppercase, whitespace-normalized display name
type Certificate struct {
	ID                 int64           `json:"id"`
	Cohort             Cohort          `json:"cohort"`
	CertNumber         string          `json:"cert_number"`
	IssuedTo           string          `json:"issued_to"`
	Type               CertificateType `json:"type"`
	IssuedBy           string          `json:"issued_by"`
	DateIssued         string          `json:"date_issued"`
	Validity           Validity        `json:"validity"`
	SchoolYear         string          `json:"school_year"`
	YearGraduated      string          `json:"year_graduated"`
	GooglePhotosLink   string          `json:"google_photos_link"`
	SourceRegistrantID *int64          `json:"source_registrant_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Clone returns a deep copy safe to hand out of a store.
func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	out := *c
	if c.SourceRegistrantID != nil {
		id := *c.SourceRegistrantID
		out.SourceRegistrantID = &id
	}
	return &out
}

// Matches reports whether q appears in the name, number, school year or
// graduation year, case-insensitively. An empty query matches everything.
func (c *Certificate) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.IssuedTo), q) ||
		strings.Contains(strings.ToLower(c.CertNumber), q) ||
		strings.Contains(strings.ToLower(c.SchoolYear), q) ||
		strings.Contains(strings.ToLower(c.YearGraduated), q)
}

// SerialBucket is the grouping over which modern serial numbers are counted.
// When ByYear is false the bucket is the type alone and serials continue
// across graduation years.
type SerialBucket struct {
	Type          CertificateType
	YearGraduated string
	ByYear        bool
}

// Key is a stable identifier for locking the bucket.
func (b SerialBucket) Key() string {
	if b.ByYear {
		return "serial:" + b.YearGraduated + ":" + string(b.Type)
	}
	return "serial:" + string(b.Type)
}

// VerificationResult is the outcome of a public lookup. A miss is a result
// with Found false, never an error.
type VerificationResult struct {
	Found       bool         `json:"found"`
	Certificate *Certificate `json:"certificate,omitempty"`
	IsModern    bool         `json:"is_modern"`
}
