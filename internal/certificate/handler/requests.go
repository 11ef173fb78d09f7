package handler

import (
	"strings"

	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/validation"
)

// IssueRequest is the body of POST /admin/certificates.
type IssueRequest struct {
	Cohort           string `json:"cohort" validate:"required,oneof=legacy modern"`
	CertNumber       string `json:"cert_number" validate:"max=64"`
	FirstName        string `json:"first_name" validate:"max=100"`
	MiddleName       string `json:"middle_name" validate:"max=100"`
	Surname          string `json:"surname" validate:"max=100"`
	Suffix           string `json:"suffix" validate:"max=10"`
	IssuedTo         string `json:"issued_to" validate:"max=200"`
	Type             string `json:"type" validate:"required"`
	IssuedBy         string `json:"issued_by" validate:"max=200"`
	DateIssued       string `json:"date_issued" validate:"omitempty,datetime=2006-01-02"`
	Validity         string `json:"validity" validate:"omitempty,oneof=VALID REVOKED PENDING"`
	SchoolYear       string `json:"school_year" validate:"max=20"`
	YearGraduated    string `json:"year_graduated" validate:"omitempty,numeric,len=4"`
	GooglePhotosLink string `json:"google_photos_link" validate:"omitempty,url"`

	certType models.CertificateType
}

// Validate implements httputil.Validatable.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Cohort = strings.ToLower(strings.TrimSpace(r.Cohort))
	r.Validity = strings.ToUpper(strings.TrimSpace(r.Validity))
	r.DateIssued = strings.TrimSpace(r.DateIssued)
	r.YearGraduated = strings.TrimSpace(r.YearGraduated)
	r.GooglePhotosLink = strings.TrimSpace(r.GooglePhotosLink)
	if err := validation.Struct(r); err != nil {
		return err
	}
	t, err := models.ParseCertificateType(r.Type)
	if err != nil {
		return err
	}
	r.certType = t
	return nil
}

func (r *IssueRequest) toCommand() models.IssueCertificate {
	return models.IssueCertificate{
		Cohort:           models.Cohort(r.Cohort),
		CertNumber:       r.CertNumber,
		FirstName:        r.FirstName,
		MiddleName:       r.MiddleName,
		Surname:          r.Surname,
		Suffix:           r.Suffix,
		IssuedTo:         r.IssuedTo,
		Type:             r.certType,
		IssuedBy:         r.IssuedBy,
		DateIssued:       r.DateIssued,
		Validity:         models.Validity(r.Validity),
		SchoolYear:       r.SchoolYear,
		YearGraduated:    r.YearGraduated,
		GooglePhotosLink: r.GooglePhotosLink,
	}
}

// UpdateRequest is the body of PUT /admin/certificates/{id}.
type UpdateRequest struct {
	Cohort           string `json:"cohort" validate:"required,oneof=legacy modern"`
	CertNumber       string `json:"cert_number" validate:"max=64"`
	IssuedTo         string `json:"issued_to" validate:"required,max=200"`
	Type             string `json:"type" validate:"required"`
	IssuedBy         string `json:"issued_by" validate:"max=200"`
	DateIssued       string `json:"date_issued" validate:"omitempty,datetime=2006-01-02"`
	Validity         string `json:"validity" validate:"omitempty,oneof=VALID REVOKED PENDING"`
	SchoolYear       string `json:"school_year" validate:"max=20"`
	YearGraduated    string `json:"year_graduated" validate:"omitempty,numeric,len=4"`
	GooglePhotosLink string `json:"google_photos_link" validate:"omitempty,url"`

	certType models.CertificateType
}

func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Cohort = strings.ToLower(strings.TrimSpace(r.Cohort))
	r.Validity = strings.ToUpper(strings.TrimSpace(r.Validity))
	r.IssuedTo = strings.TrimSpace(r.IssuedTo)
	r.DateIssued = strings.TrimSpace(r.DateIssued)
	r.YearGraduated = strings.TrimSpace(r.YearGraduated)
	r.GooglePhotosLink = strings.TrimSpace(r.GooglePhotosLink)
	if err := validation.Struct(r); err != nil {
		return err
	}
	t, err := models.ParseCertificateType(r.Type)
	if err != nil {
		return err
	}
	r.certType = t
	return nil
}

func (r *UpdateRequest) toCommand() models.UpdateCertificate {
	return models.UpdateCertificate{
		Cohort:           models.Cohort(r.Cohort),
		CertNumber:       r.CertNumber,
		IssuedTo:         r.IssuedTo,
		Type:             r.certType,
		IssuedBy:         r.IssuedBy,
		DateIssued:       r.DateIssued,
		Validity:         models.Validity(r.Validity),
		SchoolYear:       r.SchoolYear,
		YearGraduated:    r.YearGraduated,
		GooglePhotosLink: r.GooglePhotosLink,
	}
}

// DeleteRequest is the body of DELETE /admin/certificates/{id}. The password
// re-authenticates the acting admin.
type DeleteRequest struct {
	Cohort   string `json:"cohort" validate:"required,oneof=legacy modern"`
	Password string `json:"password" validate:"required"`
}

func (r *DeleteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Cohort = strings.ToLower(strings.TrimSpace(r.Cohort))
	return validation.Struct(r)
}

// RegistrantRequest is the public self-registration form.
type RegistrantRequest struct {
	FirstName         string `json:"first_name" validate:"required,max=100"`
	MiddleName        string `json:"middle_name" validate:"max=2"`
	Surname           string `json:"surname" validate:"required,max=100"`
	Suffix            string `json:"suffix" validate:"max=10"`
	Gender            string `json:"gender" validate:"max=20"`
	Birthday          string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Email             string `json:"email" validate:"omitempty,email,max=254"`
	GradeLevelSection string `json:"grade_level_section" validate:"max=100"`
	Strand            string `json:"strand" validate:"max=100"`
	SchoolYear        string `json:"school_year" validate:"required,max=20"`
	DateStarted       string `json:"date_started" validate:"max=40"`
	DateEnded         string `json:"date_ended" validate:"max=40"`
	PositionAssigned  string `json:"position_assigned" validate:"max=200"`
}

func (r *RegistrantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for _, f := range []*string{
		&r.FirstName, &r.MiddleName, &r.Surname, &r.Suffix, &r.Gender, &r.Birthday, &r.Email,
		&r.GradeLevelSection, &r.Strand, &r.SchoolYear, &r.DateStarted, &r.DateEnded, &r.PositionAssigned,
	} {
		*f = strings.TrimSpace(*f)
	}
	r.Email = strings.ToLower(r.Email)
	return validation.Struct(r)
}

func (r *RegistrantRequest) toModel() *models.Registrant {
	return &models.Registrant{
		FirstName:         r.FirstName,
		MiddleName:        r.MiddleName,
		Surname:           r.Surname,
		Suffix:            r.Suffix,
		Gender:            r.Gender,
		Birthday:          r.Birthday,
		Email:             r.Email,
		GradeLevelSection: r.GradeLevelSection,
		Strand:            r.Strand,
		SchoolYear:        r.SchoolYear,
		DateStarted:       r.DateStarted,
		DateEnded:         r.DateEnded,
		PositionAssigned:  r.PositionAssigned,
	}
}

// PromoteRequest is the body of POST /admin/registrants/{id}/promote.
type PromoteRequest struct {
	Type             string `json:"type" validate:"required"`
	IssuedBy         string `json:"issued_by" validate:"max=200"`
	DateIssued       string `json:"date_issued" validate:"omitempty,datetime=2006-01-02"`
	CertNumber       string `json:"cert_number" validate:"max=64"`
	Validity         string `json:"validity" validate:"omitempty,oneof=VALID REVOKED PENDING"`
	YearGraduated    string `json:"year_graduated" validate:"omitempty,numeric,len=4"`
	GooglePhotosLink string `json:"google_photos_link" validate:"omitempty,url"`

	certType models.CertificateType
}

func (r *PromoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Validity = strings.ToUpper(strings.TrimSpace(r.Validity))
	r.DateIssued = strings.TrimSpace(r.DateIssued)
	r.YearGraduated = strings.TrimSpace(r.YearGraduated)
	r.GooglePhotosLink = strings.TrimSpace(r.GooglePhotosLink)
	if err := validation.Struct(r); err != nil {
		return err
	}
	t, err := models.ParseCertificateType(r.Type)
	if err != nil {
		return err
	}
	r.certType = t
	return nil
}

func (r *PromoteRequest) toCommand() models.PromoteRegistrant {
	return models.PromoteRegistrant{
		Type:             r.certType,
		IssuedBy:         r.IssuedBy,
		DateIssued:       r.DateIssued,
		CertNumber:       r.CertNumber,
		Validity:         models.Validity(r.Validity),
		YearGraduated:    r.YearGraduated,
		GooglePhotosLink: r.GooglePhotosLink,
	}
}
