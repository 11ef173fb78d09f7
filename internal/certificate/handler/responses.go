package handler

import (
	"time"

	"romportal/internal/certificate/certid"
	"romportal/internal/certificate/models"
)

// CertificateResponse is a certificate as the dashboard and verify page see it.
type CertificateResponse struct {
	ID                 int64     `json:"id"`
	Cohort             string    `json:"cohort"`
	IsModern           bool      `json:"is_modern"`
	CertNumber         string    `json:"cert_number"`
	IssuedTo           string    `json:"issued_to"`
	Type               string    `json:"type"`
	IssuedBy           string    `json:"issued_by"`
	DateIssued         string    `json:"date_issued"`
	Validity           string    `json:"validity"`
	SchoolYear         string    `json:"school_year"`
	YearGraduated      string    `json:"year_graduated"`
	GooglePhotosLink   string    `json:"google_photos_link,omitempty"`
	SourceRegistrantID *int64    `json:"source_registrant_id,omitempty"`
	ShareLink          string    `json:"share_link"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toCertificateResponse(c *models.Certificate, baseURL string) *CertificateResponse {
	return &CertificateResponse{
		ID:                 c.ID,
		Cohort:             c.Cohort.String(),
		IsModern:           c.Cohort.IsModern(),
		CertNumber:         c.CertNumber,
		IssuedTo:           c.IssuedTo,
		Type:               string(c.Type),
		IssuedBy:           c.IssuedBy,
		DateIssued:         c.DateIssued,
		Validity:           string(c.Validity),
		SchoolYear:         c.SchoolYear,
		YearGraduated:      c.YearGraduated,
		GooglePhotosLink:   c.GooglePhotosLink,
		SourceRegistrantID: c.SourceRegistrantID,
		ShareLink:          certid.ShareLink(baseURL, c.CertNumber),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type CertificateListResponse struct {
	Certificates []*CertificateResponse `json:"certificates"`
	Count        int                    `json:"count"`
}

// VerifyResponse is the public lookup result. A miss has only found=false.
type VerifyResponse struct {
	Found       bool                 `json:"found"`
	IsModern    bool                 `json:"is_modern,omitempty"`
	Certificate *CertificateResponse `json:"certificate,omitempty"`
}

type NextSerialResponse struct {
	Type          string `json:"type"`
	YearGraduated string `json:"year_graduated,omitempty"`
	NextSerial    int    `json:"next_serial"`
}

type RegistrantResponse struct {
	ID                int64     `json:"id"`
	FullName          string    `json:"full_name"`
	FirstName         string    `json:"first_name"`
	MiddleName        string    `json:"middle_name,omitempty"`
	Surname           string    `json:"surname"`
	Suffix            string    `json:"suffix,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	Birthday          string    `json:"birthday,omitempty"`
	Email             string    `json:"email,omitempty"`
	GradeLevelSection string    `json:"grade_level_section,omitempty"`
	Strand            string    `json:"strand,omitempty"`
	SchoolYear        string    `json:"school_year"`
	DateStarted       string    `json:"date_started,omitempty"`
	DateEnded         string    `json:"date_ended,omitempty"`
	PositionAssigned  string    `json:"position_assigned,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func toRegistrantResponse(r *models.Registrant) *RegistrantResponse {
	return &RegistrantResponse{
		ID:                r.ID,
		FullName:          r.FullName(),
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
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
	}
}

type RegistrantListResponse struct {
	Registrants []*RegistrantResponse `json:"registrants"`
	Count       int                   `json:"count"`
}
