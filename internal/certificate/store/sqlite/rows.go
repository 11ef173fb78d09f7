package sqlite

import (
	"time"

	"romportal/internal/certificate/models"
)

type certificateRow struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	Cohort             string    `gorm:"size:16;not null;uniqueIndex:idx_certificates_cohort_number,priority:1;index:idx_certificates_bucket,priority:1"`
	CertNumber         string    `gorm:"not null;uniqueIndex:idx_certificates_cohort_number,priority:2"`
	IssuedTo           string    `gorm:"not null"`
	Type               string    `gorm:"not null;index:idx_certificates_bucket,priority:2"`
	IssuedBy           string    `gorm:"not null"`
	DateIssued         string    `gorm:"not null"`
	Validity           string    `gorm:"size:16;not null"`
	SchoolYear         string    `gorm:"not null"`
	YearGraduated      string    `gorm:"not null;index:idx_certificates_bucket,priority:3"`
	GooglePhotosLink   string    `gorm:"not null"`
	SourceRegistrantID *int64    `gorm:"uniqueIndex"`
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
}

func (certificateRow) TableName() string { return "certificates" }

func toCertificateRow(c *models.Certificate) certificateRow {
	return certificateRow{
		ID:                 c.ID,
		Cohort:             string(c.Cohort),
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
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (r certificateRow) toModel() *models.Certificate {
	return &models.Certificate{
		ID:                 r.ID,
		Cohort:             models.Cohort(r.Cohort),
		CertNumber:         r.CertNumber,
		IssuedTo:           r.IssuedTo,
		Type:               models.CertificateType(r.Type),
		IssuedBy:           r.IssuedBy,
		DateIssued:         r.DateIssued,
		Validity:           models.Validity(r.Validity),
		SchoolYear:         r.SchoolYear,
		YearGraduated:      r.YearGraduated,
		GooglePhotosLink:   r.GooglePhotosLink,
		SourceRegistrantID: r.SourceRegistrantID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type registrantRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	FirstName         string    `gorm:"not null"`
	MiddleName        string    `gorm:"not null"`
	Surname           string    `gorm:"not null"`
	Suffix            string    `gorm:"not null"`
	Gender            string    `gorm:"not null"`
	Birthday          string    `gorm:"not null"`
	Email             string    `gorm:"not null"`
	GradeLevelSection string    `gorm:"not null"`
	Strand            string    `gorm:"not null"`
	SchoolYear        string    `gorm:"not null"`
	DateStarted       string    `gorm:"not null"`
	DateEnded         string    `gorm:"not null"`
	PositionAssigned  string    `gorm:"not null"`
	Status            string    `gorm:"size:16;not null;index"`
	CreatedAt         time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime:false"`
}

func (registrantRow) TableName() string { return "registrants" }

func toRegistrantRow(r *models.Registrant) registrantRow {
	return registrantRow{
		ID:                r.ID,
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
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r registrantRow) toModel() *models.Registrant {
	return &models.Registrant{
		ID:                r.ID,
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
		Status:            models.RegistrantStatus(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
