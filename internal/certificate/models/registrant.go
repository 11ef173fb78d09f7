package models

import (
	"strings"
	"time"
)

// RegistrantStatus tracks a self-registration through review.
type RegistrantStatus string

const (
	RegistrantPending  RegistrantStatus = "PENDING"
	RegistrantApproved RegistrantStatus = "APPROVED"
)

// Registrant is a pending self-submitted application for a certificate.
// Rows are never deleted; promotion flips Status to APPROVED and leaves the
// row in place.
type Registrant struct {
	ID                int64            `json:"id"`
	FirstName         string           `json:"first_name"`
	MiddleName        string           `json:"middle_name"`
	Surname           string           `json:"surname"`
	Suffix            string           `json:"suffix"`
	Gender            string           `json:"gender"`
	Birthday          string           `json:"birthday"`
	Email             string           `json:"email"`
	GradeLevelSection string           `json:"grade_level_section"`
	Strand            string           `json:"strand"`
	SchoolYear        string           `json:"school_year"`
	DateStarted       string           `json:"date_started"`
	DateEnded         string           `json:"date_ended"`
	PositionAssigned  string           `json:"position_assigned"`
	Status            RegistrantStatus `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (r *Registrant) IsPending() bool {
	return r.Status == RegistrantPending
}

// FullName is the display name a promoted certificate is issued to.
func (r *Registrant) FullName() string {
	return FullName(r.FirstName, r.MiddleName, r.Surname, r.Suffix)
}

// Clone returns a copy safe to hand out of a store.
func (r *Registrant) Clone() *Registrant {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// FullName joins the non-empty name parts, collapses whitespace and uppercases.
func FullName(parts ...string) string {
	return strings.ToUpper(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}
