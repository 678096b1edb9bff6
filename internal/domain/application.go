package domain

import "strings"

// ApplicationStatus mirrors the seller-application workflow states. The API
// has used both "accepted" and "approved" for the positive outcome.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Approved is true for either spelling of the positive outcome.
func (s ApplicationStatus) Approved() bool {
	return s == StatusAccepted || s == StatusApproved
}

// Label is the display text; both positive spellings render the same.
func (s ApplicationStatus) Label() string {
	switch {
	case s.Approved():
		return "Approved"
	case s == StatusPending:
		return "Pending"
	case s == StatusRejected:
		return "Rejected"
	}
	return string(s)
}

// Normalize folds the positive spellings together for filtering.
func (s ApplicationStatus) Normalize() ApplicationStatus {
	if s.Approved() {
		return StatusAccepted
	}
	return ApplicationStatus(strings.ToLower(string(s)))
}

type SellerApplication struct {
	ID              ID                `json:"id" validate:"required"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	Email           string            `json:"email" validate:"required,email"`
	PhoneNumber     string            `json:"phone_number"`
	Status          ApplicationStatus `json:"status" validate:"oneof=pending accepted approved rejected"`
	CreatedAt       string            `json:"created_at"`
	BusinessPermit  string            `json:"business_permit"`
	ValidID         string            `json:"valid_id"`
	DTIRegistration string            `json:"dti_registration"`
}

func (a SellerApplication) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
