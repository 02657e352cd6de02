package models

import (
	"time"
)

// Household is the read model of an invited household. It never carries the
// raw RSVP token: the token only exists inside a CreationReceipt.
type Household struct {
	ID                  string     `json:"id"`
	DisplayName         string     `json:"displayName"`
	Notes               *string    `json:"notes,omitempty"`
	RSVPTokenHash       string     `json:"-"` // Never expose in JSON
	RSVPLastSubmittedAt *time.Time `json:"rsvpLastSubmittedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	Guests              []Guest    `json:"guests"`
}

type Guest struct {
	ID                        string    `json:"id"`
	HouseholdID               string    `json:"householdId"`
	FirstName                 string    `json:"firstName"`
	LastName                  string    `json:"lastName"`
	Email                     *string   `json:"email,omitempty"`
	Phone                     *string   `json:"phone,omitempty"`
	IsPrimary                 bool      `json:"isPrimary"`
	AttendanceRequiresGuestID *string   `json:"attendanceRequiresGuestId"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// CreationReceipt is returned exactly once, when a household is created or its
// token is regenerated. It is the only type that holds a plaintext token.
type CreationReceipt struct {
	Household *Household `json:"household"`
	RSVPToken string     `json:"rsvpToken"`
}

// HouseholdListItem is a row of the admin household list
type HouseholdListItem struct {
	Household
	SubmissionCount int `json:"submissionCount"`
}

type HouseholdPage struct {
	Items      []HouseholdListItem `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// HouseholdDetail is the admin view of a single household
type HouseholdDetail struct {
	Household
	Submissions    []Submission    `json:"rsvpSubmissions"`
	ChangeRequests []ChangeRequest `json:"changeRequests"`
}

// ============================================================================
// ADMIN REQUESTS
// ============================================================================

type CreateGuestRequest struct {
	FirstName string  `json:"firstName" binding:"required,max=100"`
	LastName  string  `json:"lastName" binding:"required,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	IsPrimary bool    `json:"isPrimary"`
	// Index into the guests array of the same create request
	AttendanceRequiresGuestIndex *int `json:"attendanceRequiresGuestIndex" binding:"omitempty,min=0"`
}

type CreateHouseholdRequest struct {
	DisplayName string               `json:"displayName" binding:"required,max=200"`
	Notes       *string              `json:"notes"`
	Guests      []CreateGuestRequest `json:"guests" binding:"required,min=1,dive"`
}

type UpdateHouseholdRequest struct {
	DisplayName *string `json:"displayName" binding:"omitempty,min=1,max=200"`
	Notes       *string `json:"notes"`
}

type AddGuestRequest struct {
	FirstName                 string  `json:"firstName" binding:"required,max=100"`
	LastName                  string  `json:"lastName" binding:"required,max=100"`
	Email                     *string `json:"email" binding:"omitempty,email"`
	Phone                     *string `json:"phone" binding:"omitempty,phone"`
	IsPrimary                 bool    `json:"isPrimary"`
	AttendanceRequiresGuestID *string `json:"attendanceRequiresGuestId" binding:"omitempty,uuid"`
}

// UpdateGuestRequest patches a guest. An empty email, phone or
// attendanceRequiresGuestId clears the field.
type UpdateGuestRequest struct {
	FirstName                 *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName                  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email                     *string `json:"email" binding:"omitempty,email"`
	Phone                     *string `json:"phone" binding:"omitempty,phone"`
	IsPrimary                 *bool   `json:"isPrimary"`
	AttendanceRequiresGuestID *string `json:"attendanceRequiresGuestId"`
}

const (
	HouseholdStatusResponded    = "responded"
	HouseholdStatusNotResponded = "not_responded"
	HouseholdStatusAll          = "all"
)

type HouseholdQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=responded not_responded all"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}
