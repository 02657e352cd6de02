package models

import "time"

// Submission is one immutable RSVP event. The latest submission of a
// household defines its current state.
type Submission struct {
	ID          string          `json:"id"`
	HouseholdID string          `json:"householdId"`
	SubmittedAt time.Time       `json:"submittedAt"`
	ActorType   ActorType       `json:"actorType"`
	IP          *string         `json:"ip,omitempty"`
	UserAgent   *string         `json:"userAgent,omitempty"`
	Responses   []GuestResponse `json:"responses"`
	Extras      *Extras         `json:"extras,omitempty"`
}

type GuestResponse struct {
	GuestID             string  `json:"guestId"`
	Attending           bool    `json:"attending"`
	DietaryRestrictions *string `json:"dietaryRestrictions,omitempty"`
}

type Extras struct {
	SongRequestText       *string `json:"songRequestText,omitempty"`
	SongRequestSpotifyURL *string `json:"songRequestSpotifyUrl,omitempty"`
}

const (
	ChangeRequestNew     = "NEW"
	ChangeRequestHandled = "HANDLED"
)

type ChangeRequest struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Correction records a response the dependency rule forced to not attending.
type Correction struct {
	GuestID        string `json:"guestId"`
	Reason         string `json:"reason"`
	CorrectedValue bool   `json:"correctedValue"`
}

type SubmissionResult struct {
	OK          bool         `json:"ok"`
	SubmittedAt time.Time    `json:"submittedAt"`
	Corrected   []Correction `json:"corrected,omitempty"`
}

// ============================================================================
// PUBLIC VIEW
// ============================================================================

type CurrentResponse struct {
	Attending           bool    `json:"attending"`
	DietaryRestrictions *string `json:"dietaryRestrictions,omitempty"`
}

type GuestView struct {
	ID                        string           `json:"id"`
	FirstName                 string           `json:"firstName"`
	LastName                  string           `json:"lastName"`
	Email                     *string          `json:"email,omitempty"`
	IsPrimary                 bool             `json:"isPrimary"`
	AttendanceRequiresGuestID *string          `json:"attendanceRequiresGuestId"`
	CurrentResponse           *CurrentResponse `json:"currentResponse,omitempty"`
}

type DeadlineInfo struct {
	Deadline time.Time `json:"deadline"`
	Passed   bool      `json:"passed"`
}

type HouseholdView struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"displayName"`
	Guests       []GuestView  `json:"guests"`
	Extras       *Extras      `json:"extras,omitempty"`
	CanEdit      bool         `json:"canEdit"`
	DeadlineInfo DeadlineInfo `json:"deadlineInfo"`
}

// ============================================================================
// PUBLIC REQUESTS
// ============================================================================

type RSVPResponseRequest struct {
	GuestID             string  `json:"guestId" binding:"required,uuid"`
	Attending           *bool   `json:"attending" binding:"required"`
	DietaryRestrictions *string `json:"dietaryRestrictions" binding:"omitempty,max=500"`
}

type RSVPSubmitRequest struct {
	Responses             []RSVPResponseRequest `json:"responses" binding:"required,min=1,dive"`
	SongRequestText       *string               `json:"songRequestText" binding:"omitempty,max=200"`
	SongRequestSpotifyURL *string               `json:"songRequestSpotifyUrl" binding:"omitempty,spotify_track"`
}

type ChangeRequestRequest struct {
	Message string `json:"message" binding:"required,min=1,max=1000"`
}

type UpdateChangeRequestRequest struct {
	Status string `json:"status" binding:"required,oneof=NEW HANDLED"`
}

// RequestMeta carries transport details recorded with guest actions
type RequestMeta struct {
	IP        string
	UserAgent string
}
