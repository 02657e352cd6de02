package models

import "time"

type ActorType string

const (
	ActorAdmin  ActorType = "ADMIN"
	ActorGuest  ActorType = "GUEST"
	ActorSystem ActorType = "SYSTEM"
)

// Audit actions
const (
	ActionHouseholdCreated       = "HOUSEHOLD_CREATED"
	ActionHouseholdUpdated       = "HOUSEHOLD_UPDATED"
	ActionHouseholdDeleted       = "HOUSEHOLD_DELETED"
	ActionGuestCreated           = "GUEST_CREATED"
	ActionGuestUpdated           = "GUEST_UPDATED"
	ActionGuestDeleted           = "GUEST_DELETED"
	ActionRSVPSubmitted          = "RSVP_SUBMITTED"
	ActionChangeRequestSubmitted = "CHANGE_REQUEST_SUBMITTED"
	ActionChangeRequestUpdated   = "CHANGE_REQUEST_UPDATED"
	ActionRSVPTokenRegenerated   = "RSVP_TOKEN_REGENERATED"
	ActionGuestsExported         = "GUESTS_EXPORTED"
	ActionAdminCreated           = "ADMIN_CREATED"
	ActionAdminLogin             = "ADMIN_LOGIN"
	ActionAdminLoginFailed       = "ADMIN_LOGIN_FAILED"
	ActionAdminTOTPEnabled       = "ADMIN_TOTP_ENABLED"
	ActionAdminTOTPDisabled      = "ADMIN_TOTP_DISABLED"
	ActionAdminPasswordChanged   = "ADMIN_PASSWORD_CHANGED"
)

// AuditLog is append-only: rows are never updated or deleted by the application.
type AuditLog struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	ActorType    ActorType      `json:"actorType"`
	ActorAdminID *string        `json:"actorAdminId,omitempty"`
	HouseholdID  *string        `json:"householdId,omitempty"`
	Action       string         `json:"action"`
	EntityType   string         `json:"entityType"`
	EntityID     string         `json:"entityId"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	// Filled by queries only, never stored
	ActorAdmin *AuditAdminSummary     `json:"actorAdmin,omitempty"`
	Household  *AuditHouseholdSummary `json:"household,omitempty"`
}

type AuditAdminSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuditHouseholdSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type AuditQuery struct {
	Search      string     `form:"search"`
	Action      string     `form:"action"`
	ActorType   string     `form:"actorType" binding:"omitempty,oneof=ADMIN GUEST SYSTEM all"`
	HouseholdID string     `form:"householdId" binding:"omitempty,uuid"`
	DateFrom    *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo      *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

type AuditPage struct {
	Items      []AuditLog `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}
