// Package store is the persistence layer of the wedding API. Every engine
// implements Store; services depend on narrower interfaces carved out of it.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/LovationAdmin/wedding-api/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: unique constraint violated")
)

type Store interface {
	// Households and guests
	CreateHousehold(ctx context.Context, h *models.Household) error
	GetHousehold(ctx context.Context, id string) (*models.Household, error)
	GetHouseholdByTokenHash(ctx context.Context, hash string) (*models.Household, error)
	ListHouseholds(ctx context.Context, q models.HouseholdQuery) ([]models.HouseholdListItem, int, error)
	// AllHouseholds returns every household with its guests, by display name
	AllHouseholds(ctx context.Context) ([]models.Household, error)
	UpdateHousehold(ctx context.Context, h *models.Household) error
	SetHouseholdTokenHash(ctx context.Context, id, hash string) error
	TouchHouseholdSubmitted(ctx context.Context, id string, at time.Time) error
	DeleteHousehold(ctx context.Context, id string) error

	CreateGuest(ctx context.Context, g *models.Guest) error
	GetGuest(ctx context.Context, id string) (*models.Guest, error)
	UpdateGuest(ctx context.Context, g *models.Guest) error
	DeleteGuest(ctx context.Context, id string) error

	// Submissions are create-only
	CreateSubmission(ctx context.Context, s *models.Submission) error
	LatestSubmission(ctx context.Context, householdID string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, householdID string, limit int) ([]models.Submission, error)

	CreateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error
	ListChangeRequests(ctx context.Context, householdID string) ([]models.ChangeRequest, error)
	UpdateChangeRequestStatus(ctx context.Context, id, status string) (*models.ChangeRequest, error)

	// Audit log is append-only
	CreateAuditLog(ctx context.Context, e *models.AuditLog) error
	QueryAuditLogs(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, int, error)

	CreateAdmin(ctx context.Context, a *models.AdminUser) error
	GetAdmin(ctx context.Context, id string) (*models.AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateAdminLogin(ctx context.Context, id string, at time.Time) error
	SetAdminTOTP(ctx context.Context, id, secret string, enabled bool) error
	SetAdminPassword(ctx context.Context, id, passwordHash string) error

	// WithTx runs fn against a transactional view of the store. All writes made
	// through tx commit together or not at all. Nested calls join the outer
	// transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}

// SortGuests orders guests primary first, then by creation time
func SortGuests(guests []models.Guest) {
	sort.SliceStable(guests, func(i, j int) bool {
		if guests[i].IsPrimary != guests[j].IsPrimary {
			return guests[i].IsPrimary
		}
		return guests[i].CreatedAt.Before(guests[j].CreatedAt)
	})
}

// NormalizePage applies the paging defaults shared by the list queries
func NormalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
