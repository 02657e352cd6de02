package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/store"
	"github.com/LovationAdmin/wedding-api/utils"
)

const detailSubmissionLimit = 10

// HouseholdService backs the admin dashboard. Every mutation is written
// together with its audit entry.
type HouseholdService struct {
	store  store.Store
	audit  *AuditService
	cipher *utils.FieldCipher
	now    func() time.Time
}

func NewHouseholdService(s store.Store, audit *AuditService, cipher *utils.FieldCipher) *HouseholdService {
	return &HouseholdService{
		store:  s,
		audit:  audit,
		cipher: cipher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// mutate runs fn and the audit entries it returns in one transaction, then
// publishes the entries.
func (s *HouseholdService) mutate(ctx context.Context, fn func(tx store.Store) ([]*models.AuditLog, error)) error {
	var written []models.AuditLog
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		entries, err := fn(tx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.audit.LogTx(ctx, tx, e); err != nil {
				return err
			}
			written = append(written, *e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Notify(written...)
	return nil
}

func adminEntry(adminID, action, entityType, entityID string, householdID *string, metadata map[string]any) *models.AuditLog {
	e := &models.AuditLog{
		ActorType:   models.ActorAdmin,
		HouseholdID: householdID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Metadata:    metadata,
	}
	if adminID != "" {
		e.ActorAdminID = &adminID
	}
	return e
}

// ============================================================================
// READ
// ============================================================================

func (s *HouseholdService) List(ctx context.Context, q models.HouseholdQuery) (*models.HouseholdPage, error) {
	page, pageSize := store.NormalizePage(q.Page, q.PageSize, 20)
	q.Page, q.PageSize = page, pageSize

	items, total, err := s.store.ListHouseholds(ctx, q)
	if err != nil {
		return nil, err
	}

	return &models.HouseholdPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *HouseholdService) Get(ctx context.Context, id string) (*models.HouseholdDetail, error) {
	h, err := s.store.GetHousehold(ctx, id)
	if err != nil {
		return nil, notFound(err, "household")
	}

	subs, err := s.store.ListSubmissions(ctx, id, detailSubmissionLimit)
	if err != nil {
		return nil, err
	}

	crs, err := s.store.ListChangeRequests(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range crs {
		if crs[i].Message, err = s.cipher.Open(crs[i].Message); err != nil {
			return nil, fmt.Errorf("failed to decrypt change request %s: %w", crs[i].ID, err)
		}
	}

	return &models.HouseholdDetail{
		Household:      *h,
		Submissions:    subs,
		ChangeRequests: crs,
	}, nil
}

// ============================================================================
// HOUSEHOLDS
// ============================================================================

// Create stores a household with its guests and returns the only copy of its
// raw RSVP token.
func (s *HouseholdService) Create(ctx context.Context, adminID string, req models.CreateHouseholdRequest) (*models.CreationReceipt, error) {
	token, hash, err := utils.GenerateRSVPToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	h := &models.Household{
		ID:            uuid.New().String(),
		DisplayName:   strings.TrimSpace(req.DisplayName),
		Notes:         trimmedOrNil(req.Notes),
		RSVPTokenHash: hash,
		CreatedAt:     now,
		UpdatedAt:     now,
		Guests:        make([]models.Guest, len(req.Guests)),
	}

	for i, g := range req.Guests {
		h.Guests[i] = models.Guest{
			ID:          uuid.New().String(),
			HouseholdID: h.ID,
			FirstName:   strings.TrimSpace(g.FirstName),
			LastName:    strings.TrimSpace(g.LastName),
			Email:       trimmedOrNil(g.Email),
			Phone:       trimmedOrNil(g.Phone),
			IsPrimary:   g.IsPrimary,
			// Keeps the request order among guests of equal rank
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	for i, g := range req.Guests {
		if g.AttendanceRequiresGuestIndex == nil {
			continue
		}
		idx := *g.AttendanceRequiresGuestIndex
		if idx < 0 || idx >= len(h.Guests) || idx == i {
			return nil, fmt.Errorf("%w: guest %d has an invalid attendance dependency", ErrBadRequest, i)
		}
		h.Guests[i].AttendanceRequiresGuestID = &h.Guests[idx].ID
	}

	err = s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		if err := tx.CreateHousehold(ctx, h); err != nil {
			return nil, err
		}
		return []*models.AuditLog{adminEntry(adminID, models.ActionHouseholdCreated, "Household", h.ID, &h.ID, map[string]any{
			"displayName": h.DisplayName,
			"guestCount":  len(h.Guests),
		})}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogAdminAction("household created", adminID, h.ID)
	store.SortGuests(h.Guests)
	return &models.CreationReceipt{Household: h, RSVPToken: token}, nil
}

func (s *HouseholdService) Update(ctx context.Context, adminID, id string, req models.UpdateHouseholdRequest) (*models.Household, error) {
	var updated *models.Household
	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		h, err := tx.GetHousehold(ctx, id)
		if err != nil {
			return nil, notFound(err, "household")
		}

		changes := map[string]any{}
		if req.DisplayName != nil {
			h.DisplayName = strings.TrimSpace(*req.DisplayName)
			changes["displayName"] = h.DisplayName
		}
		if req.Notes != nil {
			h.Notes = trimmedOrNil(req.Notes)
			changes["notes"] = h.Notes != nil
		}
		h.UpdatedAt = s.now()

		if err := tx.UpdateHousehold(ctx, h); err != nil {
			return nil, err
		}
		updated = h
		return []*models.AuditLog{adminEntry(adminID, models.ActionHouseholdUpdated, "Household", id, &id, changes)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogAdminAction("household updated", adminID, id)
	return updated, nil
}

func (s *HouseholdService) Delete(ctx context.Context, adminID, id string) error {
	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		h, err := tx.GetHousehold(ctx, id)
		if err != nil {
			return nil, notFound(err, "household")
		}
		if err := tx.DeleteHousehold(ctx, id); err != nil {
			return nil, notFound(err, "household")
		}
		// The household row is gone, so the entry only keeps the entity id
		return []*models.AuditLog{adminEntry(adminID, models.ActionHouseholdDeleted, "Household", id, nil, map[string]any{
			"displayName": h.DisplayName,
			"guestCount":  len(h.Guests),
		})}, nil
	})
	if err != nil {
		return err
	}

	utils.LogAdminAction("household deleted", adminID, id)
	return nil
}

// RegenerateToken replaces the household token. The previous link stops
// working immediately.
func (s *HouseholdService) RegenerateToken(ctx context.Context, adminID, id string) (*models.CreationReceipt, error) {
	token, hash, err := utils.GenerateRSVPToken()
	if err != nil {
		return nil, err
	}

	var h *models.Household
	err = s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		if err := tx.SetHouseholdTokenHash(ctx, id, hash); err != nil {
			return nil, notFound(err, "household")
		}
		if h, err = tx.GetHousehold(ctx, id); err != nil {
			return nil, err
		}
		return []*models.AuditLog{adminEntry(adminID, models.ActionRSVPTokenRegenerated, "Household", id, &id, nil)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogAdminAction("rsvp token regenerated", adminID, id)
	return &models.CreationReceipt{Household: h, RSVPToken: token}, nil
}

// ============================================================================
// GUESTS
// ============================================================================

// checkDependency enforces that a dependency points at another guest of the
// same household.
func checkDependency(h *models.Household, guestID string, requiredID *string) error {
	if requiredID == nil {
		return nil
	}
	if *requiredID == guestID {
		return fmt.Errorf("%w: a guest cannot depend on themselves", ErrBadRequest)
	}
	for _, g := range h.Guests {
		if g.ID == *requiredID {
			return nil
		}
	}
	return fmt.Errorf("%w: required guest is not part of this household", ErrBadRequest)
}

func (s *HouseholdService) AddGuest(ctx context.Context, adminID, householdID string, req models.AddGuestRequest) (*models.Guest, error) {
	g := &models.Guest{
		ID:                        uuid.New().String(),
		HouseholdID:               householdID,
		FirstName:                 strings.TrimSpace(req.FirstName),
		LastName:                  strings.TrimSpace(req.LastName),
		Email:                     trimmedOrNil(req.Email),
		Phone:                     trimmedOrNil(req.Phone),
		IsPrimary:                 req.IsPrimary,
		AttendanceRequiresGuestID: trimmedOrNil(req.AttendanceRequiresGuestID),
		CreatedAt:                 s.now(),
	}

	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		h, err := tx.GetHousehold(ctx, householdID)
		if err != nil {
			return nil, notFound(err, "household")
		}
		if err := checkDependency(h, g.ID, g.AttendanceRequiresGuestID); err != nil {
			return nil, err
		}
		if err := tx.CreateGuest(ctx, g); err != nil {
			return nil, err
		}
		return []*models.AuditLog{adminEntry(adminID, models.ActionGuestCreated, "Guest", g.ID, &householdID, nil)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogAdminAction("guest created", adminID, g.ID)
	return g, nil
}

func (s *HouseholdService) UpdateGuest(ctx context.Context, adminID, guestID string, req models.UpdateGuestRequest) (*models.Guest, error) {
	var updated *models.Guest
	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		g, err := tx.GetGuest(ctx, guestID)
		if err != nil {
			return nil, notFound(err, "guest")
		}

		var fields []string
		if req.FirstName != nil {
			g.FirstName = strings.TrimSpace(*req.FirstName)
			fields = append(fields, "firstName")
		}
		if req.LastName != nil {
			g.LastName = strings.TrimSpace(*req.LastName)
			fields = append(fields, "lastName")
		}
		if req.Email != nil {
			g.Email = trimmedOrNil(req.Email)
			fields = append(fields, "email")
		}
		if req.Phone != nil {
			g.Phone = trimmedOrNil(req.Phone)
			fields = append(fields, "phone")
		}
		if req.IsPrimary != nil {
			g.IsPrimary = *req.IsPrimary
			fields = append(fields, "isPrimary")
		}
		if req.AttendanceRequiresGuestID != nil {
			g.AttendanceRequiresGuestID = trimmedOrNil(req.AttendanceRequiresGuestID)
			fields = append(fields, "attendanceRequiresGuestId")

			h, err := tx.GetHousehold(ctx, g.HouseholdID)
			if err != nil {
				return nil, notFound(err, "household")
			}
			if err := checkDependency(h, g.ID, g.AttendanceRequiresGuestID); err != nil {
				return nil, err
			}
		}

		if err := tx.UpdateGuest(ctx, g); err != nil {
			return nil, notFound(err, "guest")
		}
		updated = g
		return []*models.AuditLog{adminEntry(adminID, models.ActionGuestUpdated, "Guest", g.ID, &g.HouseholdID, map[string]any{
			"fields": fields,
		})}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogAdminAction("guest updated", adminID, guestID)
	return updated, nil
}

// DeleteGuest refuses to remove the last guest of a household
func (s *HouseholdService) DeleteGuest(ctx context.Context, adminID, guestID string) error {
	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		g, err := tx.GetGuest(ctx, guestID)
		if err != nil {
			return nil, notFound(err, "guest")
		}
		h, err := tx.GetHousehold(ctx, g.HouseholdID)
		if err != nil {
			return nil, notFound(err, "household")
		}
		if len(h.Guests) <= 1 {
			return nil, fmt.Errorf("%w: a household needs at least one guest", ErrBadRequest)
		}
		if err := tx.DeleteGuest(ctx, guestID); err != nil {
			return nil, notFound(err, "guest")
		}
		return []*models.AuditLog{adminEntry(adminID, models.ActionGuestDeleted, "Guest", guestID, &g.HouseholdID, nil)}, nil
	})
	if err != nil {
		return err
	}

	utils.LogAdminAction("guest deleted", adminID, guestID)
	return nil
}

// ============================================================================
// CHANGE REQUESTS
// ============================================================================

func (s *HouseholdService) SetChangeRequestStatus(ctx context.Context, adminID, id, status string) (*models.ChangeRequest, error) {
	if status != models.ChangeRequestNew && status != models.ChangeRequestHandled {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadRequest, status)
	}

	var cr *models.ChangeRequest
	err := s.mutate(ctx, func(tx store.Store) ([]*models.AuditLog, error) {
		var err error
		if cr, err = tx.UpdateChangeRequestStatus(ctx, id, status); err != nil {
			return nil, notFound(err, "change request")
		}
		return []*models.AuditLog{adminEntry(adminID, models.ActionChangeRequestUpdated, "ChangeRequest", id, &cr.HouseholdID, map[string]any{
			"status": status,
		})}, nil
	})
	if err != nil {
		return nil, err
	}

	if cr.Message, err = s.cipher.Open(cr.Message); err != nil {
		log.WithError(err).WithField("change_request_id", id).Warn("⚠️ Could not decrypt change request message")
		cr.Message = ""
	}
	return cr, nil
}
