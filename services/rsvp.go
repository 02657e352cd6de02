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

// RSVPStore is the slice of the store the guest-facing workflow needs
type RSVPStore interface {
	GetHouseholdByTokenHash(ctx context.Context, hash string) (*models.Household, error)
	LatestSubmission(ctx context.Context, householdID string) (*models.Submission, error)
	WithTx(ctx context.Context, fn func(tx store.Store) error) error
}

// RSVPSettings is read on every call so deadline changes apply without restart
type RSVPSettings interface {
	Deadline() time.Time
	SongRequestEnabled() bool
}

type RSVPService struct {
	store    RSVPStore
	settings RSVPSettings
	audit    *AuditService
	cipher   *utils.FieldCipher
	now      func() time.Time
}

func NewRSVPService(s RSVPStore, settings RSVPSettings, audit *AuditService, cipher *utils.FieldCipher) *RSVPService {
	return &RSVPService{
		store:    s,
		settings: settings,
		audit:    audit,
		cipher:   cipher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ChangeRequestReceipt is handed back to the transport layer so it can notify
// the couple. Message is the plaintext the guest sent.
type ChangeRequestReceipt struct {
	Household *models.Household
	Request   models.ChangeRequest
}

// ============================================================================
// RESOLVE & VIEW
// ============================================================================

// ResolveHousehold maps a raw token to its household. Malformed and unknown
// tokens both yield ErrNotFound.
func (s *RSVPService) ResolveHousehold(ctx context.Context, token string) (*models.Household, error) {
	if !utils.IsWellFormedRSVPToken(token) {
		return nil, ErrNotFound
	}

	h, err := s.store.GetHouseholdByTokenHash(ctx, utils.HashRSVPToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve household: %w", err)
	}
	return h, nil
}

func (s *RSVPService) deadlineInfo() models.DeadlineInfo {
	deadline := s.settings.Deadline()
	return models.DeadlineInfo{
		Deadline: deadline,
		Passed:   s.now().After(deadline),
	}
}

// CheckDeadline returns ErrDeadlinePassed once submissions are closed
func (s *RSVPService) CheckDeadline() error {
	if s.deadlineInfo().Passed {
		return ErrDeadlinePassed
	}
	return nil
}

func (s *RSVPService) GetHouseholdView(ctx context.Context, token string) (*models.HouseholdView, error) {
	h, err := s.ResolveHousehold(ctx, token)
	if err != nil {
		return nil, err
	}

	latest, err := s.store.LatestSubmission(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest submission: %w", err)
	}

	current := make(map[string]*models.CurrentResponse)
	var extras *models.Extras
	if latest != nil {
		for _, r := range latest.Responses {
			current[r.GuestID] = &models.CurrentResponse{
				Attending:           r.Attending,
				DietaryRestrictions: r.DietaryRestrictions,
			}
		}
		extras = latest.Extras
	}

	guests := append([]models.Guest{}, h.Guests...)
	store.SortGuests(guests)

	views := make([]models.GuestView, 0, len(guests))
	for _, g := range guests {
		views = append(views, models.GuestView{
			ID:                        g.ID,
			FirstName:                 g.FirstName,
			LastName:                  g.LastName,
			Email:                     g.Email,
			IsPrimary:                 g.IsPrimary,
			AttendanceRequiresGuestID: g.AttendanceRequiresGuestID,
			CurrentResponse:           current[g.ID],
		})
	}

	info := s.deadlineInfo()
	return &models.HouseholdView{
		ID:           h.ID,
		DisplayName:  h.DisplayName,
		Guests:       views,
		Extras:       extras,
		CanEdit:      !info.Passed,
		DeadlineInfo: info,
	}, nil
}

// ============================================================================
// SUBMIT
// ============================================================================

// SubmitRSVP records a new submission for the household behind token. The
// submission, the household timestamp and the audit entry commit together.
func (s *RSVPService) SubmitRSVP(ctx context.Context, token string, req models.RSVPSubmitRequest, meta models.RequestMeta) (*models.SubmissionResult, error) {
	if err := s.CheckDeadline(); err != nil {
		return nil, err
	}

	h, err := s.ResolveHousehold(ctx, token)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(h.Guests))
	for _, g := range h.Guests {
		members[g.ID] = true
	}

	seen := make(map[string]bool, len(req.Responses))
	responses := make([]models.GuestResponse, 0, len(req.Responses))
	for _, r := range req.Responses {
		if !members[r.GuestID] {
			return nil, fmt.Errorf("%w: guest %s does not belong to this household", ErrBadRequest, r.GuestID)
		}
		if seen[r.GuestID] {
			return nil, fmt.Errorf("%w: duplicate response for guest %s", ErrBadRequest, r.GuestID)
		}
		seen[r.GuestID] = true

		responses = append(responses, models.GuestResponse{
			GuestID:             r.GuestID,
			Attending:           r.Attending != nil && *r.Attending,
			DietaryRestrictions: trimmedOrNil(r.DietaryRestrictions),
		})
	}

	responses, corrections := EnforceDependencyRules(h.Guests, responses)

	var extras *models.Extras
	if s.settings.SongRequestEnabled() {
		text := trimmedOrNil(req.SongRequestText)
		url := trimmedOrNil(req.SongRequestSpotifyURL)
		if text != nil || url != nil {
			extras = &models.Extras{SongRequestText: text, SongRequestSpotifyURL: url}
		}
	}

	sub := &models.Submission{
		ID:          uuid.New().String(),
		HouseholdID: h.ID,
		SubmittedAt: s.now(),
		ActorType:   models.ActorGuest,
		IP:          nonEmpty(meta.IP),
		UserAgent:   nonEmpty(meta.UserAgent),
		Responses:   responses,
		Extras:      extras,
	}

	attending := 0
	for _, r := range responses {
		if r.Attending {
			attending++
		}
	}

	entry := &models.AuditLog{
		ActorType:   models.ActorGuest,
		HouseholdID: &h.ID,
		Action:      models.ActionRSVPSubmitted,
		EntityType:  "RsvpSubmission",
		EntityID:    sub.ID,
		Metadata: map[string]any{
			"attendingCount":    attending,
			"notAttendingCount": len(responses) - attending,
			"hasSongRequest":    extras != nil,
			"correctionCount":   len(corrections),
		},
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateSubmission(ctx, sub); err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}
		if err := tx.TouchHouseholdSubmitted(ctx, h.ID, sub.SubmittedAt); err != nil {
			return fmt.Errorf("failed to update household: %w", err)
		}
		return s.audit.LogTx(ctx, tx, entry)
	})
	if err != nil {
		log.WithError(err).WithField("household_id", utils.MaskID(h.ID)).Error("❌ RSVP submission failed")
		return nil, err
	}
	s.audit.Notify(*entry)

	utils.LogRSVPAction("submission saved", h.ID, log.Fields{
		"attending":   attending,
		"corrections": len(corrections),
	})

	return &models.SubmissionResult{
		OK:          true,
		SubmittedAt: sub.SubmittedAt,
		Corrected:   corrections,
	}, nil
}

// SubmitChangeRequest is available after the deadline; it never touches the
// submissions of the household.
func (s *RSVPService) SubmitChangeRequest(ctx context.Context, token string, req models.ChangeRequestRequest, meta models.RequestMeta) (*ChangeRequestReceipt, error) {
	h, err := s.ResolveHousehold(ctx, token)
	if err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrBadRequest)
	}

	stored, err := s.cipher.Seal(message)
	if err != nil {
		return nil, err
	}

	cr := models.ChangeRequest{
		ID:          uuid.New().String(),
		HouseholdID: h.ID,
		Message:     stored,
		Status:      models.ChangeRequestNew,
		CreatedAt:   s.now(),
	}

	metadata := map[string]any{"messageLength": len([]rune(message))}
	if meta.IP != "" {
		metadata["ip"] = meta.IP
	}
	entry := &models.AuditLog{
		ActorType:   models.ActorGuest,
		HouseholdID: &h.ID,
		Action:      models.ActionChangeRequestSubmitted,
		EntityType:  "ChangeRequest",
		EntityID:    cr.ID,
		Metadata:    metadata,
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateChangeRequest(ctx, &cr); err != nil {
			return fmt.Errorf("failed to save change request: %w", err)
		}
		return s.audit.LogTx(ctx, tx, entry)
	})
	if err != nil {
		log.WithError(err).WithField("household_id", utils.MaskID(h.ID)).Error("❌ Change request failed")
		return nil, err
	}
	s.audit.Notify(*entry)

	utils.LogRSVPAction("change request saved", h.ID, nil)

	cr.Message = message
	return &ChangeRequestReceipt{Household: h, Request: cr}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
