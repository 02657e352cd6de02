package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/LovationAdmin/wedding-api/models"
)

var (
	householdsBucket     = []byte("households")
	tokenIndexBucket     = []byte("household_tokens")
	guestIndexBucket     = []byte("guest_households")
	submissionsBucket    = []byte("rsvp_submissions")
	changeRequestsBucket = []byte("change_requests")
	auditBucket          = []byte("audit_logs")
	adminsBucket         = []byte("admin_users")
	adminEmailBucket     = []byte("admin_emails")

	allBuckets = [][]byte{
		householdsBucket, tokenIndexBucket, guestIndexBucket, submissionsBucket,
		changeRequestsBucket, auditBucket, adminsBucket, adminEmailBucket,
	}
)

// householdRecord is the stored form of a household. Guests are embedded.
type householdRecord struct {
	models.Household
	TokenHash string `json:"tokenHash"`
}

type adminRecord struct {
	models.AdminUser
	PasswordHash string `json:"passwordHash"`
	TOTPSecret   string `json:"totpSecret,omitempty"`
}

// Bolt implements Store on a single bbolt file. Every write runs in a bolt
// read-write transaction, so WithTx gets full atomicity for free.
type Bolt struct {
	db *bolt.DB
	tx *bolt.Tx // set inside WithTx
}

var _ Store = (*Bolt)(nil)

func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

func (s *Bolt) WithTx(_ context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&Bolt{db: s.db, tx: tx})
	})
}

func (s *Bolt) view(fn func(tx *bolt.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.View(fn)
}

func (s *Bolt) update(fn func(tx *bolt.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.Update(fn)
}

func getJSON(b *bolt.Bucket, key []byte, v any) error {
	data := b.Get(key)
	if data == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", key, err)
	}
	return nil
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return b.Put(key, data)
}

// timeKey sorts chronologically: big-endian nanoseconds followed by the id.
func timeKey(prefix string, t time.Time, id string) []byte {
	key := make([]byte, 0, len(prefix)+8+len(id))
	key = append(key, prefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(t.UnixNano()))
	return append(key, id...)
}

// ============================================================================
// HOUSEHOLDS
// ============================================================================

func loadHousehold(tx *bolt.Tx, id string) (*householdRecord, error) {
	var rec householdRecord
	if err := getJSON(tx.Bucket(householdsBucket), []byte(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func saveHousehold(tx *bolt.Tx, rec *householdRecord) error {
	SortGuests(rec.Guests)
	return putJSON(tx.Bucket(householdsBucket), []byte(rec.ID), rec)
}

func (rec *householdRecord) model() *models.Household {
	h := rec.Household
	h.RSVPTokenHash = rec.TokenHash
	h.Guests = append([]models.Guest{}, rec.Guests...)
	return &h
}

func (s *Bolt) CreateHousehold(_ context.Context, h *models.Household) error {
	return s.update(func(tx *bolt.Tx) error {
		households := tx.Bucket(householdsBucket)
		if households.Get([]byte(h.ID)) != nil {
			return fmt.Errorf("%w: household %s", ErrConflict, h.ID)
		}
		tokens := tx.Bucket(tokenIndexBucket)
		if tokens.Get([]byte(h.RSVPTokenHash)) != nil {
			return fmt.Errorf("%w: rsvp_token_hash", ErrConflict)
		}
		if err := tokens.Put([]byte(h.RSVPTokenHash), []byte(h.ID)); err != nil {
			return err
		}

		guestIndex := tx.Bucket(guestIndexBucket)
		for _, g := range h.Guests {
			if guestIndex.Get([]byte(g.ID)) != nil {
				return fmt.Errorf("%w: guest %s", ErrConflict, g.ID)
			}
			if err := guestIndex.Put([]byte(g.ID), []byte(h.ID)); err != nil {
				return err
			}
		}

		rec := &householdRecord{Household: *h, TokenHash: h.RSVPTokenHash}
		rec.Guests = append([]models.Guest{}, h.Guests...)
		return saveHousehold(tx, rec)
	})
}

func (s *Bolt) GetHousehold(_ context.Context, id string) (*models.Household, error) {
	var h *models.Household
	err := s.view(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, id)
		if err != nil {
			return err
		}
		h = rec.model()
		return nil
	})
	return h, err
}

func (s *Bolt) GetHouseholdByTokenHash(_ context.Context, hash string) (*models.Household, error) {
	var h *models.Household
	err := s.view(func(tx *bolt.Tx) error {
		id := tx.Bucket(tokenIndexBucket).Get([]byte(hash))
		if id == nil {
			return ErrNotFound
		}
		rec, err := loadHousehold(tx, string(id))
		if err != nil {
			return err
		}
		h = rec.model()
		return nil
	})
	return h, err
}

func householdMatches(h *models.Household, q models.HouseholdQuery) bool {
	switch q.Status {
	case models.HouseholdStatusResponded:
		if h.RSVPLastSubmittedAt == nil {
			return false
		}
	case models.HouseholdStatusNotResponded:
		if h.RSVPLastSubmittedAt != nil {
			return false
		}
	}

	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(h.DisplayName), needle) {
		return true
	}
	for _, g := range h.Guests {
		if strings.Contains(strings.ToLower(g.FirstName), needle) ||
			strings.Contains(strings.ToLower(g.LastName), needle) ||
			(g.Email != nil && strings.Contains(strings.ToLower(*g.Email), needle)) {
			return true
		}
	}
	return false
}

func (s *Bolt) ListHouseholds(_ context.Context, q models.HouseholdQuery) ([]models.HouseholdListItem, int, error) {
	var matched []models.HouseholdListItem

	err := s.view(func(tx *bolt.Tx) error {
		subs := tx.Bucket(submissionsBucket).Cursor()
		return tx.Bucket(householdsBucket).ForEach(func(k, v []byte) error {
			var rec householdRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling household %s: %w", k, err)
			}
			h := rec.model()
			if !householdMatches(h, q) {
				return nil
			}

			count := 0
			prefix := []byte(h.ID + "/")
			for sk, _ := subs.Seek(prefix); sk != nil && bytes.HasPrefix(sk, prefix); sk, _ = subs.Next() {
				count++
			}
			matched = append(matched, models.HouseholdListItem{Household: *h, SubmissionCount: count})
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, pageSize := NormalizePage(q.Page, q.PageSize, 20)
	return paginate(matched, page, pageSize), len(matched), nil
}

func (s *Bolt) AllHouseholds(_ context.Context) ([]models.Household, error) {
	households := []models.Household{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(householdsBucket).ForEach(func(k, v []byte) error {
			var rec householdRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling household %s: %w", k, err)
			}
			households = append(households, *rec.model())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(households, func(i, j int) bool {
		if households[i].DisplayName != households[j].DisplayName {
			return households[i].DisplayName < households[j].DisplayName
		}
		return households[i].CreatedAt.Before(households[j].CreatedAt)
	})
	return households, nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Bolt) UpdateHousehold(_ context.Context, h *models.Household) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, h.ID)
		if err != nil {
			return err
		}
		rec.DisplayName = h.DisplayName
		rec.Notes = h.Notes
		rec.UpdatedAt = h.UpdatedAt
		return saveHousehold(tx, rec)
	})
}

func (s *Bolt) SetHouseholdTokenHash(_ context.Context, id, hash string) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, id)
		if err != nil {
			return err
		}
		tokens := tx.Bucket(tokenIndexBucket)
		if owner := tokens.Get([]byte(hash)); owner != nil && string(owner) != id {
			return fmt.Errorf("%w: rsvp_token_hash", ErrConflict)
		}
		if err := tokens.Delete([]byte(rec.TokenHash)); err != nil {
			return err
		}
		if err := tokens.Put([]byte(hash), []byte(id)); err != nil {
			return err
		}
		rec.TokenHash = hash
		rec.UpdatedAt = time.Now().UTC()
		return saveHousehold(tx, rec)
	})
}

func (s *Bolt) TouchHouseholdSubmitted(_ context.Context, id string, at time.Time) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, id)
		if err != nil {
			return err
		}
		if rec.RSVPLastSubmittedAt != nil && !at.After(*rec.RSVPLastSubmittedAt) {
			return nil
		}
		rec.RSVPLastSubmittedAt = &at
		return saveHousehold(tx, rec)
	})
}

// DeleteHousehold removes the household with its guests, submissions and
// change requests. Audit rows survive with their household reference cleared.
func (s *Bolt) DeleteHousehold(_ context.Context, id string) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Bucket(tokenIndexBucket).Delete([]byte(rec.TokenHash)); err != nil {
			return err
		}
		guestIndex := tx.Bucket(guestIndexBucket)
		for _, g := range rec.Guests {
			if err := guestIndex.Delete([]byte(g.ID)); err != nil {
				return err
			}
		}

		if err := deletePrefix(tx.Bucket(submissionsBucket), []byte(id+"/")); err != nil {
			return err
		}

		crs := tx.Bucket(changeRequestsBucket)
		var crKeys [][]byte
		err = crs.ForEach(func(k, v []byte) error {
			var cr models.ChangeRequest
			if err := json.Unmarshal(v, &cr); err != nil {
				return fmt.Errorf("unmarshaling change request %s: %w", k, err)
			}
			if cr.HouseholdID == id {
				crKeys = append(crKeys, append([]byte{}, k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range crKeys {
			if err := crs.Delete(k); err != nil {
				return err
			}
		}

		if err := detachAuditHousehold(tx.Bucket(auditBucket), id); err != nil {
			return err
		}

		return tx.Bucket(householdsBucket).Delete([]byte(id))
	})
}

func deletePrefix(b *bolt.Bucket, prefix []byte) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte{}, k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func detachAuditHousehold(b *bolt.Bucket, householdID string) error {
	updates := make(map[string]models.AuditLog)
	err := b.ForEach(func(k, v []byte) error {
		var e models.AuditLog
		if err := json.Unmarshal(v, &e); err != nil {
			return fmt.Errorf("unmarshaling audit entry %s: %w", k, err)
		}
		if e.HouseholdID != nil && *e.HouseholdID == householdID {
			e.HouseholdID = nil
			updates[string(k)] = e
		}
		return nil
	})
	if err != nil {
		return err
	}
	for k, e := range updates {
		if err := putJSON(b, []byte(k), e); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// GUESTS
// ============================================================================

func (s *Bolt) CreateGuest(_ context.Context, g *models.Guest) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadHousehold(tx, g.HouseholdID)
		if err != nil {
			return err
		}
		guestIndex := tx.Bucket(guestIndexBucket)
		if guestIndex.Get([]byte(g.ID)) != nil {
			return fmt.Errorf("%w: guest %s", ErrConflict, g.ID)
		}
		if err := guestIndex.Put([]byte(g.ID), []byte(g.HouseholdID)); err != nil {
			return err
		}
		rec.Guests = append(rec.Guests, *g)
		return saveHousehold(tx, rec)
	})
}

func findGuest(tx *bolt.Tx, id string) (*householdRecord, int, error) {
	householdID := tx.Bucket(guestIndexBucket).Get([]byte(id))
	if householdID == nil {
		return nil, -1, ErrNotFound
	}
	rec, err := loadHousehold(tx, string(householdID))
	if err != nil {
		return nil, -1, err
	}
	for i, g := range rec.Guests {
		if g.ID == id {
			return rec, i, nil
		}
	}
	return nil, -1, ErrNotFound
}

func (s *Bolt) GetGuest(_ context.Context, id string) (*models.Guest, error) {
	var guest *models.Guest
	err := s.view(func(tx *bolt.Tx) error {
		rec, i, err := findGuest(tx, id)
		if err != nil {
			return err
		}
		g := rec.Guests[i]
		guest = &g
		return nil
	})
	return guest, err
}

func (s *Bolt) UpdateGuest(_ context.Context, g *models.Guest) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, i, err := findGuest(tx, g.ID)
		if err != nil {
			return err
		}
		updated := *g
		updated.HouseholdID = rec.ID
		updated.CreatedAt = rec.Guests[i].CreatedAt
		rec.Guests[i] = updated
		return saveHousehold(tx, rec)
	})
}

// DeleteGuest clears dependencies on the guest and drops its responses from
// past submissions.
func (s *Bolt) DeleteGuest(_ context.Context, id string) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, i, err := findGuest(tx, id)
		if err != nil {
			return err
		}
		rec.Guests = append(rec.Guests[:i], rec.Guests[i+1:]...)
		for j := range rec.Guests {
			if dep := rec.Guests[j].AttendanceRequiresGuestID; dep != nil && *dep == id {
				rec.Guests[j].AttendanceRequiresGuestID = nil
			}
		}
		if err := tx.Bucket(guestIndexBucket).Delete([]byte(id)); err != nil {
			return err
		}

		subs := tx.Bucket(submissionsBucket)
		prefix := []byte(rec.ID + "/")
		updates := make(map[string]models.Submission)
		c := subs.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var sub models.Submission
			if err := json.Unmarshal(v, &sub); err != nil {
				return fmt.Errorf("unmarshaling submission %s: %w", k, err)
			}
			kept := sub.Responses[:0]
			for _, r := range sub.Responses {
				if r.GuestID != id {
					kept = append(kept, r)
				}
			}
			if len(kept) != len(sub.Responses) {
				sub.Responses = kept
				updates[string(k)] = sub
			}
		}
		for k, sub := range updates {
			if err := putJSON(subs, []byte(k), sub); err != nil {
				return err
			}
		}

		return saveHousehold(tx, rec)
	})
}

// ============================================================================
// SUBMISSIONS
// ============================================================================

func (s *Bolt) CreateSubmission(_ context.Context, sub *models.Submission) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(householdsBucket).Get([]byte(sub.HouseholdID)) == nil {
			return ErrNotFound
		}
		key := timeKey(sub.HouseholdID+"/", sub.SubmittedAt, sub.ID)
		return putJSON(tx.Bucket(submissionsBucket), key, sub)
	})
}

// LatestSubmission returns nil, nil when the household never submitted
func (s *Bolt) LatestSubmission(ctx context.Context, householdID string) (*models.Submission, error) {
	subs, err := s.ListSubmissions(ctx, householdID, 1)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

func (s *Bolt) ListSubmissions(_ context.Context, householdID string, limit int) ([]models.Submission, error) {
	result := []models.Submission{}
	err := s.view(func(tx *bolt.Tx) error {
		prefix := []byte(householdID + "/")
		c := tx.Bucket(submissionsBucket).Cursor()

		// Walk backwards from the end of the prefix range, newest first
		var k, v []byte
		upper := append(append([]byte{}, prefix...), 0xFF)
		if k, v = c.Seek(upper); k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Prev() {
			if limit > 0 && len(result) >= limit {
				break
			}
			var sub models.Submission
			if err := json.Unmarshal(v, &sub); err != nil {
				return fmt.Errorf("unmarshaling submission %s: %w", k, err)
			}
			result = append(result, sub)
		}
		return nil
	})
	return result, err
}

// ============================================================================
// CHANGE REQUESTS
// ============================================================================

func (s *Bolt) CreateChangeRequest(_ context.Context, cr *models.ChangeRequest) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(householdsBucket).Get([]byte(cr.HouseholdID)) == nil {
			return ErrNotFound
		}
		return putJSON(tx.Bucket(changeRequestsBucket), []byte(cr.ID), cr)
	})
}

func (s *Bolt) ListChangeRequests(_ context.Context, householdID string) ([]models.ChangeRequest, error) {
	result := []models.ChangeRequest{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(changeRequestsBucket).ForEach(func(k, v []byte) error {
			var cr models.ChangeRequest
			if err := json.Unmarshal(v, &cr); err != nil {
				return fmt.Errorf("unmarshaling change request %s: %w", k, err)
			}
			if cr.HouseholdID == householdID {
				result = append(result, cr)
			}
			return nil
		})
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (s *Bolt) UpdateChangeRequestStatus(_ context.Context, id, status string) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(changeRequestsBucket)
		if err := getJSON(b, []byte(id), &cr); err != nil {
			return err
		}
		cr.Status = status
		return putJSON(b, []byte(id), cr)
	})
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// ============================================================================
// AUDIT LOG
// ============================================================================

func (s *Bolt) CreateAuditLog(_ context.Context, e *models.AuditLog) error {
	stored := *e
	stored.ActorAdmin, stored.Household = nil, nil
	return s.update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(auditBucket), timeKey("", e.CreatedAt, e.ID), stored)
	})
}

// summarizeAuditEntry attaches the acting admin and the household when they
// still exist.
func summarizeAuditEntry(tx *bolt.Tx, e *models.AuditLog) error {
	if e.ActorAdminID != nil {
		admin, err := loadAdmin(tx, *e.ActorAdminID)
		switch {
		case err == nil:
			e.ActorAdmin = &models.AuditAdminSummary{ID: admin.ID, Name: admin.Name, Email: admin.Email}
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	if e.HouseholdID != nil {
		rec, err := loadHousehold(tx, *e.HouseholdID)
		switch {
		case err == nil:
			e.Household = &models.AuditHouseholdSummary{ID: rec.ID, DisplayName: rec.DisplayName}
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	return nil
}

func auditMatches(e *models.AuditLog, q models.AuditQuery) bool {
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.ActorType != "" && q.ActorType != "all" && string(e.ActorType) != q.ActorType {
		return false
	}
	if q.HouseholdID != "" && (e.HouseholdID == nil || *e.HouseholdID != q.HouseholdID) {
		return false
	}
	if q.DateFrom != nil && e.CreatedAt.Before(*q.DateFrom) {
		return false
	}
	if q.DateTo != nil && e.CreatedAt.After(*q.DateTo) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(e.Action), needle) &&
			!strings.Contains(strings.ToLower(e.EntityType), needle) &&
			!strings.Contains(strings.ToLower(e.EntityID), needle) {
			return false
		}
	}
	return true
}

func (s *Bolt) QueryAuditLogs(_ context.Context, q models.AuditQuery) ([]models.AuditLog, int, error) {
	page, pageSize := NormalizePage(q.Page, q.PageSize, 50)
	start := (page - 1) * pageSize

	items := []models.AuditLog{}
	total := 0
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(auditBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e models.AuditLog
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshaling audit entry %x: %w", k, err)
			}
			if !auditMatches(&e, q) {
				continue
			}
			if total >= start && len(items) < pageSize {
				if err := summarizeAuditEntry(tx, &e); err != nil {
					return err
				}
				items = append(items, e)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ============================================================================
// ADMIN USERS
// ============================================================================

func (rec *adminRecord) model() *models.AdminUser {
	a := rec.AdminUser
	a.PasswordHash = rec.PasswordHash
	a.TOTPSecret = rec.TOTPSecret
	return &a
}

func loadAdmin(tx *bolt.Tx, id string) (*adminRecord, error) {
	var rec adminRecord
	if err := getJSON(tx.Bucket(adminsBucket), []byte(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Bolt) CreateAdmin(_ context.Context, a *models.AdminUser) error {
	return s.update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(adminEmailBucket)
		email := []byte(strings.ToLower(a.Email))
		if emails.Get(email) != nil {
			return fmt.Errorf("%w: admin email", ErrConflict)
		}
		if err := emails.Put(email, []byte(a.ID)); err != nil {
			return err
		}
		rec := adminRecord{AdminUser: *a, PasswordHash: a.PasswordHash, TOTPSecret: a.TOTPSecret}
		return putJSON(tx.Bucket(adminsBucket), []byte(a.ID), rec)
	})
}

func (s *Bolt) GetAdmin(_ context.Context, id string) (*models.AdminUser, error) {
	var admin *models.AdminUser
	err := s.view(func(tx *bolt.Tx) error {
		rec, err := loadAdmin(tx, id)
		if err != nil {
			return err
		}
		admin = rec.model()
		return nil
	})
	return admin, err
}

func (s *Bolt) GetAdminByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	var admin *models.AdminUser
	err := s.view(func(tx *bolt.Tx) error {
		id := tx.Bucket(adminEmailBucket).Get([]byte(strings.ToLower(email)))
		if id == nil {
			return ErrNotFound
		}
		rec, err := loadAdmin(tx, string(id))
		if err != nil {
			return err
		}
		admin = rec.model()
		return nil
	})
	return admin, err
}

func (s *Bolt) UpdateAdminLogin(_ context.Context, id string, at time.Time) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadAdmin(tx, id)
		if err != nil {
			return err
		}
		rec.LastLoginAt = &at
		return putJSON(tx.Bucket(adminsBucket), []byte(id), rec)
	})
}

func (s *Bolt) SetAdminTOTP(_ context.Context, id, secret string, enabled bool) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadAdmin(tx, id)
		if err != nil {
			return err
		}
		rec.TOTPSecret = secret
		rec.TOTPEnabled = enabled
		return putJSON(tx.Bucket(adminsBucket), []byte(id), rec)
	})
}

func (s *Bolt) SetAdminPassword(_ context.Context, id, passwordHash string) error {
	return s.update(func(tx *bolt.Tx) error {
		rec, err := loadAdmin(tx, id)
		if err != nil {
			return err
		}
		rec.PasswordHash = passwordHash
		return putJSON(tx.Bucket(adminsBucket), []byte(id), rec)
	})
}
