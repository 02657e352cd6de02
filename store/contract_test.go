package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/store"
)

// runStoreSuite runs the behaviour every engine must share. open returns an
// empty store for each subtest.
func runStoreSuite(t *testing.T, open func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		run  func(t *testing.T, s store.Store)
	}{
		{"create and resolve household", testCreateAndResolveHousehold},
		{"token hash is unique", testTokenHashIsUnique},
		{"new token hash invalidates the old one", testSetHouseholdTokenHash},
		{"latest submission", testLatestSubmission},
		{"touch submitted is monotonic", testTouchHouseholdSubmittedIsMonotonic},
		{"WithTx rolls back", testWithTxRollsBack},
		{"delete household cascades", testDeleteHouseholdCascades},
		{"delete guest clears dependencies", testDeleteGuestClearsDependencies},
		{"list households", testListHouseholds},
		{"all households", testAllHouseholds},
		{"change requests", testChangeRequests},
		{"query audit logs", testQueryAuditLogs},
		{"admins", testAdmins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, open(t))
		})
	}
}

func strPtr(s string) *string { return &s }

// now is truncated to what Postgres can store
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func testHousehold(name, tokenHash string) *models.Household {
	created := now()
	id := uuid.New().String()
	return &models.Household{
		ID:            id,
		DisplayName:   name,
		RSVPTokenHash: tokenHash,
		CreatedAt:     created,
		UpdatedAt:     created,
		Guests: []models.Guest{
			{ID: uuid.New().String(), HouseholdID: id, FirstName: "Bob", LastName: "Smith", CreatedAt: created.Add(time.Microsecond)},
			{ID: uuid.New().String(), HouseholdID: id, FirstName: "Alice", LastName: "Smith", Email: strPtr("alice@example.com"), IsPrimary: true, CreatedAt: created},
		},
	}
}

func testSubmission(householdID string, at time.Time, responses ...models.GuestResponse) *models.Submission {
	return &models.Submission{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		SubmittedAt: at,
		ActorType:   models.ActorGuest,
		Responses:   responses,
	}
}

func testCreateAndResolveHousehold(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("The Smiths", "hash-1")
	require.NoError(t, s.CreateHousehold(ctx, h))

	got, err := s.GetHouseholdByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, "hash-1", got.RSVPTokenHash)
	require.Len(t, got.Guests, 2)
	assert.Equal(t, "Alice", got.Guests[0].FirstName, "primary guest comes first")
	assert.Equal(t, "alice@example.com", *got.Guests[0].Email)

	_, err = s.GetHouseholdByTokenHash(ctx, "unknown")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetHousehold(ctx, uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testTokenHashIsUnique(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateHousehold(ctx, testHousehold("A", "same")))
	err := s.CreateHousehold(ctx, testHousehold("B", "same"))
	assert.ErrorIs(t, err, store.ErrConflict)

	other := testHousehold("C", "other")
	require.NoError(t, s.CreateHousehold(ctx, other))
	assert.ErrorIs(t, s.SetHouseholdTokenHash(ctx, other.ID, "same"), store.ErrConflict)
}

func testSetHouseholdTokenHash(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "old")
	require.NoError(t, s.CreateHousehold(ctx, h))
	require.NoError(t, s.SetHouseholdTokenHash(ctx, h.ID, "new"))

	_, err := s.GetHouseholdByTokenHash(ctx, "old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetHouseholdByTokenHash(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
}

func testLatestSubmission(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))

	latest, err := s.LatestSubmission(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := now()
	for i := 0; i < 3; i++ {
		sub := testSubmission(h.ID, base.Add(time.Duration(i)*time.Second),
			models.GuestResponse{GuestID: h.Guests[0].ID, Attending: i%2 == 0, DietaryRestrictions: strPtr("vegan")})
		if i == 2 {
			sub.Extras = &models.Extras{SongRequestText: strPtr("September")}
		}
		require.NoError(t, s.CreateSubmission(ctx, sub))
	}

	latest, err = s.LatestSubmission(ctx, h.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.SubmittedAt.Equal(base.Add(2*time.Second)))
	require.Len(t, latest.Responses, 1)
	assert.True(t, latest.Responses[0].Attending)
	assert.Equal(t, "vegan", *latest.Responses[0].DietaryRestrictions)
	require.NotNil(t, latest.Extras)
	assert.Equal(t, "September", *latest.Extras.SongRequestText)
	assert.Nil(t, latest.Extras.SongRequestSpotifyURL)

	subs, err := s.ListSubmissions(ctx, h.ID, 10)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.True(t, subs[0].SubmittedAt.After(subs[1].SubmittedAt))
	assert.True(t, subs[1].SubmittedAt.After(subs[2].SubmittedAt))
	assert.Nil(t, subs[1].Extras)

	subs, err = s.ListSubmissions(ctx, h.ID, 2)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	subs, err = s.ListSubmissions(ctx, h.ID, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 3, "zero means no limit")

	// A second household's submissions do not leak in
	other := testHousehold("B", "h2")
	require.NoError(t, s.CreateHousehold(ctx, other))
	subs, err = s.ListSubmissions(ctx, other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func testTouchHouseholdSubmittedIsMonotonic(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))

	later := now()
	earlier := later.Add(-time.Minute)
	require.NoError(t, s.TouchHouseholdSubmitted(ctx, h.ID, later))
	require.NoError(t, s.TouchHouseholdSubmitted(ctx, h.ID, earlier))

	got, err := s.GetHousehold(ctx, h.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RSVPLastSubmittedAt)
	assert.True(t, got.RSVPLastSubmittedAt.Equal(later))

	assert.ErrorIs(t, s.TouchHouseholdSubmitted(ctx, uuid.New().String(), later), store.ErrNotFound)
}

func testWithTxRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.CreateSubmission(ctx, testSubmission(h.ID, now())))
		require.NoError(t, tx.TouchHouseholdSubmitted(ctx, h.ID, now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	latest, err := s.LatestSubmission(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	got, err := s.GetHousehold(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RSVPLastSubmittedAt)
}

func testDeleteHouseholdCascades(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))
	require.NoError(t, s.CreateSubmission(ctx, testSubmission(h.ID, now(),
		models.GuestResponse{GuestID: h.Guests[0].ID, Attending: true})))
	require.NoError(t, s.CreateChangeRequest(ctx, &models.ChangeRequest{
		ID: uuid.New().String(), HouseholdID: h.ID, Message: "hi", Status: models.ChangeRequestNew, CreatedAt: now(),
	}))
	require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{
		ID: uuid.New().String(), CreatedAt: now(), ActorType: models.ActorGuest,
		HouseholdID: &h.ID, Action: models.ActionRSVPSubmitted, EntityType: "RsvpSubmission", EntityID: "x",
	}))

	require.NoError(t, s.DeleteHousehold(ctx, h.ID))

	_, err := s.GetHousehold(ctx, h.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetHouseholdByTokenHash(ctx, "h")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetGuest(ctx, h.Guests[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	subs, err := s.ListSubmissions(ctx, h.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, subs)
	crs, err := s.ListChangeRequests(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, crs)

	logs, total, err := s.QueryAuditLogs(ctx, models.AuditQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Nil(t, logs[0].HouseholdID)
	assert.Nil(t, logs[0].Household)

	assert.ErrorIs(t, s.DeleteHousehold(ctx, h.ID), store.ErrNotFound)
}

func testDeleteGuestClearsDependencies(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	primary, dependent := h.Guests[1], h.Guests[0]
	h.Guests[0].AttendanceRequiresGuestID = &primary.ID
	require.NoError(t, s.CreateHousehold(ctx, h))
	require.NoError(t, s.CreateSubmission(ctx, testSubmission(h.ID, now(),
		models.GuestResponse{GuestID: primary.ID, Attending: true},
		models.GuestResponse{GuestID: dependent.ID, Attending: true},
	)))

	require.NoError(t, s.DeleteGuest(ctx, primary.ID))

	got, err := s.GetHousehold(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, got.Guests, 1)
	assert.Nil(t, got.Guests[0].AttendanceRequiresGuestID)

	// Responses of a deleted guest go with it
	latest, err := s.LatestSubmission(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, latest.Responses, 1)
	assert.Equal(t, dependent.ID, latest.Responses[0].GuestID)

	assert.ErrorIs(t, s.DeleteGuest(ctx, primary.ID), store.ErrNotFound)
}

func testListHouseholds(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := testHousehold("The Smiths", "a")
	b := testHousehold("The Joneses", "b")
	b.CreatedAt = a.CreatedAt.Add(time.Second)
	require.NoError(t, s.CreateHousehold(ctx, a))
	require.NoError(t, s.CreateHousehold(ctx, b))
	require.NoError(t, s.TouchHouseholdSubmitted(ctx, a.ID, now()))
	require.NoError(t, s.CreateSubmission(ctx, testSubmission(a.ID, now())))

	items, total, err := s.ListHouseholds(ctx, models.HouseholdQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID, "newest first")
	assert.Len(t, items[0].Guests, 2)
	assert.Equal(t, 1, items[1].SubmissionCount)

	items, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Status: models.HouseholdStatusResponded})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, a.ID, items[0].ID)

	_, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Status: models.HouseholdStatusNotResponded})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Search: "ALICE@"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Search: "jones"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, 0, total, "wildcards are matched literally")

	items, total, err = s.ListHouseholds(ctx, models.HouseholdQuery{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)
}

func testAllHouseholds(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateHousehold(ctx, testHousehold("Zimmermann", "z")))
	require.NoError(t, s.CreateHousehold(ctx, testHousehold("Adams", "a")))

	all, err := s.AllHouseholds(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Adams", all[0].DisplayName)
	assert.Len(t, all[0].Guests, 2)
}

func testChangeRequests(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := testHousehold("A", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))

	first := &models.ChangeRequest{ID: uuid.New().String(), HouseholdID: h.ID, Message: "one", Status: models.ChangeRequestNew, CreatedAt: now()}
	second := &models.ChangeRequest{ID: uuid.New().String(), HouseholdID: h.ID, Message: "two", Status: models.ChangeRequestNew, CreatedAt: first.CreatedAt.Add(time.Second)}
	require.NoError(t, s.CreateChangeRequest(ctx, first))
	require.NoError(t, s.CreateChangeRequest(ctx, second))

	crs, err := s.ListChangeRequests(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, crs, 2)
	assert.Equal(t, "two", crs[0].Message, "newest first")

	updated, err := s.UpdateChangeRequestStatus(ctx, first.ID, models.ChangeRequestHandled)
	require.NoError(t, err)
	assert.Equal(t, models.ChangeRequestHandled, updated.Status)
	assert.Equal(t, "one", updated.Message)

	_, err = s.UpdateChangeRequestStatus(ctx, uuid.New().String(), models.ChangeRequestHandled)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testQueryAuditLogs(t *testing.T, s store.Store) {
	ctx := context.Background()

	admin := &models.AdminUser{
		ID: uuid.New().String(), Email: "couple@example.com", Name: "Couple",
		Role: models.RoleSuperAdmin, PasswordHash: "bcrypt-hash", CreatedAt: now(),
	}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	h := testHousehold("The Smiths", "h")
	require.NoError(t, s.CreateHousehold(ctx, h))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.AuditLog{
		{ActorType: models.ActorAdmin, ActorAdminID: &admin.ID, Action: models.ActionHouseholdCreated, EntityType: "Household", EntityID: h.ID},
		{ActorType: models.ActorGuest, Action: models.ActionRSVPSubmitted, EntityType: "RsvpSubmission", EntityID: "sub-1", HouseholdID: &h.ID,
			Metadata: map[string]any{"guestCount": 2, "ip": "203.0.113.9"}},
		{ActorType: models.ActorGuest, Action: models.ActionChangeRequestSubmitted, EntityType: "ChangeRequest", EntityID: "cr-1", HouseholdID: &h.ID},
	}
	for i := range entries {
		entries[i].ID = uuid.New().String()
		entries[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.CreateAuditLog(ctx, &entries[i]))
	}

	items, total, err := s.QueryAuditLogs(ctx, models.AuditQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, models.ActionChangeRequestSubmitted, items[0].Action, "newest first")

	// Actor and household summaries come with each item
	require.NotNil(t, items[2].ActorAdmin)
	assert.Equal(t, models.AuditAdminSummary{ID: admin.ID, Name: "Couple", Email: "couple@example.com"}, *items[2].ActorAdmin)
	assert.Nil(t, items[2].Household)
	require.NotNil(t, items[1].Household)
	assert.Equal(t, models.AuditHouseholdSummary{ID: h.ID, DisplayName: "The Smiths"}, *items[1].Household)
	assert.Nil(t, items[1].ActorAdmin)

	assert.EqualValues(t, 2, items[1].Metadata["guestCount"])
	assert.Equal(t, "203.0.113.9", items[1].Metadata["ip"])
	assert.Nil(t, items[0].Metadata)

	_, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{ActorType: "GUEST"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{ActorType: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{Action: models.ActionRSVPSubmitted})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{Search: "rsvpsub"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	from := base.Add(time.Hour)
	_, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{DateFrom: &from, DateTo: &from})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "date bounds are inclusive")

	items, total, err = s.QueryAuditLogs(ctx, models.AuditQuery{HouseholdID: h.ID, Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, models.ActionRSVPSubmitted, items[0].Action)
}

func testAdmins(t *testing.T, s store.Store) {
	ctx := context.Background()

	admin := &models.AdminUser{
		ID: uuid.New().String(), Email: "Couple@Example.com", Name: "Couple",
		Role: models.RoleSuperAdmin, PasswordHash: "bcrypt-hash", CreatedAt: now(),
	}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	assert.ErrorIs(t, s.CreateAdmin(ctx, &models.AdminUser{ID: uuid.New().String(), Email: "couple@example.com", CreatedAt: now()}), store.ErrConflict)

	got, err := s.GetAdminByEmail(ctx, "couple@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.Equal(t, "bcrypt-hash", got.PasswordHash)

	require.NoError(t, s.SetAdminTOTP(ctx, admin.ID, "SECRET", true))
	got, err = s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "SECRET", got.TOTPSecret)
	assert.True(t, got.TOTPEnabled)
	assert.Equal(t, "bcrypt-hash", got.PasswordHash)

	require.NoError(t, s.SetAdminTOTP(ctx, admin.ID, "", false))
	require.NoError(t, s.SetAdminPassword(ctx, admin.ID, "new-hash"))
	login := now()
	require.NoError(t, s.UpdateAdminLogin(ctx, admin.ID, login))

	got, err = s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TOTPSecret)
	assert.False(t, got.TOTPEnabled)
	assert.Equal(t, "new-hash", got.PasswordHash)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(login))

	_, err = s.GetAdmin(ctx, uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.SetAdminPassword(ctx, uuid.New().String(), "x"), store.ErrNotFound)
}
