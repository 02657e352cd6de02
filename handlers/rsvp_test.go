package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/wedding-api/models"
)

func TestGetHousehold(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)

	w := srv.do(t, http.MethodGet, "/public/rsvp/household?t="+receipt.RSVPToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[models.HouseholdView](t, w)
	assert.Equal(t, "The Garcias", view.DisplayName)
	assert.Len(t, view.Guests, 2)
	assert.True(t, view.CanEdit)
	assert.NotContains(t, w.Body.String(), receipt.Household.RSVPTokenHash)
}

func TestGetHousehold_UnknownOrMissingToken(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t)

	for _, path := range []string{
		"/public/rsvp/household",
		"/public/rsvp/household?t=abc",
		"/public/rsvp/household?t=0000000000000000000000000000000000000000000000000000000000000000",
	} {
		w := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	}
}

func TestSubmit(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)
	maria, luis := receipt.Household.Guests[0], receipt.Household.Guests[1]

	w := srv.do(t, http.MethodPost, "/public/rsvp/submit?t="+receipt.RSVPToken, "", gin.H{
		"responses": []gin.H{
			{"guestId": maria.ID, "attending": false},
			{"guestId": luis.ID, "attending": true, "dietaryRestrictions": "no nuts"},
		},
		"songRequestSpotifyUrl": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[models.SubmissionResult](t, w)
	assert.True(t, result.OK)
	require.Len(t, result.Corrected, 1)
	assert.Equal(t, luis.ID, result.Corrected[0].GuestID)
}

func TestSubmit_OmitsEmptyCorrections(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)

	w := srv.do(t, http.MethodPost, "/public/rsvp/submit?t="+receipt.RSVPToken, "", gin.H{
		"responses": []gin.H{{"guestId": receipt.Household.Guests[0].ID, "attending": true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "corrected")
}

func TestSubmit_Validation(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)
	maria := receipt.Household.Guests[0]

	tests := []struct {
		name string
		body gin.H
	}{
		{"no responses", gin.H{"responses": []gin.H{}}},
		{"attending missing", gin.H{"responses": []gin.H{{"guestId": maria.ID}}}},
		{"guest id not a uuid", gin.H{"responses": []gin.H{{"guestId": "bob", "attending": true}}}},
		{"bad spotify url", gin.H{
			"responses":             []gin.H{{"guestId": maria.ID, "attending": true}},
			"songRequestSpotifyUrl": "https://example.com/track/1",
		}},
		{"foreign guest", gin.H{"responses": []gin.H{{"guestId": "4b9a1f6e-0000-4000-8000-000000000000", "attending": true}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/public/rsvp/submit?t="+receipt.RSVPToken, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSubmit_AfterDeadline(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)
	srv.settings.deadline = time.Now().Add(-time.Minute)

	w := srv.do(t, http.MethodPost, "/public/rsvp/submit?t="+receipt.RSVPToken, "", gin.H{
		"responses": []gin.H{{"guestId": receipt.Household.Guests[0].ID, "attending": true}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "change request")

	// A body that would not bind still gets the deadline answer
	w = srv.do(t, http.MethodPost, "/public/rsvp/submit?t="+receipt.RSVPToken, "", gin.H{"responses": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "change request")

	w = srv.do(t, http.MethodPost, "/public/rsvp/change-request?t="+receipt.RSVPToken, "", gin.H{
		"message": "Luis can make it after all",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	select {
	case r := <-srv.notifier.receipts:
		assert.Equal(t, "The Garcias", r.Household.DisplayName)
		assert.Equal(t, "Luis can make it after all", r.Request.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("change request notification was not sent")
	}
}

func TestChangeRequest_Validation(t *testing.T) {
	srv := newTestServer(t)
	receipt := srv.seed(t)

	w := srv.do(t, http.MethodPost, "/public/rsvp/change-request?t="+receipt.RSVPToken, "", gin.H{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/public/rsvp/change-request?t=nope", "", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
