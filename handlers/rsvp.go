package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/services"
	"github.com/LovationAdmin/wedding-api/utils"
)

// ChangeRequestNotifier tells the couple about a new change request
type ChangeRequestNotifier interface {
	NotifyChangeRequest(ctx context.Context, receipt *services.ChangeRequestReceipt) error
}

type RSVPHandler struct {
	rsvp     *services.RSVPService
	notifier ChangeRequestNotifier
}

func NewRSVPHandler(rsvp *services.RSVPService, notifier ChangeRequestNotifier) *RSVPHandler {
	return &RSVPHandler{rsvp: rsvp, notifier: notifier}
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// GET /public/rsvp/household?t=
func (h *RSVPHandler) GetHousehold(c *gin.Context) {
	view, err := h.rsvp.GetHouseholdView(c.Request.Context(), c.Query("t"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /public/rsvp/submit?t=
// Closed submissions answer 403 whatever the body holds.
func (h *RSVPHandler) Submit(c *gin.Context) {
	if err := h.rsvp.CheckDeadline(); err != nil {
		respondError(c, err)
		return
	}

	var req models.RSVPSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.rsvp.SubmitRSVP(c.Request.Context(), c.Query("t"), req, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /public/rsvp/change-request?t=
func (h *RSVPHandler) ChangeRequest(c *gin.Context) {
	var req models.ChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	receipt, err := h.rsvp.SubmitChangeRequest(c.Request.Context(), c.Query("t"), req, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if h.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := h.notifier.NotifyChangeRequest(ctx, receipt); err != nil {
				log.WithError(err).WithField("household_id", utils.MaskID(receipt.Household.ID)).
					Warn("⚠️ Change request notification failed")
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
