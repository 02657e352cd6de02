package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/wedding-api/middleware"
	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/services"
)

type HouseholdHandler struct {
	households *services.HouseholdService
}

func NewHouseholdHandler(households *services.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{households: households}
}

// ============================================================================
// HOUSEHOLDS
// ============================================================================

func (h *HouseholdHandler) List(c *gin.Context) {
	var q models.HouseholdQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.households.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HouseholdHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.households.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create answers with the raw RSVP token. It is never shown again.
func (h *HouseholdHandler) Create(c *gin.Context) {
	var req models.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	receipt, err := h.households.Create(c.Request.Context(), middleware.GetAdminID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *HouseholdHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	household, err := h.households.Update(c.Request.Context(), middleware.GetAdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, household)
}

func (h *HouseholdHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.households.Delete(c.Request.Context(), middleware.GetAdminID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HouseholdHandler) RegenerateToken(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	receipt, err := h.households.RegenerateToken(c.Request.Context(), middleware.GetAdminID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ============================================================================
// GUESTS
// ============================================================================

func (h *HouseholdHandler) AddGuest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.AddGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guest, err := h.households.AddGuest(c.Request.Context(), middleware.GetAdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, guest)
}

func (h *HouseholdHandler) UpdateGuest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guest, err := h.households.UpdateGuest(c.Request.Context(), middleware.GetAdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (h *HouseholdHandler) DeleteGuest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.households.DeleteGuest(c.Request.Context(), middleware.GetAdminID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ============================================================================
// CHANGE REQUESTS
// ============================================================================

func (h *HouseholdHandler) UpdateChangeRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cr, err := h.households.SetChangeRequestStatus(c.Request.Context(), middleware.GetAdminID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}
