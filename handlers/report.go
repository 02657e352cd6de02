package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/wedding-api/middleware"
	"github.com/LovationAdmin/wedding-api/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /admin/stats
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /admin/export/guests.csv
func (h *ReportHandler) ExportGuests(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reports.WriteGuestCSV(c.Request.Context(), middleware.GetAdminID(c), &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("guests-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
