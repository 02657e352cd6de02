package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/middleware"
	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/utils"
)

// WSHandler pushes audit entries to connected admin dashboards
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 4 * 1024

	// Keep-Alive Configuration (Critical for Render.com/Cloud hosting)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		adminID, _ := s.Get("admin_id")
		id, _ := adminID.(string)
		log.WithField("admin_id", utils.MaskID(id)).Info("✅ Admin connected to audit feed")
	})

	m.HandleDisconnect(func(s *melody.Session) {
		adminID, _ := s.Get("admin_id")
		id, _ := adminID.(string)
		log.WithField("admin_id", utils.MaskID(id)).Info("🔌 Admin disconnected from audit feed")
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.WithError(err).Warn("❌ WebSocket error")
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades an authenticated admin request
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]any{"admin_id": middleware.GetAdminID(c)}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.WithError(err).Error("❌ Failed to upgrade websocket")
	}
}

type auditEvent struct {
	Type  string          `json:"type"`
	Entry models.AuditLog `json:"entry"`
}

// AuditLogged broadcasts a freshly written audit entry
func (h *WSHandler) AuditLogged(entry models.AuditLog) {
	msg, err := json.Marshal(auditEvent{Type: "audit", Entry: entry})
	if err != nil {
		log.WithError(err).Error("❌ Failed to encode audit event")
		return
	}
	if err := h.M.Broadcast(msg); err != nil {
		log.WithError(err).Warn("⚠️ Error broadcasting audit event")
	}
}

func (h *WSHandler) Close() error {
	return h.M.Close()
}
