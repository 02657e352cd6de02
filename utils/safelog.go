// utils/safelog.go
// ============================================================================
// SAFE LOGGING - Masque les données sensibles en production
// ============================================================================
// Structured logging on top of logrus. Guest e-mails, phone numbers and IDs
// are masked in production; RSVP tokens are never written, in any mode.
// ============================================================================

package utils

import (
	"os"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction détermine si on est en mode production
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"
)

// ConfigureLogging sets the global logrus formatter and level
func ConfigureLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// ============================================================================
// PATTERNS DE MASQUAGE
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRegex = regexp.MustCompile(`\+?\d[\d\s.-]{7,}\d`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

	// 64 hex chars: RSVP tokens and their digests
	tokenRegex = regexp.MustCompile(`\b[0-9a-fA-F]{64}\b`)

	// t=<rsvp token> and access_token=<jwt> in request URLs
	tokenParamRegex = regexp.MustCompile(`([?&](?:t|access_token)=)[^&\s]*`)
)

// ============================================================================
// FONCTIONS DE MASQUAGE
// ============================================================================

// MaskString masque les données sensibles dans une chaîne
func MaskString(input string) string {
	result := tokenParamRegex.ReplaceAllString(input, "${1}***")
	result = tokenRegex.ReplaceAllString(result, "***TOKEN***")

	if !IsProduction {
		return result
	}

	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = phoneRegex.ReplaceAllString(result, "***PHONE***")
	result = uuidRegex.ReplaceAllStringFunc(result, MaskID)

	return result
}

// MaskID masque partiellement un ID (garde les 8 premiers caractères)
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskEmail masque un email
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// FONCTIONS DE LOGGING MÉTIER SPÉCIFIQUES
// ============================================================================

// LogRSVPAction logs a guest-side action without exposing the token
func LogRSVPAction(action string, householdID string, fields log.Fields) {
	entry := log.WithField("household_id", MaskID(householdID))
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Info("[RSVP] " + action)
}

// LogAdminAction logs an admin-side action
func LogAdminAction(action string, adminID string, entityID string) {
	log.WithFields(log.Fields{
		"admin_id":  MaskID(adminID),
		"entity_id": MaskID(entityID),
	}).Info("[Admin] " + action)
}

// LogAuthAction log une action d'authentification
func LogAuthAction(action string, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}

	log.WithFields(log.Fields{
		"email":  MaskEmail(email),
		"status": status,
	}).Info("[Auth] " + action)
}

// LogAPIRequest log une requête API (sans données sensibles)
func LogAPIRequest(method string, path string, adminID string, statusCode int, duration string) {
	log.WithFields(log.Fields{
		"method":   method,
		"path":     MaskString(path),
		"admin_id": MaskID(adminID),
		"status":   statusCode,
		"duration": duration,
	}).Info("[API] request")
}

// ============================================================================
// FONCTIONS UTILITAIRES
// ============================================================================

// GetEnvMode retourne le mode d'environnement actuel
func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup log les informations de démarrage de l'application
func LogStartup(appName string, version string, port string) {
	log.WithFields(log.Fields{
		"version": version,
		"mode":    GetEnvMode(),
		"port":    port,
		"level":   log.GetLevel().String(),
	}).Infof("🚀 %s starting", appName)
	if IsProduction {
		log.Warn("⚠️  Production mode: sensitive data will be masked in logs")
	}
}
