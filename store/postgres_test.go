package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LovationAdmin/wedding-api/models"
)

func TestBuildAuditFilter_Empty(t *testing.T) {
	where, args := buildAuditFilter(models.AuditQuery{ActorType: "all"})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildAuditFilter_AllFilters(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	where, args := buildAuditFilter(models.AuditQuery{
		Action:      models.ActionRSVPSubmitted,
		ActorType:   "GUEST",
		HouseholdID: "h-1",
		DateFrom:    &from,
		DateTo:      &to,
		Search:      "50%_off",
	})

	assert.Equal(t,
		" WHERE l.action = $1 AND l.actor_type = $2 AND l.household_id = $3 AND l.created_at >= $4 AND l.created_at <= $5"+
			" AND (l.action ILIKE $6 OR l.entity_type ILIKE $6 OR l.entity_id ILIKE $6)",
		where)
	assert.Equal(t, []any{models.ActionRSVPSubmitted, "GUEST", "h-1", from, to, `%50\%\_off%`}, args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%smith%", likePattern("smith"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
