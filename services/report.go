package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/store"
	"github.com/LovationAdmin/wedding-api/utils"
)

// ReportStore is the read side used by dashboard reports
type ReportStore interface {
	AllHouseholds(ctx context.Context) ([]models.Household, error)
	LatestSubmission(ctx context.Context, householdID string) (*models.Submission, error)
}

type ReportService struct {
	store ReportStore
	audit *AuditService
}

func NewReportService(s ReportStore, audit *AuditService) *ReportService {
	return &ReportService{store: s, audit: audit}
}

type householdAnswers struct {
	household models.Household
	latest    *models.Submission
	responses map[string]models.GuestResponse
}

func (s *ReportService) collect(ctx context.Context) ([]householdAnswers, error) {
	households, err := s.store.AllHouseholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load households: %w", err)
	}

	out := make([]householdAnswers, 0, len(households))
	for _, h := range households {
		latest, err := s.store.LatestSubmission(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest submission: %w", err)
		}
		a := householdAnswers{household: h, latest: latest, responses: map[string]models.GuestResponse{}}
		if latest != nil {
			for _, r := range latest.Responses {
				a.responses[r.GuestID] = r
			}
		}
		store.SortGuests(a.household.Guests)
		out = append(out, a)
	}
	return out, nil
}

// Stats counts guests from the latest submission of every household. Guests
// without an answer in it are pending.
func (s *ReportService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	answers, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalHouseholds: len(answers)}
	dietary := map[string]int{}
	for _, a := range answers {
		if a.latest != nil {
			stats.RespondedHouseholds++
			if a.latest.Extras != nil {
				stats.SongRequests++
			}
		}
		for _, g := range a.household.Guests {
			stats.TotalGuests++
			r, ok := a.responses[g.ID]
			switch {
			case !ok:
				stats.PendingGuests++
			case r.Attending:
				stats.AttendingGuests++
				if r.DietaryRestrictions != nil {
					dietary[strings.ToLower(strings.TrimSpace(*r.DietaryRestrictions))]++
				}
			default:
				stats.NotAttendingGuests++
			}
		}
	}
	stats.NotRespondedHouseholds = stats.TotalHouseholds - stats.RespondedHouseholds

	stats.DietarySummary = make([]models.DietaryCount, 0, len(dietary))
	for restriction, count := range dietary {
		stats.DietarySummary = append(stats.DietarySummary, models.DietaryCount{Restriction: restriction, Count: count})
	}
	sort.Slice(stats.DietarySummary, func(i, j int) bool {
		a, b := stats.DietarySummary[i], stats.DietarySummary[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Restriction < b.Restriction
	})

	return stats, nil
}

var guestCSVHeader = []string{
	"household", "first_name", "last_name", "email", "phone", "primary",
	"status", "dietary_restrictions", "responded_at",
}

// WriteGuestCSV writes one row per guest with its current answer. Exports
// contain guest contact details, so each one is audited.
func (s *ReportService) WriteGuestCSV(ctx context.Context, adminID string, w io.Writer) error {
	answers, err := s.collect(ctx)
	if err != nil {
		return err
	}

	entry := adminEntry(adminID, models.ActionGuestsExported, "Household", "*", nil, map[string]any{
		"households": len(answers),
	})
	if err := s.audit.Log(ctx, entry); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(guestCSVHeader); err != nil {
		return err
	}
	for _, a := range answers {
		respondedAt := ""
		if a.latest != nil {
			respondedAt = a.latest.SubmittedAt.UTC().Format(time.RFC3339)
		}
		for _, g := range a.household.Guests {
			status, dietary := "pending", ""
			if r, ok := a.responses[g.ID]; ok {
				status = "not_attending"
				if r.Attending {
					status = "attending"
				}
				if r.DietaryRestrictions != nil {
					dietary = *r.DietaryRestrictions
				}
			}
			row := []string{
				a.household.DisplayName, g.FirstName, g.LastName,
				deref(g.Email), deref(g.Phone), fmt.Sprintf("%t", g.IsPrimary),
				status, dietary, respondedAt,
			}
			for i := range row {
				row[i] = csvSafe(row[i])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	utils.LogAdminAction("guest list exported", adminID, "*")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// csvSafe neutralises cells a spreadsheet would evaluate as a formula
func csvSafe(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
