package services

import "github.com/LovationAdmin/wedding-api/models"

const dependencyCorrectionReason = "Dependent guest cannot attend without required guest"

// EnforceDependencyRules forces a guest to not attending when the guest they
// depend on is not attending in the same response set. The rule is applied
// until nothing changes, so chains of any depth resolve in one call. A guest
// is corrected at most once, which bounds the loop even for cyclic
// dependencies.
//
// Responses for guests without a dependency, or whose required guest has no
// response in the set, are left untouched. The input slice is not modified.
func EnforceDependencyRules(guests []models.Guest, responses []models.GuestResponse) ([]models.GuestResponse, []models.Correction) {
	corrected := make([]models.GuestResponse, len(responses))
	copy(corrected, responses)

	requires := make(map[string]string, len(guests))
	for _, g := range guests {
		if g.AttendanceRequiresGuestID != nil && *g.AttendanceRequiresGuestID != "" {
			requires[g.ID] = *g.AttendanceRequiresGuestID
		}
	}

	index := make(map[string]int, len(corrected))
	for i, r := range corrected {
		index[r.GuestID] = i
	}

	var corrections []models.Correction
	for changed := true; changed; {
		changed = false
		for i := range corrected {
			r := &corrected[i]
			if !r.Attending {
				continue
			}
			requiredID, ok := requires[r.GuestID]
			if !ok {
				continue
			}
			j, ok := index[requiredID]
			if !ok || corrected[j].Attending {
				continue
			}

			r.Attending = false
			corrections = append(corrections, models.Correction{
				GuestID:        r.GuestID,
				Reason:         dependencyCorrectionReason,
				CorrectedValue: false,
			})
			changed = true
		}
	}

	return corrected, corrections
}
