package models

type DietaryCount struct {
	Restriction string `json:"restriction"`
	Count       int    `json:"count"`
}

// DashboardStats summarises the current answers, household by household,
// using only the latest submission of each.
type DashboardStats struct {
	TotalHouseholds        int            `json:"totalHouseholds"`
	TotalGuests            int            `json:"totalGuests"`
	RespondedHouseholds    int            `json:"respondedHouseholds"`
	NotRespondedHouseholds int            `json:"notRespondedHouseholds"`
	AttendingGuests        int            `json:"attendingGuests"`
	NotAttendingGuests     int            `json:"notAttendingGuests"`
	PendingGuests          int            `json:"pendingGuests"`
	SongRequests           int            `json:"songRequests"`
	DietarySummary         []DietaryCount `json:"dietarySummary"`
}
