package domain

// Stats summarises occupancy and membership for the admin dashboard.
type Stats struct {
	TotalApartments       int     `json:"total_apartments"`
	AcceptedAgreements    int     `json:"accepted_agreements"`
	AvailablePercentage   float64 `json:"available_percentage"`
	UnavailablePercentage float64 `json:"unavailable_percentage"`
	Users                 int     `json:"users"`
	Members               int     `json:"members"`
}
