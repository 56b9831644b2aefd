package entities

type DashboardStats struct {
	TotalBookings  int      `json:"totalBookings"`
	ActiveListings *int     `json:"activeListings,omitempty"`
	TotalEarnings  *float64 `json:"totalEarnings,omitempty"`
	TotalSpent     *float64 `json:"totalSpent,omitempty"`
	HoursParked    *int     `json:"hoursParked,omitempty"`
}

type Dashboard struct {
	UserName string         `json:"userName"`
	UserType UserType       `json:"userType"`
	Badge    string         `json:"badge"`
	Listings []Listing      `json:"listings"`
	Bookings []Booking      `json:"bookings"`
	Stats    DashboardStats `json:"stats"`
}
