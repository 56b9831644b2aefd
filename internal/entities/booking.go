package entities

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         string        `json:"id"`
	SpotID     string        `json:"spotId,omitempty"`
	SpotName   string        `json:"spotName"`
	Date       string        `json:"date"`
	Duration   string        `json:"duration"`
	Hours      int           `json:"hours"`
	TotalPrice float64       `json:"price"`
	Status     BookingStatus `json:"status"`
}

// BookingRequest is what a renter submits to reserve a spot.
type BookingRequest struct {
	SpotID     string  `json:"spotId"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	TotalPrice float64 `json:"totalPrice"`
}

type BookingResult struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId,omitempty"`
	Error     string `json:"error,omitempty"`
}
