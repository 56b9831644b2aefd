package entities

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type SpotType string

const (
	SpotCovered   SpotType = "covered"
	SpotUncovered SpotType = "uncovered"
)

type ParkingSpot struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Price       float64     `json:"price"`
	Coordinates Coordinates `json:"coordinates"`
	Available   bool        `json:"available"`
	Type        SpotType    `json:"type"`
	EVCharging  bool        `json:"evCharging"`
	OwnerID     string      `json:"ownerId"`
}

type SpotResult struct {
	Success bool   `json:"success"`
	SpotID  string `json:"spotId,omitempty"`
	Error   string `json:"error,omitempty"`
}
