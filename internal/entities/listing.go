package entities

import "time"

type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	Price        string    `json:"price"`
	SpaceType    string    `json:"spaceType"`
	Availability string    `json:"availability"`
	EVCharging   bool      `json:"evCharging"`
	Covered      bool      `json:"covered"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListingForm holds the list-space form fields. Price stays a string, as typed.
type ListingForm struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	Price        string `json:"price"`
	SpaceType    string `json:"spaceType"`
	Availability string `json:"availability"`
	EVCharging   bool   `json:"evCharging"`
	Covered      bool   `json:"covered"`
	Instructions string `json:"instructions"`
}

type LoginForm struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	UserType UserType `json:"userType"`
}

type SignupForm struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	UserType        UserType `json:"userType"`
}
