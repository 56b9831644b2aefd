package mapview

import (
	"fmt"

	"parknest/internal/entities"
)

const VariantStatic = "static"

// Pin is a spot drawn at a fixed screen position. Left and Top are
// percentages of the view size.
type Pin struct {
	Index    int                  `json:"index"`
	SpotID   string               `json:"spotId"`
	Label    string               `json:"label"`
	Price    float64              `json:"price"`
	Position entities.Coordinates `json:"position"`
	Left     float64              `json:"left"`
	Top      float64              `json:"top"`
}

// StaticRenderer draws an illustrative map with one pin per spot. Pin
// positions depend on the index alone; no projection is involved.
type StaticRenderer struct {
	spots []entities.ParkingSpot
}

func NewStaticRenderer(spots []entities.ParkingSpot) *StaticRenderer {
	return &StaticRenderer{spots: spots}
}

func (r *StaticRenderer) Variant() string { return VariantStatic }

func (r *StaticRenderer) Render(vp Viewport) View {
	pins := make([]Pin, 0, len(r.spots))
	for i, s := range r.spots {
		left, top := PinOffset(i)
		pins = append(pins, Pin{
			Index:    i,
			SpotID:   s.ID,
			Label:    fmt.Sprintf("$%g/hr", s.Price),
			Price:    s.Price,
			Position: s.Coordinates,
			Left:     left,
			Top:      top,
		})
	}
	return View{
		Variant: VariantStatic,
		Center:  vp.Center,
		Zoom:    vp.Zoom,
		Width:   vp.Width,
		Height:  vp.Height,
		Pins:    pins,
	}
}

func (r *StaticRenderer) Resolve(_ Viewport, c Click) (entities.Coordinates, error) {
	if c.Pin == nil || *c.Pin < 0 || *c.Pin >= len(r.spots) {
		return entities.Coordinates{}, ErrOutsideView
	}
	return r.spots[*c.Pin].Coordinates, nil
}

// PinOffset is the screen position of the pin at index, in percent.
func PinOffset(index int) (left, top float64) {
	return 25 + float64(index)*15, 30 + float64(index)*10
}
