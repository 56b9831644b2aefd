package mapview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"parknest/internal/entities"
)

const (
	VariantTile = "tile"

	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "© OpenStreetMap contributors"

	TileSize = 256
	MinZoom  = 0
	MaxZoom  = 19

	// Web Mercator cannot show the poles.
	maxLatitude = 85.05112878

	// half the width of the Web Mercator plane, in meters
	mercatorHalf = orb.EarthRadius * math.Pi
)

var subdomains = []string{"a", "b", "c"}

type Tile struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Z   int    `json:"z"`
	URL string `json:"url"`
}

// Bounds is the geographic extent of a tile view.
type Bounds struct {
	SouthWest entities.Coordinates `json:"southWest"`
	NorthEast entities.Coordinates `json:"northEast"`
}

// TileRenderer draws OpenStreetMap raster tiles and projects clicks through
// Web Mercator.
type TileRenderer struct {
	URLTemplate string
	Attribution string
}

func NewTileRenderer(urlTemplate string) *TileRenderer {
	if urlTemplate == "" {
		urlTemplate = DefaultTileURL
	}
	return &TileRenderer{URLTemplate: urlTemplate, Attribution: DefaultAttribution}
}

func (r *TileRenderer) Variant() string { return VariantTile }

func (r *TileRenderer) Render(vp Viewport) View {
	px := pixelBound(vp)
	return View{
		Variant:     VariantTile,
		Center:      vp.Center,
		Zoom:        vp.Zoom,
		Width:       vp.Width,
		Height:      vp.Height,
		TileURL:     r.URLTemplate,
		Attribution: r.Attribution,
		Bounds: &Bounds{
			SouthWest: Unproject(px.Min.X(), px.Max.Y(), vp.Zoom),
			NorthEast: Unproject(px.Max.X(), px.Min.Y(), vp.Zoom),
		},
		Tiles:   r.visibleTiles(px, vp.Zoom),
		Markers: []Marker{{Position: vp.Center, Popup: "Search location"}},
	}
}

// Resolve returns a client-resolved coordinate untouched. Otherwise the
// pixel offset is projected relative to the viewport center.
func (r *TileRenderer) Resolve(vp Viewport, c Click) (entities.Coordinates, error) {
	if c.LatLng != nil {
		return *c.LatLng, nil
	}
	if c.X < 0 || c.Y < 0 || c.X > float64(vp.Width) || c.Y > float64(vp.Height) {
		return entities.Coordinates{}, ErrOutsideView
	}
	cx, cy := Project(vp.Center, vp.Zoom)
	px := cx + c.X - float64(vp.Width)/2
	py := cy + c.Y - float64(vp.Height)/2
	return Unproject(px, py, vp.Zoom), nil
}

// pixelBound is the viewport in world pixels at its zoom. Pixel y grows
// southward, so Min.Y is the north edge.
func pixelBound(vp Viewport) orb.Bound {
	cx, cy := Project(vp.Center, vp.Zoom)
	w, h := float64(vp.Width)/2, float64(vp.Height)/2
	return orb.Bound{
		Min: orb.Point{cx - w, cy - h},
		Max: orb.Point{cx + w, cy + h},
	}
}

func (r *TileRenderer) visibleTiles(px orb.Bound, zoom int) []Tile {
	n := 1 << zoom

	minX := int(math.Floor(px.Min.X() / TileSize))
	maxX := int(math.Floor((px.Max.X() - 1) / TileSize))
	minY := int(math.Floor(px.Min.Y() / TileSize))
	maxY := int(math.Floor((px.Max.Y() - 1) / TileSize))

	var tiles []Tile
	for y := minY; y <= maxY; y++ {
		if y < 0 || y >= n {
			continue
		}
		for x := minX; x <= maxX; x++ {
			wx := ((x % n) + n) % n
			tiles = append(tiles, Tile{X: wx, Y: y, Z: zoom, URL: r.tileURL(wx, y, zoom)})
		}
	}
	return tiles
}

func (r *TileRenderer) tileURL(x, y, z int) string {
	return strings.NewReplacer(
		"{s}", subdomains[(x+y)%len(subdomains)],
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(r.URLTemplate)
}

// Project converts a coordinate to world pixel coordinates at zoom.
func Project(c entities.Coordinates, zoom int) (x, y float64) {
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, c.Lat))
	m := project.WGS84.ToMercator(orb.Point{c.Lng, lat})
	world := worldSize(zoom)
	return (m.X()/mercatorHalf + 1) / 2 * world, (1 - m.Y()/mercatorHalf) / 2 * world
}

// Unproject is the inverse of Project. Longitudes are wrapped into [-180, 180).
func Unproject(x, y float64, zoom int) entities.Coordinates {
	world := worldSize(zoom)
	p := project.Mercator.ToWGS84(orb.Point{
		(2*x/world - 1) * mercatorHalf,
		(1 - 2*y/world) * mercatorHalf,
	})
	lng := math.Mod(p.Lon()+180, 360)
	if lng < 0 {
		lng += 360
	}
	return entities.Coordinates{Lat: p.Lat(), Lng: lng - 180}
}

func worldSize(zoom int) float64 {
	return float64(TileSize) * math.Exp2(float64(zoom))
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}
