package surface

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// Config describes the sphere the height field is wrapped around
type Config struct {
	BaseRadius  float64 // Radius of the zero-height surface
	LatSteps    int     // Grid rows, pole to pole
	LonSteps    int     // Grid columns around the equator
	HeightScale float64 // Fraction of BaseRadius a height of ±1 displaces
}

// DefaultConfig returns the planet used by the visualiser
func DefaultConfig() Config {
	return Config{
		BaseRadius:  2.0,
		LatSteps:    180,
		LonSteps:    360,
		HeightScale: 0.25,
	}
}

// Field is an immutable height field over a sphere
type Field struct {
	cfg     Config
	seed    uint64
	heights []float64 // row-major [LatSteps][LonSteps], values in [-1, 1]
}

// Generate builds the height field for seed. The same seed and config always
// produce the same grid.
func Generate(cfg Config, seed uint64) *Field {
	lats, lons := axes(cfg)
	rs := newStream(seed)

	base := fbmLayer(lats, lons, rs)
	craters := craterLayer(lats, lons, rs)

	heights := make([]float64, len(base))
	for i := range heights {
		heights[i] = core.Clip(base[i]*fractalWeight+craters[i]*craterWeight, -1.0, 1.0)
	}

	return &Field{cfg: cfg, seed: seed, heights: heights}
}

// axes returns the latitude and longitude sample positions of the grid
func axes(cfg Config) (lats, lons []float64) {
	lats = make([]float64, cfg.LatSteps)
	if cfg.LatSteps == 1 {
		lats[0] = -math.Pi / 2
	} else {
		step := math.Pi / float64(cfg.LatSteps-1)
		for i := range lats {
			lats[i] = -math.Pi/2 + float64(i)*step
		}
	}

	lons = make([]float64, cfg.LonSteps)
	step := 2 * math.Pi / float64(cfg.LonSteps)
	for j := range lons {
		lons[j] = float64(j) * step
	}
	return lats, lons
}

// Config returns the geometry the field was generated with
func (f *Field) Config() Config {
	return f.cfg
}

// Seed returns the seed the field was generated from
func (f *Field) Seed() uint64 {
	return f.seed
}

// Height returns the grid value at (latIdx, lonIdx)
func (f *Field) Height(latIdx, lonIdx int) float64 {
	return f.heights[latIdx*f.cfg.LonSteps+lonIdx]
}

// HeightMap returns a copy of the grid as rows of longitude samples
func (f *Field) HeightMap() [][]float64 {
	rows := make([][]float64, f.cfg.LatSteps)
	for i := range rows {
		rows[i] = make([]float64, f.cfg.LonSteps)
		copy(rows[i], f.heights[i*f.cfg.LonSteps:(i+1)*f.cfg.LonSteps])
	}
	return rows
}

// PolarGrid returns the latitude and longitude of each row and column
func (f *Field) PolarGrid() (lats, lons []float64) {
	return axes(f.cfg)
}

// spherical converts a direction into colatitude θ ∈ [0, π] and longitude
// φ ∈ [0, 2π). A zero vector is treated as the +Z pole.
func spherical(direction core.Vec3) (theta, phi float64) {
	length := direction.Length()
	if length == 0 {
		return 0, 0
	}
	theta = math.Acos(core.Clip(direction.Z/length, -1.0, 1.0))
	phi = core.WrapAngle(math.Atan2(direction.Y, direction.X))
	return theta, phi
}

// RadiusAtDirection returns the surface radius along direction using the
// nearest grid cell (indices truncated, no interpolation)
func (f *Field) RadiusAtDirection(direction core.Vec3) float64 {
	theta, phi := spherical(direction)
	latIdx := int(theta / math.Pi * float64(f.cfg.LatSteps-1))
	lonIdx := int(phi/(2*math.Pi)*float64(f.cfg.LonSteps)) % f.cfg.LonSteps

	height := f.Height(latIdx, lonIdx)
	return f.cfg.BaseRadius * (1.0 + f.cfg.HeightScale*height)
}

// NormalAtDirection returns the bump-mapped unit normal along direction.
// The geometric normal is tilted by the bilinear height gradient of the four
// surrounding cells.
func (f *Field) NormalAtDirection(direction core.Vec3) core.Vec3 {
	theta, phi := spherical(direction)
	lat := theta / math.Pi * float64(f.cfg.LatSteps-1)
	lon := phi / (2 * math.Pi) * float64(f.cfg.LonSteps)

	lat0 := int(math.Floor(lat))
	lon0 := int(math.Floor(lon))
	u := lat - float64(lat0)
	v := lon - float64(lon0)
	lon0 %= f.cfg.LonSteps
	lat1 := min(lat0+1, f.cfg.LatSteps-1)
	lon1 := (lon0 + 1) % f.cfg.LonSteps

	h00 := f.Height(lat0, lon0)
	h10 := f.Height(lat1, lon0)
	h01 := f.Height(lat0, lon1)
	h11 := f.Height(lat1, lon1)
	dhDLat := (1-v)*(h10-h00) + v*(h11-h01)
	dhDLon := (1-u)*(h01-h00) + u*(h11-h10)

	normal := direction.Normalize()
	if direction.LengthSquared() == 0 {
		normal = core.NewVec3(0, 0, 1)
	}

	tangentLat := core.NewVec3(normal.X, normal.Y, 0)
	if tangentLat.Length() < 1e-5 {
		tangentLat = core.NewVec3(1, 0, 0)
	}
	tangentLat = tangentLat.Normalize()
	tangentLon := normal.Cross(tangentLat)

	normal = normal.Subtract(tangentLat.Multiply(dhDLat * f.cfg.HeightScale))
	normal = normal.Subtract(tangentLon.Multiply(dhDLon * f.cfg.HeightScale))
	return normal.Normalize()
}

// MinRadius and MaxRadius bound every value RadiusAtDirection can return
func (f *Field) MinRadius() float64 { return f.cfg.BaseRadius * (1 - f.cfg.HeightScale) }
func (f *Field) MaxRadius() float64 { return f.cfg.BaseRadius * (1 + f.cfg.HeightScale) }
