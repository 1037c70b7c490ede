package surface

import (
	"math"
	"math/rand/v2"
)

// stream is the pseudo-random source for a single generation. Each call to
// Generate owns its stream so concurrent regenerations never share state.
type stream struct {
	rng *rand.Rand
}

// newStream seeds a PCG generator from seed. The second PCG word is a fixed
// odd constant so seed 0 still yields a well-mixed sequence.
func newStream(seed uint64) *stream {
	return &stream{rng: rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))}
}

// uniform draws from [lo, hi)
func (s *stream) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// intRange draws an integer from [lo, hi)
func (s *stream) intRange(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo)
}

const (
	fbmOctaves = 4

	craterMinCount  = 12
	craterMaxCount  = 24
	craterMinRadius = 0.05
	craterMaxRadius = 0.18
	craterMinDepth  = -0.5
	craterMaxDepth  = -0.1

	fractalWeight = 0.7
	craterWeight  = 0.3
)

// fbmLayer sums sin·cos octaves with random phases. Phases are drawn
// lat-then-lon per octave before any crater draws.
func fbmLayer(lats, lons []float64, rs *stream) []float64 {
	total := make([]float64, len(lats)*len(lons))
	freq := 1.0
	amplitude := 1.0
	norm := 0.0

	for octave := 0; octave < fbmOctaves; octave++ {
		phaseLat := rs.uniform(0, 2*math.Pi)
		phaseLon := rs.uniform(0, 2*math.Pi)

		// cos(lon) terms are shared by every row
		cosLon := make([]float64, len(lons))
		for j, lon := range lons {
			cosLon[j] = math.Cos(lon*freq + phaseLon)
		}
		for i, lat := range lats {
			sinLat := math.Sin(lat*freq + phaseLat)
			row := total[i*len(lons) : (i+1)*len(lons)]
			for j := range row {
				row[j] += amplitude * sinLat * cosLon[j]
			}
		}

		norm += amplitude
		freq *= 2.0
		amplitude *= 0.5
	}

	// 1 + 0.5 + 0.25 + 0.125
	for i := range total {
		total[i] /= norm
	}
	return total
}

// crater is a gaussian depression centred on the sphere
type crater struct {
	lat, lon float64
	radius   float64
	depth    float64
}

// craterLayer carves gaussian craters and keeps the deepest value per cell
func craterLayer(lats, lons []float64, rs *stream) []float64 {
	field := make([]float64, len(lats)*len(lons))

	count := rs.intRange(craterMinCount, craterMaxCount)
	for n := 0; n < count; n++ {
		c := crater{
			lat:    rs.uniform(-math.Pi/2, math.Pi/2),
			lon:    rs.uniform(0, 2*math.Pi),
			radius: rs.uniform(craterMinRadius, craterMaxRadius),
			depth:  rs.uniform(craterMinDepth, craterMaxDepth),
		}
		twoR2 := 2 * c.radius * c.radius

		for i, lat := range lats {
			row := field[i*len(lons) : (i+1)*len(lons)]
			for j, lon := range lons {
				d := angularDistance(lat, lon, c.lat, c.lon)
				bump := c.depth * math.Exp(-(d*d)/twoR2)
				row[j] = math.Min(row[j], bump)
			}
		}
	}
	return field
}

// angularDistance is the haversine great-circle angle between two points
func angularDistance(lat, lon, centerLat, centerLon float64) float64 {
	dLat := lat - centerLat
	dLon := lon - centerLon
	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	a := sLat*sLat + math.Cos(lat)*math.Cos(centerLat)*sLon*sLon
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(math.Max(0, 1-a+1e-6)))
}
