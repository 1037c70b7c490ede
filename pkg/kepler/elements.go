package kepler

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SpecificEnergy returns v²/2 - mu/r, or +Inf at the origin
func SpecificEnergy(mu float64, position, velocity mgl64.Vec2) float64 {
	distance := position.Len()
	if distance == 0 {
		return math.Inf(1)
	}
	speed := velocity.Len()
	return 0.5*speed*speed - mu/distance
}

// AngularMomentumZ returns the out-of-plane component of r × v
func AngularMomentumZ(position, velocity mgl64.Vec2) float64 {
	return position.X()*velocity.Y() - position.Y()*velocity.X()
}

// EccentricityVector points at periapsis with length e
func EccentricityVector(mu float64, position, velocity mgl64.Vec2) mgl64.Vec2 {
	distance := position.Len()
	if distance == 0 {
		return mgl64.Vec2{}
	}

	h := AngularMomentumZ(position, velocity)
	return mgl64.Vec2{
		velocity.Y()*h/mu - position.X()/distance,
		-velocity.X()*h/mu - position.Y()/distance,
	}
}

// SemiMajorAxis is defined for bound orbits only
func SemiMajorAxis(mu float64, position, velocity mgl64.Vec2) (float64, bool) {
	energy := SpecificEnergy(mu, position, velocity)
	if energy >= 0 {
		return 0, false
	}
	return -mu / (2 * energy), true
}

// OrbitalPeriod is defined for bound orbits only
func OrbitalPeriod(mu float64, position, velocity mgl64.Vec2) (float64, bool) {
	a, ok := SemiMajorAxis(mu, position, velocity)
	if !ok {
		return 0, false
	}
	return 2 * math.Pi * math.Sqrt(a*a*a/mu), true
}

// Periapsis returns the closest approach distance of a bound orbit
func Periapsis(mu float64, position, velocity mgl64.Vec2) (float64, bool) {
	a, ok := SemiMajorAxis(mu, position, velocity)
	if !ok {
		return 0, false
	}
	e := EccentricityVector(mu, position, velocity).Len()
	return a * (1 - e), true
}

// Apoapsis returns the farthest distance of a closed orbit
func Apoapsis(mu float64, position, velocity mgl64.Vec2) (float64, bool) {
	a, ok := SemiMajorAxis(mu, position, velocity)
	if !ok {
		return 0, false
	}
	e := EccentricityVector(mu, position, velocity).Len()
	if e >= 1 {
		return 0, false
	}
	return a * (1 + e), true
}

// FormatSeconds renders a duration like "1d 02h 03m 04s". Leading zero days
// and hours are omitted, negative values clamp to zero, and infinite or NaN
// values render as "∞".
func FormatSeconds(seconds float64) string {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return "∞"
	}
	if seconds < 0 {
		seconds = 0
	}

	total := int64(seconds)
	sec := total % 60
	minutes := total / 60 % 60
	hours := total / 3600 % 24
	days := total / 86400

	var parts []string
	if days != 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days != 0 || hours != 0 {
		parts = append(parts, fmt.Sprintf("%02dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%02dm", minutes), fmt.Sprintf("%02ds", sec))
	return strings.Join(parts, " ")
}

// Unavailable is shown in a summary for elements an unbound orbit does not have
const Unavailable = "—"

// StateSummary returns human-readable lines describing the orbit
func StateSummary(mu float64, position, velocity mgl64.Vec2) []string {
	p := message.NewPrinter(language.English)

	lines := []string{
		p.Sprintf("Distance: %.0f km", position.Len()),
		p.Sprintf("Speed: %.2f km/s", velocity.Len()),
		p.Sprintf("Specific energy: %.2f km^2/s^2", SpecificEnergy(mu, position, velocity)),
		fmt.Sprintf("Eccentricity: %.4f", EccentricityVector(mu, position, velocity).Len()),
	}

	if period, ok := OrbitalPeriod(mu, position, velocity); ok {
		lines = append(lines, "Period: "+FormatSeconds(period))
	} else {
		lines = append(lines, "Period: "+Unavailable)
	}
	if per, ok := Periapsis(mu, position, velocity); ok {
		lines = append(lines, p.Sprintf("Periapsis: %.0f km", per))
	} else {
		lines = append(lines, "Periapsis: "+Unavailable)
	}
	if apo, ok := Apoapsis(mu, position, velocity); ok {
		lines = append(lines, p.Sprintf("Apoapsis: %.0f km", apo))
	} else {
		lines = append(lines, "Apoapsis: "+Unavailable)
	}
	return lines
}
