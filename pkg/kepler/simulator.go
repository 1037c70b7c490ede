package kepler

import "github.com/go-gl/mathgl/mgl64"

// State is a snapshot of the orbiting body
type State struct {
	Position mgl64.Vec2 // km
	Velocity mgl64.Vec2 // km/s
	Time     float64    // seconds since reset
}

// Simulator integrates a satellite around a point mass with gravitational parameter Mu
type Simulator struct {
	Mu    float64
	State State
}

// NewSimulator creates a simulator at t=0
func NewSimulator(mu float64, position, velocity mgl64.Vec2) *Simulator {
	return &Simulator{Mu: mu, State: State{Position: position, Velocity: velocity}}
}

// NewSimulatorFromSettings creates a simulator at the settings' initial state
func NewSimulatorFromSettings(s Settings) *Simulator {
	pos, vel := s.InitialState()
	return NewSimulator(s.Mu, pos, vel)
}

// Reset replaces the parameter and state and rewinds time to zero
func (s *Simulator) Reset(mu float64, position, velocity mgl64.Vec2) {
	s.Mu = mu
	s.State = State{Position: position, Velocity: velocity}
}

// Acceleration is the gravitational acceleration at the current position.
// It is zero at the origin.
func (s *Simulator) Acceleration() mgl64.Vec2 {
	r := s.State.Position
	distance := r.Len()
	if distance == 0 {
		return mgl64.Vec2{}
	}
	return r.Mul(-s.Mu / (distance * distance * distance))
}

// Step advances the simulation by dt seconds with a kick-drift-kick leapfrog.
// Non-positive dt is ignored.
func (s *Simulator) Step(dt float64) {
	if dt <= 0 {
		return
	}

	s.State.Velocity = s.State.Velocity.Add(s.Acceleration().Mul(dt / 2))
	s.State.Position = s.State.Position.Add(s.State.Velocity.Mul(dt))
	s.State.Velocity = s.State.Velocity.Add(s.Acceleration().Mul(dt / 2))
	s.State.Time += dt
}

// CurrentState returns a copy of the state
func (s *Simulator) CurrentState() State {
	return s.State
}
