package simulation

import "time"

// SimulationBuilderOption is a functional option for configuring a simulation during creation.
type SimulationBuilderOption func(*simulation)

// WithActive sets whether the simulation starts active for rendering.
//
// Parameters:
//   - active: whether the simulation should be active
//
// Returns:
//   - SimulationBuilderOption: the functional option
func WithActive(active bool) SimulationBuilderOption {
	return func(s *simulation) {
		s.active = active
	}
}

// WithPaused sets whether the simulation starts with automatic stepping paused.
// A paused simulation still renders its current state and honors StepOnce.
//
// Parameters:
//   - paused: whether automatic stepping should start paused
//
// Returns:
//   - SimulationBuilderOption: the functional option
func WithPaused(paused bool) SimulationBuilderOption {
	return func(s *simulation) {
		s.paused = paused
	}
}

// WithStepRate sets the automatic stepping rate in generations per second.
// Values <= 0 are ignored and the default of 10 generations per second is kept.
//
// Parameters:
//   - gps: generations per second
//
// Returns:
//   - SimulationBuilderOption: the functional option
func WithStepRate(gps float64) SimulationBuilderOption {
	return func(s *simulation) {
		if gps <= 0 {
			return
		}
		s.stepInterval = time.Duration(float64(time.Second) / gps)
	}
}
