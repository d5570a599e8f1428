package simulator

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Sensor is a source of weather readings.
type Sensor interface {
	Temperature() float64
	Pressure() float64
}

// RandomWalk drifts around a starting temperature (°C) and pressure (hPa).
type RandomWalk struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	temperature float64
	pressure    float64
}

func NewRandomWalk(seed uint64) *RandomWalk {
	return &RandomWalk{
		rnd:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		temperature: 21.0,
		pressure:    1013.25,
	}
}

func (s *RandomWalk) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature = clamp(s.temperature+s.step(0.1), -40, 85)
	return round2(s.temperature)
}

func (s *RandomWalk) Pressure() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressure = clamp(s.pressure+s.step(0.5), 300, 1100)
	return round2(s.pressure)
}

// step is uniform in [-limit, limit).
func (s *RandomWalk) step(limit float64) float64 {
	return (s.rnd.Float64()*2 - 1) * limit
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
