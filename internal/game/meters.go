package game

import "math"

const (
	MeterMin = 0
	MeterMax = 100
)

// Meters holds a user's four meter values, each in [MeterMin, MeterMax].
type Meters struct {
	Health            int `json:"health"`
	Happiness         int `json:"happiness"`
	SelfActualization int `json:"self_actualization"`
	SocialConnection  int `json:"social_connection"`
}

// Get returns the value for c; unknown categories read as 0.
func (m Meters) Get(c Category) int {
	switch c {
	case Health:
		return m.Health
	case Happiness:
		return m.Happiness
	case SelfActualization:
		return m.SelfActualization
	case SocialConnection:
		return m.SocialConnection
	}
	return 0
}

// Set stores v for c, clamped to the meter range.
func (m *Meters) Set(c Category, v int) {
	v = ClampMeter(v)
	switch c {
	case Health:
		m.Health = v
	case Happiness:
		m.Happiness = v
	case SelfActualization:
		m.SelfActualization = v
	case SocialConnection:
		m.SocialConnection = v
	}
}

// Values returns the meters in Categories order.
func (m Meters) Values() []int {
	return []int{m.Health, m.Happiness, m.SelfActualization, m.SocialConnection}
}

// Total is the sum of all four meters.
func (m Meters) Total() int {
	return m.Health + m.Happiness + m.SelfActualization + m.SocialConnection
}

// StdDev is the population standard deviation of the four meters.
func (m Meters) StdDev() float64 {
	values := m.Values()
	var mean float64
	for _, v := range values {
		mean += float64(v)
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

// ClampMeter bounds v to [MeterMin, MeterMax].
func ClampMeter(v int) int {
	return min(max(v, MeterMin), MeterMax)
}
