package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeters_SetClamps(t *testing.T) {
	var m Meters
	m.Set(Health, 140)
	m.Set(Happiness, -3)
	m.Set(SelfActualization, 55)

	assert.Equal(t, 100, m.Get(Health))
	assert.Equal(t, 0, m.Get(Happiness))
	assert.Equal(t, 55, m.Get(SelfActualization))
	assert.Equal(t, 155, m.Total())
}

func TestMeters_StdDev(t *testing.T) {
	m := Meters{Health: 2, Happiness: 4, SelfActualization: 4, SocialConnection: 6}
	// mean 4, squared deviations 4,0,0,4
	assert.InDelta(t, 1.4142135, m.StdDev(), 1e-6)
	assert.Zero(t, balanced(30).StdDev())
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"health":             Health,
		"Happiness":          Happiness,
		"Self-Actualization": SelfActualization,
		"self actualization": SelfActualization,
		"social_connection":  SocialConnection,
		"Connection":         SocialConnection,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCategory("energy")
	require.Error(t, err)
}

func TestCategory_DisplayName(t *testing.T) {
	assert.Equal(t, "Self-Actualization", SelfActualization.DisplayName())
	assert.Equal(t, "Connection", SocialConnection.DisplayName())
}
