package avatar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_URL(t *testing.T) {
	r := NewRenderer("https://example.test/9.x/avataaars/", nil)

	raw := r.URL(Config{HairColor: "#a55728", Top: "bob", Eyes: "happy", Category("bogus"): "x"})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/9.x/avataaars/svg", u.Path)

	q := u.Query()
	assert.Equal(t, "a55728", q.Get("hairColor"))
	assert.Equal(t, "bob", q.Get("top"))
	assert.Equal(t, "happy", q.Get("eyes"))
	assert.Equal(t, "100", q.Get("topProbability"))
	assert.Equal(t, "0", q.Get("accessoriesProbability"))
	assert.Equal(t, "0", q.Get("facialHairProbability"))
	assert.False(t, q.Has("bogus"))
}

func TestRenderer_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		assert.Equal(t, "Mason", r.URL.Query().Get("seed"))
		assert.Equal(t, "100", r.URL.Query().Get("accessoriesProbability"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"svg":"<svg/>","extra":{"accessories":"kurt","hairColor":"a55728","skinColor":"#d08b5b","accessoriesProbability":100,"primaryBackgroundColor":"ef4444"}}`))
	}))
	defer srv.Close()

	cfg, err := NewRenderer(srv.URL, srv.Client()).Generate(context.Background(), "Mason")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Accessories: "kurt",
		HairColor:   "#a55728",
		SkinColor:   "#d08b5b",
	}, cfg)
}

func TestRenderer_GenerateUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRenderer(srv.URL, srv.Client()).Generate(context.Background(), "Leo")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSeeds_Wrap(t *testing.T) {
	last := len(Seeds) - 1

	assert.Len(t, Seeds, 15)
	assert.Equal(t, 1, NextSeed(0))
	assert.Equal(t, 0, NextSeed(last))
	assert.Equal(t, last, PrevSeed(0))
	assert.Equal(t, 3, PrevSeed(4))
	assert.Equal(t, 0, NextSeed(-1))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Hair Color")
	require.NoError(t, err)
	assert.Equal(t, HairColor, c)

	c, err = ParseCategory("facialHairColor")
	require.NoError(t, err)
	assert.Equal(t, FacialHairColor, c)
	assert.True(t, c.IsColor())
	assert.False(t, Top.IsColor())

	_, err = ParseCategory("wings")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
