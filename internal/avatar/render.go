package avatar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

const DefaultAPIURL = "https://api.dicebear.com/9.x/avataaars"

// Fixed colors of freshly generated characters.
const (
	creationBackground = "ef4444"
	creationSkin       = "d08b5b"
)

// Renderer talks to the DiceBear avataaars HTTP API. The drawing itself is
// entirely DiceBear's; the client only builds option sets.
type Renderer struct {
	baseURL string
	http    *http.Client
}

func NewRenderer(baseURL string, hc *http.Client) *Renderer {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// URL is the SVG address of the avatar wearing cfg.
func (r *Renderer) URL(cfg Config) string {
	q := url.Values{}
	for c, v := range cfg {
		if !c.Valid() || v == "" {
			continue
		}
		if c.IsColor() {
			v = strings.TrimPrefix(v, "#")
		}
		q.Set(string(c), v)
	}
	q.Set("accessoriesProbability", probability(cfg[Accessories]))
	q.Set("facialHairProbability", probability(cfg[FacialHair]))
	q.Set("topProbability", probability(cfg[Top]))

	return r.baseURL + "/svg?" + q.Encode()
}

func probability(v string) string {
	if v == "" {
		return "0"
	}
	return "100"
}

type generated struct {
	SVG   string         `json:"svg"`
	Extra map[string]any `json:"extra"`
}

// Generate asks DiceBear for the avatar of a seed and returns the options it
// picked. Color values come back '#'-prefixed; OptionKey matches them
// against the bare hex values the catalog stores.
func (r *Renderer) Generate(ctx context.Context, seed string) (Config, error) {
	q := url.Values{}
	q.Set("seed", seed)
	q.Set("backgroundColor", creationBackground)
	q.Set("skinColor", creationSkin)
	q.Set("accessoriesProbability", "100")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build avatar request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar api: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: avatar api returned %d: %s", common.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var g generated
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	cfg := make(Config)
	for k, v := range g.Extra {
		c := Category(k)
		s, ok := v.(string)
		if !c.Valid() || !ok || s == "" {
			continue
		}
		if c.IsColor() && !strings.HasPrefix(s, "#") {
			s = "#" + s
		}
		cfg[c] = s
	}
	return cfg, nil
}
