// Package seed fills the hosted customization_options table from a DiceBear
// avataaars schema dump.
package seed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// property is the part of a JSON schema property the seeder reads. Values
// come from enum, items.enum or default, in that order.
type property struct {
	Enum    []any           `json:"enum"`
	Default json.RawMessage `json:"default"`
	Items   struct {
		Enum []any `json:"enum"`
	} `json:"items"`
}

func (p property) values() []string {
	src := p.Enum
	if len(src) == 0 {
		src = p.Items.Enum
	}
	if len(src) == 0 && len(p.Default) > 0 {
		var list []any
		if err := json.Unmarshal(p.Default, &list); err != nil {
			var one any
			if json.Unmarshal(p.Default, &one) == nil {
				list = []any{one}
			}
		}
		src = list
	}

	var out []string
	for _, v := range src {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseOptionsDump reads {category: schema} and returns one option per
// (category, value) of the known customization categories, sorted. Prices
// are left at zero.
func ParseOptionsDump(r io.Reader) ([]avatar.Option, error) {
	var dump map[string]property
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("%w: options dump: %w", common.ErrInvalidInput, err)
	}

	var out []avatar.Option
	for _, c := range avatar.Categories {
		p, ok := dump[string(c)]
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		for _, v := range p.values() {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, avatar.Option{Category: c, Value: v})
		}
	}

	avatar.SortOptions(out)
	return out, nil
}

// WithPrice sets every option's price to price.
func WithPrice(options []avatar.Option, price int) []avatar.Option {
	out := make([]avatar.Option, len(options))
	for i, o := range options {
		o.Price = price
		out[i] = o
	}
	return out
}
