package avatar

import (
	"sort"
	"strings"
)

// Option is a purchasable customization: one value of one category.
// Owned is per-user and filled from ownership data.
type Option struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
	Value    string   `json:"option_value"`
	Price    int      `json:"price"`
	Owned    bool     `json:"isOwned"`
}

// Config maps each category to its chosen option value.
type Config map[Category]string

// ConfigOf builds the render config of a set of options.
func ConfigOf(options []Option) Config {
	cfg := make(Config, len(options))
	for _, o := range options {
		cfg[o.Category] = o.Value
	}
	return cfg
}

// OptionKey identifies an option by (category, value), the way rendered
// avatar configs refer to options. Color values match with or without a
// leading '#'.
func OptionKey(c Category, value string) string {
	if c.IsColor() {
		value = strings.ToLower(strings.TrimPrefix(value, "#"))
	}
	return string(c) + "_" + value
}

// SortOptions orders options by category menu position, then value.
// Unknown categories go last.
func SortOptions(options []Option) {
	pos := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		pos[c] = i
	}
	at := func(c Category) int {
		if p, ok := pos[c]; ok {
			return p
		}
		return len(Categories)
	}
	sort.SliceStable(options, func(i, j int) bool {
		pi, pj := at(options[i].Category), at(options[j].Category)
		if pi != pj {
			return pi < pj
		}
		return options[i].Value < options[j].Value
	})
}
