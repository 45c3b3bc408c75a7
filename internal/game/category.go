// Package game implements the life-balance economy: the four meter
// categories, meter arithmetic, and the coin/meter effect of completing or
// un-completing a task.
package game

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// Category is one of the four life-balance areas a task belongs to.
// Values match the backend enum.
type Category string

const (
	Health            Category = "health"
	Happiness         Category = "happiness"
	SelfActualization Category = "self_actualization"
	SocialConnection  Category = "social_connection"
)

// Categories lists all categories in display order.
var Categories = []Category{Health, Happiness, SelfActualization, SocialConnection}

// DisplayName is the label shown to users.
func (c Category) DisplayName() string {
	switch c {
	case Health:
		return "Health"
	case Happiness:
		return "Happiness"
	case SelfActualization:
		return "Self-Actualization"
	case SocialConnection:
		return "Connection"
	default:
		return string(c)
	}
}

func (c Category) Valid() bool {
	switch c {
	case Health, Happiness, SelfActualization, SocialConnection:
		return true
	}
	return false
}

// ParseCategory accepts the enum value or a display name, case-insensitively
// ("Self Actualization", "self-actualization", "social", "connection").
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	switch key {
	case "health":
		return Health, nil
	case "happiness":
		return Happiness, nil
	case "self_actualization", "selfactualization":
		return SelfActualization, nil
	case "social_connection", "connection", "social":
		return SocialConnection, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", common.ErrInvalidInput, s)
}
