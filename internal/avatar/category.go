// Package avatar models the buddy avatar: customization categories and
// options, the working/saved editor state with its reducer, the
// purchase/equip diff between the two, and the DiceBear renderer the avatar
// images come from.
package avatar

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// Category is a customizable avatar part. Values match the backend enum and
// the DiceBear avataaars option names.
type Category string

const (
	Accessories      Category = "accessories"
	AccessoriesColor Category = "accessoriesColor"
	BackgroundColor  Category = "backgroundColor"
	BackgroundType   Category = "backgroundType"
	ClothesColor     Category = "clothesColor"
	Clothing         Category = "clothing"
	ClothingGraphic  Category = "clothingGraphic"
	Eyebrows         Category = "eyebrows"
	Eyes             Category = "eyes"
	FacialHair       Category = "facialHair"
	FacialHairColor  Category = "facialHairColor"
	HairColor        Category = "hairColor"
	HatColor         Category = "hatColor"
	Mouth            Category = "mouth"
	Nose             Category = "nose"
	SkinColor        Category = "skinColor"
	Top              Category = "top"
)

// Categories is every category the backend knows, in menu order.
var Categories = []Category{
	Accessories, AccessoriesColor, BackgroundColor, BackgroundType,
	ClothesColor, Clothing, ClothingGraphic, Eyebrows, Eyes, FacialHair,
	FacialHairColor, HairColor, HatColor, Mouth, Nose, SkinColor, Top,
}

var labels = map[Category]string{
	Accessories:      "accessories",
	AccessoriesColor: "accessories color",
	BackgroundColor:  "background color",
	BackgroundType:   "background type",
	ClothesColor:     "clothes color",
	Clothing:         "clothing",
	ClothingGraphic:  "clothing graphic",
	Eyebrows:         "eyebrows",
	Eyes:             "eyes",
	FacialHair:       "facial hair",
	FacialHairColor:  "facial hair color",
	HairColor:        "hair color",
	HatColor:         "hat color",
	Mouth:            "mouth",
	Nose:             "nose",
	SkinColor:        "skin color",
	Top:              "top",
}

// Label is the human readable menu label.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// IsColor reports whether option values are hex colors ("e5e7eb").
func (c Category) IsColor() bool {
	return strings.HasSuffix(string(c), "Color")
}

// ParseCategory accepts the enum value ("hairColor") or the label
// ("hair color"), case-insensitively.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if strings.ToLower(string(c)) == key || labels[c] == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown avatar category %q", common.ErrInvalidInput, s)
}
