package panel

import (
	"strings"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
)

// Control ids carried by dashboard buttons and the sell form.
const (
	SellControlPrefix = "panel:sell:"
	SupportControlID  = "panel:support"
	InfoControlID     = "panel:info"
	SellFormPrefix    = "sell_form:"

	FieldName        = "item_name"
	FieldDescription = "description"
	FieldPrice       = "price"
)

// SellControlID returns the dashboard button id for a category.
func SellControlID(cat domain.Category) string { return SellControlPrefix + string(cat) }

// ParseSellControlID returns the category behind a sell button id.
func ParseSellControlID(id string) (domain.Category, bool) {
	return parseCategorySuffix(id, SellControlPrefix)
}

// SellFormID returns the id of the sell form for a category.
func SellFormID(cat domain.Category) string { return SellFormPrefix + string(cat) }

// ParseSellFormID returns the category a submitted sell form was opened for.
func ParseSellFormID(id string) (domain.Category, bool) {
	return parseCategorySuffix(id, SellFormPrefix)
}

func parseCategorySuffix(id, prefix string) (domain.Category, bool) {
	if !strings.HasPrefix(id, prefix) {
		return "", false
	}
	cat, err := domain.ParseCategory(strings.TrimPrefix(id, prefix))
	if err != nil {
		return "", false
	}
	return cat, true
}
