package domain

import (
	"fmt"
	"strings"
)

// Category is the kind of thing a listing offers. The set is fixed: each
// value has its own dashboard button and sell form.
type Category string

const (
	CategoryService      Category = "Service"
	CategoryProduct      Category = "Product"
	CategoryTool         Category = "Tool"
	CategoryConsultation Category = "Consultation"
)

// Categories returns every category in dashboard order.
func Categories() []Category {
	return []Category{CategoryService, CategoryProduct, CategoryTool, CategoryConsultation}
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) String() string { return string(c) }
