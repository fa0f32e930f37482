package ledger

import "strings"

// Category is the display bucket a payment-method tag maps to.
type Category string

const (
	CategorySomCash    Category = "som_cash"
	CategorySomCard    Category = "som_card"
	CategoryDollarCash Category = "dollar_cash"
	CategoryDollarCard Category = "dollar_card"
)

// DefaultCategory receives every tag outside the canonical set.
const DefaultCategory = CategoryDollarCard

// Categories lists the canonical categories in display order.
var Categories = []Category{
	CategorySomCash,
	CategorySomCard,
	CategoryDollarCash,
	CategoryDollarCard,
}

// DefaultLabels are the labels shown to operators when no override is configured.
var DefaultLabels = map[Category]string{
	CategorySomCash:    "So'm naqd",
	CategorySomCard:    "So'm karta",
	CategoryDollarCash: "Dollar naqd",
	CategoryDollarCard: "Dollar karta",
}

// Classify maps a payment-method tag to its category. The second result is
// false when the tag is not canonical and the fallback was applied.
func Classify(tag string) (Category, bool) {
	switch Category(tag) {
	case CategorySomCash, CategorySomCard, CategoryDollarCash, CategoryDollarCard:
		return Category(tag), true
	default:
		return DefaultCategory, false
	}
}

// Labeler resolves display labels for categories.
type Labeler interface {
	Label(Category) string
}

// LabelMap is a static Labeler. Missing entries fall back to DefaultLabels.
type LabelMap map[Category]string

func (m LabelMap) Label(c Category) string {
	if label := strings.TrimSpace(m[c]); label != "" {
		return label
	}
	if label, ok := DefaultLabels[c]; ok {
		return label
	}
	return string(c)
}
