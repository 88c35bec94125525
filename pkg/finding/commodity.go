// pkg/finding/commodity.go
package finding

import "strings"

// Commodity is the closed category set commodity free-text collapses into.
// Matching for enrichment always happens on these categories, never on raw
// text.
type Commodity string

const (
	CommodityRice  Commodity = "RICE"
	CommodityCorn  Commodity = "CORN"
	CommoditySugar Commodity = "SUGAR"
	CommodityOther Commodity = "OTHER"
)

// NormalizeCommodity maps a free-text commodity label to its category.
func NormalizeCommodity(raw string) Commodity {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "RICE") || strings.Contains(s, "PALAY"):
		return CommodityRice
	case strings.Contains(s, "CORN"):
		return CommodityCorn
	case strings.Contains(s, "SUGAR"):
		return CommoditySugar
	default:
		return CommodityOther
	}
}
