package latexcalc

import "regexp"

// NormalizeGaps turns juxtaposed placeholders into explicit products:
// "K0  K1 K2" becomes "K0 * K1 * K2". Adjacent matrices mean multiplication.
func NormalizeGaps(text string, table *PlaceholderMap) string {
	if table.Len() == 0 {
		return text
	}
	key := regexp.QuoteMeta(table.Tag()) + `\d+`
	adjacent := regexp.MustCompile(`(` + key + `)\s+(` + key + `)`)
	for {
		next := adjacent.ReplaceAllString(text, "$1 * $2")
		if next == text {
			return text
		}
		text = next
	}
}
