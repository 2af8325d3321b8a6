package reconcile

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CompletionRatio is round(actual/planned*100), or 0 when nothing is planned.
// The percentage is taken in float64 before rounding, so 23/40 (57.49999...)
// rounds to 57 the same way the planning workbooks do.
func CompletionRatio(actual, planned int) int {
	if planned <= 0 {
		return 0
	}
	pct := decimal.NewFromFloat(float64(actual) / float64(planned) * 100).Round(0)
	return int(pct.IntPart())
}

// FormatPercent renders a ratio as "77%".
func FormatPercent(ratio int) string {
	return strconv.Itoa(ratio) + "%"
}
