package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatGBP formats an amount in pence as a display string like "£17.50".
func FormatGBP(pence int64) string {
	neg := pence < 0
	if neg {
		pence = -pence
	}
	out := fmt.Sprintf("£%d.%02d", pence/100, pence%100)
	if neg {
		return "-" + out
	}
	return out
}

// ParseGBP converts a decimal price string such as "3.50" or "£3.50" into
// pence. At most two fractional digits are accepted; anything else is an error.
func ParseGBP(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "£")
	if trimmed == "" {
		return 0, fmt.Errorf("money: empty price")
	}

	neg := false
	if strings.HasPrefix(trimmed, "-") {
		neg = true
		trimmed = trimmed[1:]
	}

	whole := trimmed
	frac := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole = trimmed[:idx]
		frac = trimmed[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("money: %q has more than two decimal places", value)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	pounds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid price %q", value)
	}
	fracPence, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid price %q", value)
	}

	pence := pounds*100 + fracPence
	if neg {
		pence = -pence
	}
	return pence, nil
}
