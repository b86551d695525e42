package scraper

import (
	"fmt"
	"strconv"
	"strings"
)

// magnitudes maps a suffix to its power of ten.
var magnitudes = map[byte]int{
	'K': 3,
	'M': 6,
	'B': 9,
}

// DecodeCount converts a compact count such as "4K", "1.5m" or "120" into an integer.
// Suffixed values are scaled in decimal and truncated toward zero.
func DecodeCount(raw string) (int, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return 0, fmt.Errorf("empty count")
	}

	if exp, ok := magnitudes[value[len(value)-1]]; ok {
		n, err := scaleDecimal(strings.TrimSpace(value[:len(value)-1]), exp)
		if err != nil {
			return 0, fmt.Errorf("invalid count %q: %w", raw, err)
		}
		return n, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return n, nil
}

// scaleDecimal returns the unsigned decimal number times 10^exp, dropping any digits
// past the exponent.
func scaleDecimal(number string, exp int) (int, error) {
	whole, frac, _ := strings.Cut(number, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("missing number")
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("not a decimal number")
	}

	if len(frac) > exp {
		frac = frac[:exp]
	}
	digits := whole + frac + strings.Repeat("0", exp-len(frac))
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
