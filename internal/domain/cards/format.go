package cards

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/montpellier/internal/domain/model"
)

// BadgeClass maps a player's rank to its badge tier. Only an empty string
// gets badge-none; an unset puesto falls through to badge-default.
func BadgeClass(p model.Puesto) string {
	if p.IsEmpty() {
		return "badge-none"
	}
	if n, ok := p.Rank(); ok && n >= 1 && n <= 3 {
		return "badge-" + strconv.Itoa(n)
	}
	return "badge-default"
}

// FormatPrice strips everything outside [0-9.-] from raw. A finite remainder
// is formatted as Colombian pesos without decimals ("$ 12.000", with a
// no-break space); anything else returns raw unchanged.
func FormatPrice(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return raw
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return raw
	}
	return formatCOP(v)
}

func formatCOP(v float64) string {
	r := math.Round(math.Abs(v))
	whole := strconv.FormatFloat(r, 'f', 0, 64)

	var b strings.Builder
	if v < 0 && r != 0 {
		b.WriteByte('-')
	}
	b.WriteString("$\u00a0")
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}
