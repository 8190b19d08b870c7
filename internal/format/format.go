// Package format holds the pure display-formatting helpers shared by
// templates and handlers.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Currency renders a dollar amount with two decimals, e.g. 60 -> "$60.00".
func Currency(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// LineTotal is quantity x unit price rounded to cents.
func LineTotal(quantity int, unitPrice float64) float64 {
	return float64(int64(float64(quantity)*unitPrice*100+0.5)) / 100
}

// OrderNumber zero-pads display numbers to four digits. Numbers at or
// above 10000 are shown as-is.
func OrderNumber(n int) string {
	if n < 10000 {
		return fmt.Sprintf("%04d", n)
	}
	return strconv.Itoa(n)
}

// Initials returns the uppercased first letter of each name word.
// Words that do not start with a letter contribute nothing, so
// "546 235235" yields "".
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Phone renders US numbers as (555) 123-4567. Anything that isn't a
// 10-digit (or 1-prefixed 11-digit) number comes back untouched.
func Phone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[0:3], d[3:6], d[6:10])
	case len(d) == 11 && d[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", d[1:4], d[4:7], d[7:11])
	default:
		return raw
	}
}

// Date renders a date for list views, e.g. "Jan 2, 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DatePtr is Date for nullable dates.
func DatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Date(*t)
}

// ContrastText picks black or white text for a hex background color so
// stage chips stay readable regardless of the user's palette.
func ContrastText(hexColor string) string {
	hexColor = strings.TrimPrefix(hexColor, "#")
	if len(hexColor) == 3 {
		hexColor = string([]byte{hexColor[0], hexColor[0], hexColor[1], hexColor[1], hexColor[2], hexColor[2]})
	}
	if len(hexColor) != 6 {
		return "#000000"
	}
	v, err := strconv.ParseUint(hexColor, 16, 32)
	if err != nil {
		return "#000000"
	}
	r := (v >> 16) & 0xff
	g := (v >> 8) & 0xff
	b := v & 0xff
	// Perceived brightness, 0..255.
	if (r*299+g*587+b*114)/1000 >= 128 {
		return "#000000"
	}
	return "#ffffff"
}
