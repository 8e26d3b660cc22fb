package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts free-form numeric input to an integer amount.
//
// It understands the shorthand used on the admin page: "к" (or latin "k")
// multiplies by a thousand, "кк"/"kk" by a million, and a comma works as a
// decimal separator. Fractions truncate toward zero. Parsing never fails:
// anything unreadable comes back as 0.
//
// Examples:
//   ParseAmount("5к")   -> 5000
//   ParseAmount("2кк")  -> 2000000
//   ParseAmount("1,5к") -> 1500
//   ParseAmount("-100") -> -100
//   ParseAmount("idk")  -> 0
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ToLower(s)

	// Latin and Cyrillic shorthand letters are equivalent.
	s = strings.ReplaceAll(s, "kk", "кк")
	s = strings.ReplaceAll(s, "k", "к")

	var sign int64 = 1
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	}

	if rest, ok := strings.CutSuffix(s, "кк"); ok {
		return sign * scaled(rest, 1_000_000)
	}
	if rest, ok := strings.CutSuffix(s, "к"); ok {
		return sign * scaled(rest, 1_000)
	}

	s = strings.ReplaceAll(s, ",", ".")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return sign * int64(f)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return sign * n
}

// scaled parses num as a decimal (comma or dot separator) and multiplies by
// factor, truncating toward zero.
func scaled(num string, factor int64) int64 {
	num = strings.ReplaceAll(num, ",", ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return int64(f * float64(factor))
}
