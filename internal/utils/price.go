package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxParens = regexp.MustCompile(`\(.*?\)`)
	// первое число: цифры вперемешку с разделителями тысяч/дробной части
	rxNumber = regexp.MustCompile(`-?\d[\d\s\x{00A0}\x{202F}'.,]*`)
	spaces   = strings.NewReplacer(" ", "", "\t", "", "\u00a0", "", "\u202f", "", "'", "")
)

// ParsePrice достаёт цену из ячейки прайса: "$1,234.50", "1 234,50", "12.90 GST excl.",
// "$9.95 (was $12)". Без цифр ("Contact for Price", "") → false.
// Скобки смотрим только если вне их числа нет.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	num := rxNumber.FindString(rxParens.ReplaceAllString(s, " "))
	if num == "" {
		num = rxNumber.FindString(s)
	}
	if num == "" {
		return 0, false
	}
	num = strings.TrimRight(spaces.Replace(num), ".,")

	f, err := strconv.ParseFloat(decimalDot(num), 64)
	return f, err == nil
}

// decimalDot приводит "1.234,50" / "1,234.50" / "197,00" к виду "1234.50".
func decimalDot(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// дробный разделитель — тот, что правее
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		// одна запятая и не ровно три цифры после неё → дробь ("197,00"); иначе тысячи ("1,234")
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
