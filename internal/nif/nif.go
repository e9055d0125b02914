package nif

import (
	"regexp"
	"strings"
)

// Length 是 NIF 的固定位数。
const Length = 9

// 允许的首位数字；另外 "45" 开头（非居民个人）单独放行。
const allowedFirst = "12356789"

// 输入常见写法：PT 500 960 046 / pt500.960.046 / 500-960-046。
var (
	countryPrefixRE = regexp.MustCompile(`(?i)^PT[\s.-]*`)
	separatorRE     = regexp.MustCompile(`[\s.-]+`)
)

// Normalize 去掉国家前缀与分隔符，只做“形态”整理，不做校验。
// 结果仍需交给 ValidLocal 判断。
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = countryPrefixRE.ReplaceAllString(s, "")
	return separatorRE.ReplaceAllString(s, "")
}

// ValidLocal 只用 mod 11 校验位判断 NIF 是否合法（不访问网络）。
//
// 约束：纯函数；任何不合法输入都返回 false，不报错。
func ValidLocal(s string) bool {
	if !isDigits(s) {
		return false
	}
	if !strings.ContainsRune(allowedFirst, rune(s[0])) && s[:2] != "45" {
		return false
	}
	want, ok := CheckDigit(s[:Length-1])
	if !ok {
		return false
	}
	return want == int(s[Length-1]-'0')
}

// CheckDigit 根据前 8 位计算期望的校验位。
// 权重从 9 递减到 2；余数为 0 或 1 时校验位为 0，否则为 11-余数。
func CheckDigit(first8 string) (int, bool) {
	if len(first8) != Length-1 {
		return 0, false
	}
	sum := 0
	for i := 0; i < len(first8); i++ {
		c := first8[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		sum += int(c-'0') * (Length - i)
	}
	r := sum % 11
	if r < 2 {
		return 0, true
	}
	return 11 - r, true
}

// isDigits 按字节判断，非 ASCII 数字（例如全角数字）一律不合法。
func isDigits(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
