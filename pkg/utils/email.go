package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUsername 用户名只允许字母 数字和下划线
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// NormalizeEmail 邮箱统一小写存储
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
