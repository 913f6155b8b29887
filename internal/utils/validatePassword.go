package utils

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var (
	hasLetter  = regexp.MustCompile(`[A-Za-z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[!@#\$%\^&\*\(\)_\+\-=\[\]{};':"\\|,.<>\/?]`)
)

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) || !hasSpecial.MatchString(password) {
		return errors.New("password must contain letters, numbers and at least 1 special character")
	}
	return nil
}

// ValidateNickname accepts 2 to 20 characters, Hangul included.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < 2 || n > 20 {
		return errors.New("nickname must be 2 to 20 characters long")
	}
	return nil
}
