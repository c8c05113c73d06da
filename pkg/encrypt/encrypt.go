package encrypt

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt.DefaultCost = 10
const bcryptCost = bcrypt.DefaultCost

var (
	// ErrWeakPassword password does not meet strength requirements
	ErrWeakPassword = errors.New("password does not meet strength requirements")
	// ErrPasswordMismatch password does not match
	ErrPasswordMismatch = errors.New("password does not match")
)

// ValidatePasswordStrength 驗證密碼強度
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if matched, _ := regexp.MatchString(`[A-Z]`, password); !matched {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if matched, _ := regexp.MatchString(`[0-9]`, password); !matched {
		return fmt.Errorf("password must contain at least one digit")
	}

	if matched, _ := regexp.MatchString(`[!@#\$%\^&\*]`, password); !matched {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// HashPassword bcrypt 加密密碼
func HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword 比對密碼與雜湊
func ComparePassword(hashed, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
