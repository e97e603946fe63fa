package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Form limits enforced before a request is sent.
const (
	MinPasswordLen = 6
	MinUsernameLen = 3
	MaxUsernameLen = 50
)

// ValidationError reports a form field that failed client-side checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLogin checks the login form fields.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateRegistration checks the register form fields.
func ValidateRegistration(username, email, password string) error {
	username = strings.TrimSpace(username)
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		return &ValidationError{Field: "username", Message: "username is required"}
	case n < MinUsernameLen:
		return &ValidationError{Field: "username", Message: fmt.Sprintf("username must be at least %d characters", MinUsernameLen)}
	case n > MaxUsernameLen:
		return &ValidationError{Field: "username", Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLen)}
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLen)}
	}
	return nil
}

// ValidateRating checks that rating is within MinRating..MaxRating.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return &ValidationError{Field: "email", Message: "email is invalid"}
	}
	return nil
}
