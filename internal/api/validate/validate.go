package validate

import (
	"fmt"
	"regexp"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var (
	hasLetterRx = regexp.MustCompile(`[A-Za-z]`)
	hasDigitRx  = regexp.MustCompile(`[0-9]`)
)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// Password requires at least 8 characters with one letter and one digit.
func Password(v string) error {
	if v == "" {
		return fmt.Errorf("password is required")
	}
	if len(v) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if !hasLetterRx.MatchString(v) {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasDigitRx.MatchString(v) {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}

// AreaName must be 1-100 characters.
func AreaName(v string) error {
	if v == "" {
		return fmt.Errorf("area name is required")
	}
	if len(v) > 100 {
		return fmt.Errorf("area name exceeds 100 characters")
	}
	return nil
}

// AreaDescription may be empty but is capped at 500 characters.
func AreaDescription(v string) error {
	if len(v) > 500 {
		return fmt.Errorf("area description exceeds 500 characters")
	}
	return nil
}

// Entry requires text unless an image is attached.
func Entry(text string, hasImage bool) error {
	if text == "" && !hasImage {
		return fmt.Errorf("entry text or image is required")
	}
	return nil
}
