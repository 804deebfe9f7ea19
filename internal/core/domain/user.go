package domain

import (
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/qboard/qboard/internal/core/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxUsernameLength = 50
	MaxFullNameLength = 100
	MaxEmailLength    = 100
)

// User is an authenticated account. Volunteers and admins are users;
// question and answer authors may also be anonymous (no user at all).
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserRegistrationParams holds parameters for user registration.
type UserRegistrationParams struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Validate validates user registration parameters.
func (p *UserRegistrationParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Username == "" {
		errs.Add("username", "Username is required")
	} else if len(p.Username) > MaxUsernameLength {
		errs.Add("username", "Username must be 50 characters or less")
	}

	if p.FullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if len(p.FullName) > MaxFullNameLength {
		errs.Add("fullName", "Full name must be 100 characters or less")
	}

	if p.Email == "" {
		errs.Add("email", "Email is required")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email must be 100 characters or less")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Invalid email format")
	}

	for _, msg := range ValidatePassword(p.Password) {
		errs.Add("password", msg)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements.
// Returns a slice of error messages (empty if valid).
func ValidatePassword(password string) []string {
	var msgs []string

	if len(password) < MinPasswordLength {
		msgs = append(msgs, "Password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordLength {
		msgs = append(msgs, "Password must be 128 characters or less")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		msgs = append(msgs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		msgs = append(msgs, "Password must contain at least one lowercase letter")
	}
	if !hasNumber {
		msgs = append(msgs, "Password must contain at least one number")
	}

	return msgs
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CheckPassword verifies if the provided password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	if msgs := ValidatePassword(password); len(msgs) > 0 {
		return "", apperrors.ErrPasswordTooWeak
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// NewUser creates a new user with validated parameters. New accounts
// are never admins; promotion is an explicit admin action.
func NewUser(params UserRegistrationParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
