// ABOUTME: Credential validation for login and registration, checked before any network call
// ABOUTME: Struct tags evaluated by go-playground/validator with a custom username rule

package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every FieldErrors value
var ErrValidation = errors.New("validation failed")

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// LoginInput is the login form
type LoginInput struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

// RegisterInput is the registration form
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=20,username"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=50"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// FieldError is one failed field with a user-facing message
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists failures in form field order
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// Get returns the message for field, or ""
func (fe FieldErrors) Get(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Login checks the login form
func Login(in LoginInput) error {
	return check(in)
}

// Register checks the registration form and returns it normalized:
// username and email lower-cased, surrounding whitespace trimmed from the email.
func Register(in RegisterInput) (RegisterInput, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in); err != nil {
		return in, err
	}
	in.Username = strings.ToLower(in.Username)
	in.Email = strings.ToLower(in.Email)
	return in, nil
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe.Field(), fe.Tag())})
	}
	return out
}

func message(field, tag string) string {
	switch field {
	case "username":
		switch tag {
		case "required":
			return "Username is required"
		case "min":
			return "Username must be at least 3 characters"
		case "max":
			return "Username must be at most 20 characters"
		default:
			return "Username must be lowercase letters, numbers, or underscores"
		}
	case "email":
		if tag == "required" {
			return "Email is required"
		}
		return "Please enter a valid email address"
	case "password":
		switch tag {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 6 characters"
		default:
			return "Password must be at most 50 characters"
		}
	case "confirmPassword":
		return "Passwords don't match"
	}
	return field + " is invalid"
}

// Username checks a single username value; used by interactive forms
func Username(s string) error {
	return single("username", validate.Var(s, "required,min=3,max=20,username"))
}

// Password checks a single password value
func Password(s string) error {
	return single("password", validate.Var(s, "required,min=6,max=50"))
}

// Email checks a single email value
func Email(s string) error {
	return single("email", validate.Var(strings.TrimSpace(s), "required,email"))
}

func single(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return FieldErrors{{Field: field, Message: message(field, verrs[0].Tag())}}
}
