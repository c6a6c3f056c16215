package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MsgAllFieldsRequired = "All fields are required"
	MsgFirstNameLetters  = "First name must contain only letters"
	MsgLastNameLetters   = "Last name must contain only letters"
	MsgInvalidEmail      = "Invalid email format"
	MsgUsernameAlnum     = "Username must contain only letters and numbers"
	MsgAgeInvalid        = "Age must be a number and at least 18 years old"
	MsgPhoneDigits       = "Phone number must contain only numbers"
	MsgPhoneLength       = "Phone number must be between 10 and 15 digits"
	MsgPasswordLength    = "Password must be at least 6 characters long"
	MsgNoUpdatableFields = "No updatable fields supplied"
	MsgContentRequired   = "Content is required"
	MsgTodoFieldsMissing = "Username and content are required"
	MsgInvalidBody       = "Invalid request body"
)

const (
	MinAge = 18
	MaxAge = 150
)

// ValidationError carries the client-facing message of the first rule that failed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// NumericString accepts either a JSON number or a JSON string and keeps the
// textual form so that non-numeric input can be reported by the age rule.
type NumericString string

func (n *NumericString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericString(strings.TrimSpace(s))
	default:
		*n = NumericString(b)
	}
	return nil
}

// Int returns the value as a whole number of years.
func (n NumericString) Int() (int, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("age %q is not a whole number", string(n))
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("age %q is out of range", string(n))
	}
	return int(f), nil
}

var (
	basicEmailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

// Validator wraps validator/v10 with the account rules registered.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		age, err := NumericString(fl.Field().String()).Int()
		return err == nil && age >= MinAge && age <= MaxAge
	})
	return &Validator{v: v}
}

// SignupInput is the account creation payload.
type SignupInput struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Username  string        `json:"username"`
	Age       NumericString `json:"age"`
	Phone     string        `json:"phone"`
	Password  string        `json:"password"`
}

// Normalize trims every text field and lowercases the email.
func (in *SignupInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Age = NumericString(strings.TrimSpace(string(in.Age)))
	in.Phone = strings.TrimSpace(in.Phone)
}

type fieldRule struct {
	tag     string
	message string
}

var (
	firstNameRules = []fieldRule{{"alpha", MsgFirstNameLetters}}
	lastNameRules  = []fieldRule{{"alpha", MsgLastNameLetters}}
	emailRules     = []fieldRule{{"basic_email", MsgInvalidEmail}}
	usernameRules  = []fieldRule{{"alphanum", MsgUsernameAlnum}}
	ageRules       = []fieldRule{{"adult", MsgAgeInvalid}}
	phoneRules     = []fieldRule{{"digits", MsgPhoneDigits}, {"min=10,max=15", MsgPhoneLength}}
	passwordRules  = []fieldRule{{"min=6", MsgPasswordLength}}
)

func (v *Validator) check(value interface{}, rules []fieldRule) error {
	for _, r := range rules {
		if err := v.v.Var(value, r.tag); err != nil {
			return NewValidationError(r.message)
		}
	}
	return nil
}

// ValidateSignup checks the payload field by field and returns the first
// failing rule as a *ValidationError.
func (v *Validator) ValidateSignup(in *SignupInput) error {
	required := []string{in.FirstName, in.LastName, in.Email, in.Username, string(in.Age), in.Phone, in.Password}
	for _, f := range required {
		if err := v.v.Var(f, "required"); err != nil {
			return NewValidationError(MsgAllFieldsRequired)
		}
	}
	// a numeric zero age counts as missing
	if n, err := in.Age.Int(); err == nil && n == 0 {
		return NewValidationError(MsgAllFieldsRequired)
	}

	steps := []struct {
		value interface{}
		rules []fieldRule
	}{
		{in.FirstName, firstNameRules},
		{in.LastName, lastNameRules},
		{in.Email, emailRules},
		{in.Username, usernameRules},
		{string(in.Age), ageRules},
		{in.Phone, phoneRules},
		{in.Password, passwordRules},
	}
	for _, s := range steps {
		if err := v.check(s.value, s.rules); err != nil {
			return err
		}
	}
	return nil
}

// UserUpdateInput is the allow-listed profile update payload.
type UserUpdateInput struct {
	FirstName *string        `json:"firstName"`
	LastName  *string        `json:"lastName"`
	Age       *NumericString `json:"age"`
	Phone     *string        `json:"phone"`
	Password  *string        `json:"password"`
}

var UserUpdateFields = []string{"firstName", "lastName", "age", "phone", "password"}

func (in *UserUpdateInput) IsEmpty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Age == nil && in.Phone == nil && in.Password == nil
}

// ValidateUserUpdate applies the signup rule of every supplied field.
func (v *Validator) ValidateUserUpdate(in *UserUpdateInput) error {
	if in.IsEmpty() {
		return NewValidationError(MsgNoUpdatableFields)
	}
	if in.FirstName != nil {
		*in.FirstName = strings.TrimSpace(*in.FirstName)
		if err := v.check(*in.FirstName, firstNameRules); err != nil {
			return err
		}
	}
	if in.LastName != nil {
		*in.LastName = strings.TrimSpace(*in.LastName)
		if err := v.check(*in.LastName, lastNameRules); err != nil {
			return err
		}
	}
	if in.Age != nil {
		if err := v.check(string(*in.Age), ageRules); err != nil {
			return err
		}
	}
	if in.Phone != nil {
		*in.Phone = strings.TrimSpace(*in.Phone)
		if err := v.check(*in.Phone, phoneRules); err != nil {
			return err
		}
	}
	if in.Password != nil {
		if err := v.check(*in.Password, passwordRules); err != nil {
			return err
		}
	}
	return nil
}

// TodoUpdateInput is the allow-listed todo update payload.
type TodoUpdateInput struct {
	Content *string `json:"content"`
}

var TodoUpdateFields = []string{"content"}

func (v *Validator) ValidateTodoUpdate(in *TodoUpdateInput) error {
	if in.Content == nil {
		return NewValidationError(MsgNoUpdatableFields)
	}
	*in.Content = strings.TrimSpace(*in.Content)
	if err := v.v.Var(*in.Content, "required"); err != nil {
		return NewValidationError(MsgContentRequired)
	}
	return nil
}

// DecodeAllowed unmarshals a JSON object into dst after checking that every
// key is in allowed. The first offending key (in sorted order) is reported.
func DecodeAllowed(body []byte, allowed []string, dst interface{}) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return NewValidationError(MsgInvalidBody)
	}

	ok := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		ok[f] = struct{}{}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, found := ok[k]; !found {
			return NewValidationError(fmt.Sprintf("Field %q cannot be updated", k))
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return NewValidationError(MsgInvalidBody)
	}
	return nil
}
