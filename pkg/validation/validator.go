package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/truemail-rb/truemail-go"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

	mailboxOnce   sync.Once
	mailboxConfig *truemail.Configuration
)

// Init configures the validator behind Gin's binding: JSON tag names in
// errors plus the project's custom tags.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs tag names and custom validations on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return CheckPassword(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("answer_choice", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
		case "A", "B", "C", "D":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
}

// ValidEmail checks address syntax with truemail's regex layer. No DNS or
// SMTP round trip is made.
func ValidEmail(email string) bool {
	mailboxOnce.Do(func() {
		mailboxConfig, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "noreply@rockae.local",
			ValidationTypeDefault: "regex",
		})
	})
	if mailboxConfig == nil || email == "" {
		return false
	}
	return truemail.IsValid(email, mailboxConfig)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "This field is required."
	case "email", "mailbox":
		return "Enter a valid email address."
	case "password_policy":
		if msg := CheckPassword(fmt.Sprint(fe.Value())); msg != "" {
			return msg
		}
		return "Password does not meet the requirements."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "answer_choice":
		return "Must be one of A, B, C, D."
	case "eqfield":
		return "Must match " + param + "."
	case "len":
		return fmt.Sprintf("Must be exactly %s characters long.", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "Must be at least " + param + "."
		}
		return "Ensure this field has at least " + param + " characters."
	case "max":
		if isNumberKind(fe.Kind()) {
			return "Must be at most " + param + "."
		}
		return "Ensure this field has no more than " + param + " characters."
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(param), ", ") + "."
	case "datetime":
		return "Must match datetime format " + param + "."
	case "e164":
		return "Enter a valid phone number."
	case "url":
		return "Enter a valid URL."
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
