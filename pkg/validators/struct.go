package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"

	"github.com/go-playground/validator/v10"
)

var (
	pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)
)

// Messages for fields whose generic message would read badly. Keys are the
// JSON path of the field.
var messages = map[string]string{
	"name":              "Name must be between 2 and 50 characters",
	"phone":             "Please enter a valid 10-digit phone number",
	"email":             "Please enter a valid email address",
	"password":          "Password must be at least 6 characters long",
	"newPassword":       "Password must be at least 6 characters long",
	"description":       "Description must be between 10 and 1000 characters",
	"location.address":  "Address is required",
	"location.city":     "City is required",
	"location.state":    "State is required",
	"location.pincode":  "Please enter a valid 6-digit pincode",
	"price.monthly":     "Monthly price must be between 1000 and 50000",
	"price.deposit":     "Deposit must be a positive number",
	"gender":            "Gender must be boys, girls, or unisex",
	"contactInfo.phone": "Please enter a valid 10-digit phone number",
	"contactInfo.email": "Please enter a valid email address",
	"rating.average":    "Rating must be between 0 and 5",
}

// Listing names share the "name" key with users but have other bounds.
var listingMessages = map[string]string{
	"name": "PG name must be between 3 and 100 characters",
}

// FieldError is the per-field detail returned with a 400 Validation failed response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}

	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return apperr.ErrValidation }

var validate = New()

// New builds a validator using the same tag name and rules as gin's binding engine.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	Register(v)
	return v
}

// Register installs the custom rules and JSON field naming on v. It is
// called on gin's own engine as well so bound requests and service input
// fail the same way.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodeRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("amenity", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.Amenities, fl.Field().String())
	})
	v.RegisterValidation("roomkind", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.RoomKinds, fl.Field().String())
	})
	v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.Genders, fl.Field().String())
	})
}

// Struct validates s and converts failures into a *ValidationError.
func Struct(s any) error {
	return FromError(validate.Struct(s), false)
}

// Listing validates listing input, using listing specific messages.
func Listing(s any) error {
	return FromError(validate.Struct(s), true)
}

// FromError converts validator output into a *ValidationError. Other errors
// (for example JSON decoding failures) become a single "body" field error.
func FromError(err error, listing bool) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "Invalid request body"}}}
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		out.Fields = append(out.Fields, FieldError{Field: path, Message: message(path, fe, listing)})
	}

	return out
}

// fieldPath strips the struct name from a namespace such as
// "ListingInput.roomTypes[0].price".
func fieldPath(ns string) string {
	_, path, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}

	return path
}

func message(path string, fe validator.FieldError, listing bool) string {
	if listing {
		if m, ok := listingMessages[path]; ok {
			return m
		}
	}

	if m, ok := messages[path]; ok {
		return m
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "amenity":
		return fmt.Sprintf("%q is not a supported amenity", fe.Value())
	case "roomkind":
		return "Room type must be Single, Double, Triple, or Dormitory"
	case "url", "uri":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	}

	return fmt.Sprintf("%s is invalid", fe.Field())
}
