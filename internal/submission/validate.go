package submission

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var fieldNames = map[string]string{
	"FirstName":    "first_name",
	"LastName":     "last_name",
	"Email":        "email",
	"Availability": "availability",
	"Source":       "source",
	"Resume":       "resume",
}

// normalize trims the identity fields in place.
func (d *Draft) normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Availability = strings.TrimSpace(d.Availability)
	d.Source = strings.TrimSpace(d.Source)
}

// Validate enforces the required fields. The first failing field is reported.
func (d *Draft) Validate() error {
	d.normalize()

	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &ValidationError{Message: err.Error()}
	}
	if len(d.Resume.Data) == 0 {
		return &ValidationError{Field: "resume", Message: "resume file is empty"}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	name, ok := fieldNames[fe.StructField()]
	if !ok {
		name = strings.ToLower(fe.StructField())
	}

	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: name, Message: "is required"}
	case "email":
		return &ValidationError{Field: name, Message: "is not a valid email address"}
	case "oneof":
		return &ValidationError{Field: name, Message: "must be one of: " + fe.Param()}
	default:
		return &ValidationError{Field: name, Message: "is invalid"}
	}
}
