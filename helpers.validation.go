package main

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single invalid field of a request body.
// Value is only set when the field was submitted.
type FieldError struct {
	Location string  `json:"location"`
	Msg      string  `json:"msg"`
	Param    string  `json:"param"`
	Value    *string `json:"value,omitempty"`
}

// FieldErrors is the ordered list of invalid fields of a payload.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Msg)
	}
	return strings.Join(msgs, ", ")
}

var requiredFieldMessages = map[string]string{
	"name":   "Book name is required",
	"author": "Author name is required",
}

var payloadValidator = newPayloadValidator()

// newPayloadValidator reports fields under their json name.
func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateBookPayload checks that both name and author are provided and
// not empty. Errors follow the fields declaration order. A nil result
// means the payload is valid.
func ValidateBookPayload(payload BookPayload) FieldErrors {
	err := payloadValidator.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Location: "body", Msg: err.Error()}}
	}

	submitted := map[string]*string{
		"name":   payload.Name,
		"author": payload.Author,
	}
	errs := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		param := fe.Field()
		msg, ok := requiredFieldMessages[param]
		if !ok {
			msg = param + " is required"
		}
		errs = append(errs, FieldError{
			Location: "body",
			Msg:      msg,
			Param:    param,
			Value:    submitted[param],
		})
	}
	return errs
}
