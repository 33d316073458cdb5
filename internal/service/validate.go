package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the validate tags of a model value. Failures wrap ErrInvalid.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s required", strings.ToLower(e.Field())))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s longer than %s characters", strings.ToLower(e.Field()), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s", strings.ToLower(e.Field()), e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
