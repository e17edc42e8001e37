package utils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground/validator so handlers get one-line
// request validation with readable messages.
type CustomValidator struct {
	v *validator.Validate
}

var (
	validatorOnce     sync.Once
	validatorInstance *CustomValidator
)

// GetValidator returns the shared validator instance.
func GetValidator() *CustomValidator {
	validatorOnce.Do(func() {
		validatorInstance = &CustomValidator{v: validator.New()}
	})
	return validatorInstance
}

// Validate checks struct tags and flattens the field errors into a single
// message suitable for an API response.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		msgs = append(msgs, fmt.Sprintf("field %s failed on %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
