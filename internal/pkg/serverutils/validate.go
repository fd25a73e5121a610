package serverutils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateRequest runs struct-tag validation; failures surface as
// validator.ValidationErrors and map to 400 in the error middleware.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
