package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoのValidatorとして使う（c.Validate）
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New()
	// メッセージのフィールド名はjsonタグに合わせる
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.validate.Struct(i)
}

// 最初の違反を1文にする
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request."
	}

	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", e.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", e.Field(), e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id.", e.Field())
	default:
		return fmt.Sprintf("%s is invalid.", e.Field())
	}
}
