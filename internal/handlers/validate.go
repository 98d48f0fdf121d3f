package handlers

import (
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в ошибках поля называются как в JSON, а не как в Go
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct возвращает карту поле->причина для ответа 422
func validateStruct(req any) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrors := map[string]string{}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		fieldErrors["request"] = err.Error()
		return fieldErrors
	}

	for _, fe := range vErrs {
		fieldErrors[fe.Field()] = messageForTag(fe)
	}
	return fieldErrors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "неверный формат email"
	case "oneof":
		return "допустимые значения: " + fe.Param()
	case "min":
		return "минимальная длина: " + fe.Param()
	}
	return "неверное значение"
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}
