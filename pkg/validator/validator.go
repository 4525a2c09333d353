package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"anoa.com/recipehub/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Share the tag gin uses so the same DTO rules apply in handlers and services.
		validate.SetTagName("binding")
	})
	return validate
}

// Struct validates v against its binding tags and returns a validation AppError.
func Struct(v any) error {
	if err := instance().Struct(v); err != nil {
		return apperror.Wrap(apperror.ErrValidation, FormatValidationError(err), err)
	}
	return nil
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if isString(fe) {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString(fe) {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isString(fe validator.FieldError) bool {
	t := fe.Type().String()
	return t == "string" || t == "*string"
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":        "username",
		"Email":           "email",
		"Password":        "password",
		"Roles":           "roles",
		"RefreshToken":    "refresh_token",
		"Name":            "name",
		"Desc":            "desc",
		"Title":           "title",
		"Description":     "description",
		"Ingredients":     "ingredients",
		"Instructions":    "instructions",
		"CookingTime":     "cooking_time",
		"ServingSize":     "serving_size",
		"DifficultyLevel": "difficulty_level",
		"CategoryID":      "category_id",
		"RecipeID":        "recipe_id",
		"Content":         "content",
		"Value":           "value",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
