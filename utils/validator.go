package utils

import (
	"fmt"
	"strings"

	"taskboard/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Statuses are parsed-or-rejected at the boundary rather than
	// shape-checked downstream
	_ = validate.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTaskStatus(fl.Field().String())
		return err == nil
	})
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	// Format validation errors
	var messages []string
	for _, err := range err.(validator.ValidationErrors) {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			messages = append(messages, field+" must be at least "+param+" characters")
		case "max":
			messages = append(messages, field+" must be at most "+param+" characters")
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "len":
			messages = append(messages, field+" must be exactly "+param+" characters")
		case "taskstatus":
			messages = append(messages, field+" must be one of BACKLOG, TODO, IN_PROGRESS, IN_REVIEW, DONE")
		case "oneof":
			messages = append(messages, field+" must be one of "+param)
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return fmt.Errorf("%s", strings.Join(messages, ", "))
}
