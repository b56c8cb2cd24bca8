package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestion checks a question before it is stored
func (bv *BusinessValidator) ValidateQuestion(q *models.Question) ValidationErrors {
	errs := bv.Validate(q)

	for i, option := range q.Options() {
		if strings.TrimSpace(option) == "" {
			errs = append(errs, ValidationError{
				Field:   "option" + string(rune('1'+i)),
				Message: "is required",
				Rule:    "required",
			})
		}
	}

	return errs
}

// ValidateQuiz checks a quiz before it is stored
func (bv *BusinessValidator) ValidateQuiz(q *models.Quiz) ValidationErrors {
	return bv.Validate(q)
}

// ValidateUser checks a user before it is stored
func (bv *BusinessValidator) ValidateUser(u *models.User) ValidationErrors {
	return bv.Validate(u)
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Correct option must point at one of the four options
	bv.validate.RegisterValidation("option_index", func(fl validator.FieldLevel) bool {
		index := fl.Field().Int()
		return index >= models.MinOptionIndex && index <= models.MaxOptionIndex
	})

	// Names must contain something other than whitespace
	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
