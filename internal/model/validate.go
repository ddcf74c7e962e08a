package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks v against its struct tags.
func Validate(entity string, v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s: %w", entity, err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

// ValidateSettings checks field ranges and, for percentage-based budgets,
// that needs, wants and savings add up to 100.
func ValidateSettings(s UserSettings) error {
	if err := Validate("settings", s); err != nil {
		return err
	}
	if s.BudgetMethod == MethodPercentageBased && s.NeedsPct+s.WantsPct+s.SavingsPct != 100 {
		return Invalid("settings", "Percentages", "sum=100")
	}
	return nil
}

// ValidateGoals validates every goal, stopping at the first failure.
func ValidateGoals(goals []Goal) error {
	for i := range goals {
		if err := Validate("goal", goals[i]); err != nil {
			return fmt.Errorf("goal %q: %w", goals[i].ID, err)
		}
	}
	return nil
}

// ValidateBudgetItems validates every budget item, stopping at the first failure.
func ValidateBudgetItems(items []BudgetItem) error {
	for i := range items {
		if err := Validate("budget item", items[i]); err != nil {
			return fmt.Errorf("budget item %q: %w", items[i].ID, err)
		}
	}
	return nil
}
