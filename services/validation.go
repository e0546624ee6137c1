package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/restaurant-floor/models"
)

var validate = validator.New()

// ItemInput is one line a waiter asks for: the menu snapshot plus quantity and note.
type ItemInput struct {
	Menu     models.MenuItem `validate:"-"`
	Quantity int             `validate:"gte=1,lte=999"`
	Notes    string          `validate:"max=500"`
}

type tableInput struct {
	Number int `validate:"gt=0"`
	Seats  int `validate:"gt=0,lte=100"`
}

type reservationInput struct {
	Name string `validate:"required,max=100"`
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return ValidationError{Field: strings.ToLower(fe.Field()), Message: msg}
	}
	return err
}

func validateItemInput(in ItemInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Menu.ID == "" {
		return ValidationError{Field: "menu_item_id", Message: "is required"}
	}
	if !in.Menu.Type.Valid() {
		return ValidationError{Field: "type", Message: fmt.Sprintf("unknown item type %q", in.Menu.Type)}
	}
	if in.Menu.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "must not be negative"}
	}
	if !in.Menu.Available {
		return fmt.Errorf("%s: %w", in.Menu.Name, ErrMenuItemUnavailable)
	}
	return nil
}
