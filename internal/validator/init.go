package validator

import (
	"errors"

	"ctchen222/tictactoe-bot/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidations(validate); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterCustomValidations adds the game tags to v:
// "mark" accepts X or O, "cell" accepts "", X or O.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("mark", validateMark); err != nil {
		return err
	}
	return v.RegisterValidation("cell", validateCell)
}

// RegisterBindingValidations makes the game tags available to gin's binding tags.
func RegisterBindingValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterCustomValidations(v)
}

func validateMark(fl validator.FieldLevel) bool {
	return game.PlayerMark(fl.Field().String()).Valid()
}

func validateCell(fl validator.FieldLevel) bool {
	m := game.PlayerMark(fl.Field().String())
	return m == game.None || m.Valid()
}
