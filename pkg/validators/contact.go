package validators

import (
	"errors"

	"phonebook/contacts-api/internal/model"
)

var (
	ErrNameEmpty       = errors.New("contact name can't be empty")
	ErrNameTooLong     = errors.New("contact name is too long")
	ErrSurnameTooLong  = errors.New("contact surname is too long")
	ErrNumberTooLong   = errors.New("contact number is too long")
	ErrBirthdayEmpty   = errors.New("no birthday provided")
	ErrBirthdayInvalid = errors.New("invalid birthday provided, expected YYYY-MM-DD")
)

const maxNameLen = 100

// ContactValidator checks a contact payload and parses the birthday. Surname
// and number are optional, everything else is required.
func ContactValidator(name, surname, email, number, birthday string) (model.Date, error) {
	if name == "" {
		return model.Date{}, ErrNameEmpty
	}

	if len(name) > maxNameLen {
		return model.Date{}, ErrNameTooLong
	}

	if len(surname) > maxNameLen {
		return model.Date{}, ErrSurnameTooLong
	}

	if len(number) > 32 {
		return model.Date{}, ErrNumberTooLong
	}

	if err := EmailValidator(email); err != nil {
		return model.Date{}, err
	}

	if birthday == "" {
		return model.Date{}, ErrBirthdayEmpty
	}

	d, err := model.ParseDate(birthday)
	if err != nil {
		return model.Date{}, ErrBirthdayInvalid
	}

	return d, nil
}
