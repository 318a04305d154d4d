package utils

import (
	"net/http"
	"unicode/utf8"

	"github.com/itchan-dev/textboard/internal/config"
	internal_errors "github.com/itchan-dev/textboard/internal/errors"
)

// Validator enforces the configured length limits on user input.
type Validator struct {
	titleMax int
	textMax  int
	nameMax  int
}

func NewValidator(cfg *config.Public) *Validator {
	return &Validator{
		titleMax: cfg.ThreadTitleMaxLen,
		textMax:  cfg.PostTextMaxLen,
		nameMax:  cfg.NameMaxLen,
	}
}

func (v *Validator) Title(title string) error {
	if utf8.RuneCountInString(title) > v.titleMax {
		return &internal_errors.ErrorWithStatusCode{Message: "Title is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (v *Validator) Text(text string) error {
	if utf8.RuneCountInString(text) > v.textMax {
		return &internal_errors.ErrorWithStatusCode{Message: "Text is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (v *Validator) Name(name string) error {
	if utf8.RuneCountInString(name) > v.nameMax {
		return &internal_errors.ErrorWithStatusCode{Message: "Name is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}
