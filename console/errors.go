package console

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	consoleValidationCode = "CONSOLE_VALIDATION_FAILED"
	consoleSaveCode       = "CONSOLE_SAVE_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "console request validation failed").
		WithTextCode(consoleValidationCode)
}

func wrapSaveError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "console save failed").
		WithTextCode(consoleSaveCode)
}
