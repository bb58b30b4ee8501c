package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/common"
)

var (
	ErrLoginRequired    = errors.New("login required")
	ErrNothingToConfirm = errors.New("nothing to confirm")
)

// FieldErrors maps a form field to its validation message. A non-empty
// FieldErrors blocks submission.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return common.ErrorValidation
}

// err returns fe as an error, or nil when it is empty.
func (fe FieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Failure is a failed operation with the message the user should see.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// fail builds a Failure carrying the server's message when it sent one,
// else fallback.
func fail(err error, fallback string) error {
	return &Failure{Message: client.MessageOf(err, fallback), Err: err}
}

// UserMessage renders err for display.
func UserMessage(err error) string {
	var fe FieldErrors
	var f *Failure
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return fe.Error()
	case errors.As(err, &f):
		return f.Message
	case errors.Is(err, ErrLoginRequired):
		return "Please log in first."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
