package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"projboard/internal/model"
	"projboard/internal/store"
	"projboard/internal/validate"
)

// InvalidInputMessage is shown to the user when a submit is rejected.
const InvalidInputMessage = "Invalid input, please try again!"

var ErrInvalidInput = errors.New("invalid input")

var (
	titleRules       = validate.Rules{Required: true}
	descriptionRules = validate.Rules{Required: true, MinLength: validate.Int(5)}
	peopleRules      = validate.Rules{Required: true, Min: validate.Int(1), Max: validate.Int(5)}
)

// InputView holds the raw form fields and turns a valid submit into a new
// project.
type InputView struct {
	Title       string
	Description string
	People      string

	store *store.Store
	err   error
}

func NewInputView(st *store.Store) *InputView {
	return &InputView{store: st}
}

// Validate checks the current fields without touching the store.
func (in *InputView) Validate() (title, description string, people int, err error) {
	return ValidateFields(in.Title, in.Description, in.People)
}

// ValidateFields parses and validates raw form values.
func ValidateFields(title, description, people string) (string, string, int, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	fields := []validate.Field{
		{Name: "title", Value: title, Rules: titleRules},
		{Name: "description", Value: description, Rules: descriptionRules},
	}
	var parseErr error
	n := 0
	if raw := strings.TrimSpace(people); raw == "" {
		parseErr = errors.New("people is required")
	} else if v, err := strconv.Atoi(raw); err != nil {
		parseErr = errors.New("people must be a whole number")
	} else {
		n = v
	}
	if parseErr == nil {
		fields = append(fields, validate.Field{Name: "people", Value: n, Rules: peopleRules})
	}

	if err := errors.Join(validate.CheckAll(fields...), parseErr); err != nil {
		return "", "", 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return title, description, n, nil
}

// Submit validates the fields and creates the project. On success the fields
// are cleared; on failure they are kept and the store is not called.
func (in *InputView) Submit() (model.Project, error) {
	title, description, people, err := in.Validate()
	if err != nil {
		in.err = err
		return model.Project{}, err
	}
	in.err = nil
	p := in.store.Create(title, description, people)
	in.Clear()
	return p, nil
}

func (in *InputView) Clear() {
	in.Title = ""
	in.Description = ""
	in.People = ""
}

// Err is the error of the last rejected submit, nil after a successful one.
func (in *InputView) Err() error { return in.err }

// Alert is the message to show for the last submit, "" when it succeeded.
func (in *InputView) Alert() string {
	if in.err == nil {
		return ""
	}
	return InvalidInputMessage
}

// FieldErrors splits a rejected submit into one message per field, in field
// order. Errors that are not ErrInvalidInput yield nil.
func FieldErrors(err error) []string {
	if !errors.Is(err, ErrInvalidInput) {
		return nil
	}
	msg := strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	var out []string
	for _, line := range strings.Split(msg, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
