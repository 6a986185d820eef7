// Package validation checks request payloads against embedded JSON schemas and
// decodes them into domain values.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spec-kit/credit-service/internal/domain"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const dateLayout = "2006-01-02"

// Validator holds the compiled payload schemas.
type Validator struct {
	register *gojsonschema.Schema
	update   *gojsonschema.Schema
}

// Registration is a decoded sign-up payload.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	register, err := compile("schemas/user_register.json")
	if err != nil {
		return nil, err
	}
	update, err := compile("schemas/user_update.json")
	if err != nil {
		return nil, err
	}
	return &Validator{register: register, update: update}, nil
}

// MustNew is New for static wiring; it panics if an embedded schema is broken.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func compile(name string) (*gojsonschema.Schema, error) {
	raw, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// Registration validates and decodes a sign-up body.
func (v *Validator) Registration(body []byte) (Registration, error) {
	var reg Registration
	if err := validate(v.register, body); err != nil {
		return reg, err
	}
	if err := json.Unmarshal(body, &reg); err != nil {
		return reg, apperrors.NewValidationError("invalid request body", nil)
	}
	reg.Email = strings.TrimSpace(reg.Email)
	return reg, nil
}

// ProfilePatch validates a partial profile update. Keys that are absent stay
// untouched; keys set to null clear the stored value.
func (v *Validator) ProfilePatch(body []byte) (domain.ProfilePatch, error) {
	var patch domain.ProfilePatch
	if err := validate(v.update, body); err != nil {
		return patch, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return patch, apperrors.NewValidationError("invalid request body", nil)
	}

	var err error
	if patch.FullName, err = optional[string](fields, "full_name"); err != nil {
		return patch, err
	}
	if patch.Income, err = optional[int64](fields, "income"); err != nil {
		return patch, err
	}
	if patch.AnotherLoans, err = optional[bool](fields, "another_loans"); err != nil {
		return patch, err
	}
	if patch.Sex, err = optional[domain.Sex](fields, "sex"); err != nil {
		return patch, err
	}

	birth, err := optional[string](fields, "birth_date")
	if err != nil {
		return patch, err
	}
	patch.BirthDate.Set = birth.Set
	if birth.Value != nil {
		date, err := time.Parse(dateLayout, *birth.Value)
		if err != nil {
			return patch, fieldError("birth_date", "must be a date in YYYY-MM-DD format")
		}
		patch.BirthDate.Value = &date
	}
	return patch, nil
}

func optional[T any](fields map[string]json.RawMessage, key string) (domain.OptionalField[T], error) {
	var field domain.OptionalField[T]
	raw, ok := fields[key]
	if !ok {
		return field, nil
	}
	field.Set = true
	if string(raw) == "null" {
		return field, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return field, fieldError(key, "has an invalid type")
	}
	field.Value = &value
	return field, nil
}

func validate(schema *gojsonschema.Schema, body []byte) error {
	if len(body) == 0 {
		return apperrors.NewValidationError("request body is required", nil)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewValidationError("request body is not valid JSON", nil)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return apperrors.NewValidationError("invalid request body", map[string]any{"errors": details})
}

func fieldError(field, message string) error {
	return apperrors.NewValidationError("invalid request body", map[string]any{
		"errors": []string{fmt.Sprintf("%s: %s", field, message)},
	})
}
