package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

func TestRegistration(t *testing.T) {
	v := MustNew()

	reg, err := v.Registration([]byte(`{"email":"user@example.com","password":"pw"}`))
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", reg.Email)
	assert.Equal(t, "pw", reg.Password)

	invalid := []string{
		``,
		`not json`,
		`{"email":"user@example.com"}`,
		`{"email":"not-an-email","password":"pw"}`,
		`{"email":"user@example.com","password":""}`,
		`[]`,
	}
	for _, body := range invalid {
		_, err := v.Registration([]byte(body))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "body %q", body)
	}
}

func TestProfilePatchDistinguishesAbsentAndNull(t *testing.T) {
	v := MustNew()

	patch, err := v.ProfilePatch([]byte(`{"full_name":"Ada Lovelace","income":null,"birth_date":"1990-04-24","sex":"female"}`))
	require.NoError(t, err)

	assert.True(t, patch.FullName.Set)
	require.NotNil(t, patch.FullName.Value)
	assert.Equal(t, "Ada Lovelace", *patch.FullName.Value)

	assert.True(t, patch.Income.Set)
	assert.Nil(t, patch.Income.Value)

	assert.False(t, patch.AnotherLoans.Set)

	require.NotNil(t, patch.BirthDate.Value)
	assert.Equal(t, time.Date(1990, 4, 24, 0, 0, 0, 0, time.UTC), *patch.BirthDate.Value)

	require.NotNil(t, patch.Sex.Value)
	assert.Equal(t, "female", string(*patch.Sex.Value))
}

func TestProfilePatchRejectsInvalidFields(t *testing.T) {
	v := MustNew()

	tests := map[string]string{
		"short name":      `{"full_name":"Al"}`,
		"zero income":     `{"income":0}`,
		"negative income": `{"income":-5}`,
		"fraction income": `{"income":10.5}`,
		"loans as string": `{"another_loans":"yes"}`,
		"bad date":        `{"birth_date":"24.04.1990"}`,
		"unknown sex":     `{"sex":"other"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.ProfilePatch([]byte(body))
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		})
	}
}

func TestEmptyPatchIsNoop(t *testing.T) {
	patch, err := MustNew().ProfilePatch([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, patch.FullName.Set)
	assert.False(t, patch.Income.Set)
	assert.False(t, patch.BirthDate.Set)
}
