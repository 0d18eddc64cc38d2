package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleInput struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"omitempty,email"`
}

func TestValidate_PassesCleanInput(t *testing.T) {
	assert.Nil(t, Validate(sampleInput{Name: "Lagos Mediation Center"}))
}

func TestValidate_ReportsRuleWithParam(t *testing.T) {
	fields := Validate(sampleInput{Name: "A", Email: "not-an-email"})

	assert.Equal(t, "min=2", fields["Name"])
	assert.Equal(t, "email", fields["Email"])
}

func TestValidate_RequiredField(t *testing.T) {
	fields := Validate(sampleInput{})

	assert.Equal(t, "required", fields["Name"])
	assert.NotContains(t, fields, "Email")
}
