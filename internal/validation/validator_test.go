package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Title  string `validate:"notblank,max=10"`
	Kind   string `validate:"required,oneof=owned want"`
	Rating int    `validate:"gte=0,lte=5"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	errs := ValidateStruct(testStruct{Title: "Dune", Kind: "owned", Rating: 5})
	assert.Empty(t, errs)
}

func TestValidateStruct_FieldMessages(t *testing.T) {
	errs := ValidateStruct(testStruct{Title: "   ", Kind: "borrowed", Rating: 9})
	require.Len(t, errs, 3)

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "Title is required", byField["title"])
	assert.Equal(t, "Kind must be one of: owned want", byField["kind"])
	assert.Equal(t, "Rating must be at most 5", byField["rating"])
}

func TestValidateStruct_MaxLength(t *testing.T) {
	errs := ValidateStruct(testStruct{Title: "far too long a title", Kind: "want"})
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
	assert.Contains(t, errs[0].Message, "at most 10")
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(testStruct{Title: "ok", Kind: "want"}))

	err := Check(testStruct{})
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Fields)
	assert.Contains(t, err.Error(), "validation failed")
}
