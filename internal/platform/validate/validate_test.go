package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
)

type person struct {
	Name       string `json:"name" validate:"notblank,max=255"`
	NationalID string `json:"national_id" validate:"nationalid"`
	Since      string `json:"since" validate:"omitempty,date"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
}

func TestStructOK(t *testing.T) {
	assert.NoError(t, Struct(person{Name: "Ana", NationalID: "12345678901", Since: "2024-01-31"}))
}

func TestStructCollectsFieldMessages(t *testing.T) {
	err := Struct(person{Name: "  ", NationalID: "123.456.789-01", Since: "31/01/2024", Quantity: -1})
	require.Error(t, err)

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeInvalidArgument, ae.Code)
	assert.Equal(t, "must not be blank", ae.Fields["name"])
	assert.Equal(t, "must be exactly 11 digits", ae.Fields["national_id"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", ae.Fields["since"])
	assert.Contains(t, ae.Fields, "quantity")
}

func TestNationalID(t *testing.T) {
	assert.True(t, NationalID("00000000000"))
	assert.False(t, NationalID("1234567890"))
	assert.False(t, NationalID("123456789012"))
	assert.False(t, NationalID("1234567890a"))
	assert.False(t, NationalID("١٢٣٤٥٦٧٨٩٠١"))
}
