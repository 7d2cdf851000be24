package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMovieRequest struct {
	Title string  `json:"title" validate:"required,max=255"`
	Type  string  `json:"type" validate:"omitempty,oneof=movie series"`
	Year  int     `json:"year" validate:"omitempty,gte=1888,lte=2100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := testMovieRequest{Title: "Spirited Away", Type: "movie", Year: 2001}

		assert.NoError(t, ValidateStruct(&s))
	})

	t.Run("missing required field uses json name", func(t *testing.T) {
		s := testMovieRequest{Year: 2001}

		err := ValidateStruct(&s)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "title is required", fields["title"])
	})

	t.Run("oneof violation", func(t *testing.T) {
		s := testMovieRequest{Title: "x", Type: "documentary"}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Equal(t, "type must be one of: movie series", fields["type"])
	})

	t.Run("range violation", func(t *testing.T) {
		s := testMovieRequest{Title: "x", Year: 1700}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Contains(t, fields, "year")
	})

	t.Run("invalid email", func(t *testing.T) {
		bad := "not-an-email"
		s := testMovieRequest{Title: "x", Email: &bad}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Equal(t, "email must be a valid email", fields["email"])
	})
}

func TestGetValidationFields_NonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
}

func TestParseUUID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid UUID", "550e8400-e29b-41d4-a716-446655440000", false},
		{"wrong format", "not-a-uuid", true},
		{"empty string", "", true},
		{"missing parts", "550e8400-e29b-41d4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseUUID(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}
