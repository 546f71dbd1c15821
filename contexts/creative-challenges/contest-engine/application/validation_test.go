package application

import (
	"errors"
	"strings"
	"testing"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Title       string `field:"title" validate:"required,max=200"`
	Description string `field:"description" validate:"max=5000"`
	Cover       string `field:"cover_image_url" validate:"omitempty,absurl"`
}

func TestValidateStructCountsCharactersNotBytes(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleInput{Title: strings.Repeat("é", 200)}))

	err := ValidateStruct(sampleInput{Title: strings.Repeat("é", 201)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "title must be at most 200 characters")
}

func TestValidateStructReportsFieldNames(t *testing.T) {
	err := ValidateStruct(sampleInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")

	err = ValidateStruct(sampleInput{Title: "ok", Cover: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cover_image_url must be an absolute url")
}

func TestValidateMediaURL(t *testing.T) {
	require.NoError(t, ValidateMediaURL("https://cdn.example.com/art/42.png"))
	for _, raw := range []string{"", "   ", "not-a-url", "/relative/path.png", "https://"} {
		err := ValidateMediaURL(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidMedia)
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	}
}
