package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromUnwrapsChain(t *testing.T) {
	inner := BadRequest("invalid_request", errors.New("bad body"))
	got := From(fmt.Errorf("handler: %w", inner))
	assert.Same(t, inner, got)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "bad body", got.Error())

	plain := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, "internal_error", plain.Code)
}

func TestErrorMessageFallbacks(t *testing.T) {
	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "meal_not_found", NotFound("meal_not_found").Error())
	assert.Equal(t, "api error (418)", New(418, "", nil).Error())
}
