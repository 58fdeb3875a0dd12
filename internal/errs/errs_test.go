package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOverload_Boundary(t *testing.T) {
	assert.NoError(t, CheckOverload(20000, MaxDisplayFeatures))

	err := CheckOverload(20001, MaxDisplayFeatures)
	require.Error(t, err)

	var overload *OverloadError
	require.True(t, errors.As(err, &overload))
	assert.Equal(t, 20001, overload.Count)
	assert.Equal(t, 20000, overload.Max)
	assert.True(t, errors.Is(err, ErrOverload))
}

func TestOverloadError_Wrapped(t *testing.T) {
	err := fmt.Errorf("fetching alerts: %w", CheckOverload(5, 1))
	assert.ErrorIs(t, err, ErrOverload)
	assert.Contains(t, err.Error(), "5 alerts found")
}
