package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/xjoin"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("hosts", "facts.fqdn", "invalid field", cause)

		assert.Contains(t, err.Error(), "xjoin: schema error")
		assert.Contains(t, err.Error(), "schema hosts")
		assert.Contains(t, err.Error(), "field facts.fqdn")
		assert.Contains(t, err.Error(), "invalid field")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with schema only", func(t *testing.T) {
		err := &SchemaError{Schema: "hosts"}
		assert.Contains(t, err.Error(), "schema hosts")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Unwrap reaches validation error", func(t *testing.T) {
		err := NewSchemaError("hosts", "id", "", xjoin.NewMissingXJoinTypeError("id"))
		assert.True(t, xjoin.IsMissingXJoinType(err))
		assert.True(t, errors.Is(err, xjoin.ErrMissingXJoinType))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
	})

	t.Run("IsSchemaError helper", func(t *testing.T) {
		assert.True(t, IsSchemaError(NewSchemaError("hosts", "", "test", nil)))
		assert.False(t, IsSchemaError(errors.New("other")))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "must be positive")
		assert.Contains(t, err.Error(), "xjoin: config error")
		assert.Contains(t, err.Error(), "Workers")
		assert.Contains(t, err.Error(), "-1")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Package", nil, "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		assert.True(t, errors.Is(NewConfigError("Target", nil, "missing"), ErrMissingConfig))
		assert.True(t, IsConfigError(NewConfigError("Target", nil, "missing")))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewGenerationError("descriptors", "hosts_descriptors.go", "write", cause)
	assert.Contains(t, err.Error(), "in phase descriptors")
	assert.Contains(t, err.Error(), "(file: hosts_descriptors.go)")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, IsGenerationError(err))
}
