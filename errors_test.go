package irisql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/irisql"
)

func TestErrorHelpers(t *testing.T) {
	t.Run("IsUnsupportedConstructErr", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", irisql.ErrUnsupportedConstruct)
		assert.True(t, irisql.IsUnsupportedConstructErr(err))
		assert.False(t, irisql.IsUnsupportedConstructErr(errors.New("other error")))
	})

	t.Run("IsUnsupportedTimezoneErr", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", irisql.ErrUnsupportedTimezone)
		assert.True(t, irisql.IsUnsupportedTimezoneErr(err))
		assert.False(t, irisql.IsUnsupportedTimezoneErr(errors.New("other error")))
	})

	t.Run("IsRenderFallbackErr", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", irisql.ErrRenderFallback)
		assert.True(t, irisql.IsRenderFallbackErr(err))
		assert.False(t, irisql.IsRenderFallbackErr(irisql.ErrInvalidIdentifier))
	})

	t.Run("IsImproperlyConfiguredErr", func(t *testing.T) {
		err := fmt.Errorf("database: %w", irisql.ErrImproperlyConfigured)
		assert.True(t, irisql.IsImproperlyConfiguredErr(err))
	})
}

func TestIdentifierError(t *testing.T) {
	err := error(&irisql.IdentifierError{Name: "a.b", Reason: "table names cannot contain '.'"})

	assert.True(t, irisql.IsInvalidIdentifierErr(err))
	assert.True(t, irisql.IsInvalidIdentifierErr(fmt.Errorf("create table: %w", err)))
	assert.Contains(t, err.Error(), `"a.b"`)

	var idErr *irisql.IdentifierError
	assert.True(t, errors.As(err, &idErr))
	assert.Equal(t, "a.b", idErr.Name)
}

func TestUnsupported(t *testing.T) {
	err := irisql.Unsupported("DISTINCT ON %s", "fields")

	assert.True(t, irisql.IsUnsupportedConstructErr(err))
	assert.Equal(t, "irisql: unsupported construct: DISTINCT ON fields", err.Error())
}
