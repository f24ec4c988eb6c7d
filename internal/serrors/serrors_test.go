package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spigell/job-digest/internal/serrors"
)

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrTransport,
		serrors.ErrMalformedRecord,
		serrors.ErrConfig,
		serrors.ErrPersistence,
		serrors.ErrPublish,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("connection reset")

	require.Equal(t, "max_results must be > 0", serrors.With(serrors.ErrConfig, "max_results must be > 0").Error())
	require.Equal(t, "fetch lever:acme: connection reset", serrors.Wrap(serrors.ErrTransport, base, "fetch %s", "lever:acme").Error())
	require.Equal(t, "unknown error", (&serrors.Error{}).Error())
}

func TestIsAndAs(t *testing.T) {
	cause := &statusError{code: 503}
	err := fmt.Errorf("collect: %w", serrors.Wrap(serrors.ErrTransport, cause, "fetch greenhouse:acme"))

	require.ErrorIs(t, err, serrors.ErrTransport)
	require.NotErrorIs(t, err, serrors.ErrConfig)

	var se *statusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 503, se.code)

	require.Equal(t, serrors.ErrTransport, serrors.KindOf(err))
	require.Nil(t, serrors.KindOf(errors.New("plain")))
}
