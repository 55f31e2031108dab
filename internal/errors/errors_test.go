package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_MessageAndCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Wrap(cause, CategoryExternal, SeverityError, "generation call failed")

	require.Contains(t, err.Error(), "generation call failed")
	require.ErrorIs(t, err, cause)
}

func TestGetCategory(t *testing.T) {
	require.Equal(t, CategoryTimeout, GetCategory(New(CategoryTimeout, SeverityError, "slow")))
	require.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))

	wrapped := fmt.Errorf("context: %w", New(CategoryUpstream, SeverityError, "bad payload"))
	require.Equal(t, CategoryUpstream, GetCategory(wrapped))
}

func TestIsCategory(t *testing.T) {
	err := ValidationError("topic must not be empty")
	require.True(t, IsCategory(err, CategoryValidation))
	require.False(t, IsCategory(err, CategoryTimeout))
	require.False(t, IsCategory(nil, CategoryValidation))
	require.False(t, IsCategory(stderrors.New("plain"), CategoryValidation))
}

func TestStatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	cases := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{ValidationError("bad"), 400},
		{New(CategoryConfig, SeverityFatal, "bad cfg"), 400},
		{NotFoundError("gone"), 404},
		{New(CategoryUpstream, SeverityError, "bad data"), 422},
		{New(CategoryExternal, SeverityError, "down"), 502},
		{New(CategoryTransport, SeverityError, "broken pipe"), 502},
		{New(CategoryTimeout, SeverityError, "slow"), 504},
		{New(CategoryInternal, SeverityError, "bug"), 500},
		{fmt.Errorf("unclassified"), 500},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, a.StatusCodeFor(tc.err), "status for %v", tc.err)
	}
}
