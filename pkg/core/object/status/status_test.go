package apistatus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code Code
	}{
		{nil, CodeOK},
		{ErrObjectNotFound, CodeObjectNotFound},
		{fmt.Errorf("wrapped: %w", ErrObjectAlreadyRemoved), CodeAlreadyRemoved},
		{ErrObjectOutOfRange, CodeOutOfRange},
		{errors.New("any"), CodeInternal},
	} {
		c := ErrorToCode(tc.err)
		require.Equal(t, tc.code, c)

		if tc.err == nil {
			require.NoError(t, ErrorFromCode(c, ""))
			continue
		}

		restored := ErrorFromCode(c, tc.err.Error())
		require.EqualError(t, restored, tc.err.Error())

		if c != CodeInternal {
			require.Equal(t, c, ErrorToCode(restored))
		}
	}
}
