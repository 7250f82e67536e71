package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertItems checks that the run succeeded and produced exactly want, one
// JSON document per item.
func AssertItems(t *testing.T, result *HarnessResult, want ...string) {
	t.Helper()
	require.NoError(t, result.Err, "run failed; logs:\n%s", result.LogOutput)
	if len(want) == 0 {
		require.Empty(t, result.Items())
		return
	}
	require.Equal(t, want, result.Items())
}

// AssertLogged checks that the log output contains every substring.
func AssertLogged(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		require.True(t,
			strings.Contains(result.LogOutput, s),
			"expected %q in log output:\n%s", s, result.LogOutput,
		)
	}
}
