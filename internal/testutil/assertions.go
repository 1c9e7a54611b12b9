package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireReport returns the report for output, failing the test if the run
// failed or produced no such report.
func RequireReport(t *testing.T, result *HarnessResult, output string) Report {
	t.Helper()
	require.NoError(t, result.Err, "run failed, logs:\n%s", result.LogOutput)
	for _, r := range result.Reports {
		if r.Output == output {
			return r
		}
	}
	require.FailNow(t, fmt.Sprintf("no report for output %q", output))
	return Report{}
}

// AssertConnected checks that the network has a connection from
// "handle.name" to "handle.name".
func AssertConnected(t *testing.T, n *Network, from, to Parameter) {
	t.Helper()
	require.NotNil(t, n, "report has no network")
	for _, c := range n.Connections {
		if c.Source == from && c.Destination == to {
			return
		}
	}
	require.FailNow(t, fmt.Sprintf("expected connection %s.%s -> %s.%s, have %v", from.Shader, from.Name, to.Shader, to.Name, n.Connections))
}

// AssertLogged checks that the run's logs contain every substring.
func AssertLogged(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		require.Contains(t, result.LogOutput, s, "expected log output not found")
	}
}
