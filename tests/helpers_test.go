package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// detectedMarker prefixes every raised issue in the friendly output.
const detectedMarker = "!! "

// expectFlagRaised returns a comparator verifying that the given flag was raised.
func expectFlagRaised(flag string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, detectedMarker+flag) {
			return
		}

		testing.Log(fmt.Sprintf("expected flag %q to be raised but it was not found in output:\n%s", flag, stdout))
		testing.Fail()
	}
}

// expectClean returns a comparator verifying that no flag was raised.
func expectClean() test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, detectedMarker) || !strings.Contains(stdout, "flags: none") {
			testing.Log(fmt.Sprintf("expected a clean result, got:\n%s", stdout))
			testing.Fail()
		}
	}
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}
