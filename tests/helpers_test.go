package tests_test

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

const cleanSource = `package sample

// Sum adds the values.
func Sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}

	return total
}
`

const shellSource = `package sample

import "os/exec"

func Run(script string) error {
	return exec.Command("sh", "-c", script).Run()
}
`

//nolint:gochecknoglobals // fixture data, effectively const
var longLineSource = "package sample\n\n// " + strings.Repeat("x", 140) + "\nfunc Noop() {}\n"

const brokenSource = `package sample

func Broken( {
`

const rulePack = `rules:
  - id: no-println
    category: quality
    severity: warning
    message: "avoid {match}"
    pattern: 'println\('
`

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

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectSummary returns a comparator decoding a json result and checking one summary value.
func expectSummary(key string, value float64) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		var decoded struct {
			Summary map[string]any `json:"summary"`
		}

		if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
			testing.Log(fmt.Sprintf("output is not json: %v\n%s", err, stdout))
			testing.Fail()

			return
		}

		if got, ok := decoded.Summary[key].(float64); !ok || got != value {
			testing.Log(fmt.Sprintf("expected summary %s = %v, got %v", key, value, decoded.Summary[key]))
			testing.Fail()
		}
	}
}
