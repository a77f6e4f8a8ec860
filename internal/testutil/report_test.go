package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableReport_RewritesLocations(t *testing.T) {
	in := "mismatch call\n/home/ci/work/recorder_test.go:123\nactual : 0\n"
	out := StableReport(in)
	assert.Equal(t, "mismatch call\ncalltrace_test.go:10\nactual : 0\n", out)
}

func TestStableReport_RewritesGoroutines(t *testing.T) {
	in := "# open\nfoo.go:7\ngoroutine: 42\n"
	out := StableReport(in)
	assert.Contains(t, out, "goroutine: 1\n")
	assert.NotContains(t, out, "goroutine: 42")
}

func TestStableReport_LeavesEntryLinesAlone(t *testing.T) {
	in := "actual calls :\n* 0\n  (end)\n"
	assert.Equal(t, in, StableReport(in))
}
