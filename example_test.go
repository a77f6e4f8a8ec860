package calltrace_test

import (
	"fmt"

	"github.com/roach88/calltrace"
)

func Example() {
	rec := calltrace.NewLocal()
	defer rec.Close()

	calltrace.Record("open")
	calltrace.Record("read")
	calltrace.Record("close")

	rec.Verify([]string{"open", "read", "close"})
	fmt.Println("ok")
	// Output: ok
}

func Example_parallelBranches() {
	rec := calltrace.NewLocal()
	defer rec.Close()

	calltrace.Record("worker-a start")
	calltrace.Record("worker-b start")
	calltrace.Record("worker-b done")
	calltrace.Record("worker-a done")

	// Par accepts any interleaving that keeps each branch in order.
	rec.Verify(calltrace.Par(
		[]string{"worker-a start", "worker-a done"},
		[]string{"worker-b start", "worker-b done"},
	))
	fmt.Println("ok")
	// Output: ok
}

func ExampleRecorder_Check() {
	rec := calltrace.NewLocal()
	defer rec.Close()

	calltrace.Record("setup")

	// Check returns the mismatch instead of panicking.
	err := rec.Check([]string{"setup", "teardown"})
	fmt.Println(err != nil)
	// Output: true
}

func ExampleRecord_formatted() {
	rec := calltrace.NewLocal()
	defer rec.Close()

	for i := 0; i < 3; i++ {
		calltrace.Record("step-%d", i)
	}

	rec.Verify([]string{"step-0", "step-1", "step-2"})
	fmt.Println("ok")
	// Output: ok
}
