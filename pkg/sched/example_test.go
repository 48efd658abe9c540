package sched

import (
	"fmt"

	"github.com/EggFine/neosched/pkg/host/hosttest"
)

func Example() {
	loop := hosttest.NewLoop()
	s, err := New(loop)
	if err != nil {
		panic(err)
	}

	s.Submit(func() { fmt.Println("hello from the loop") })
	s.SubmitAfter(func() { fmt.Println("three ticks later") }, 3)

	loop.Advance(3)

	// Output:
	// hello from the loop
	// three ticks later
}

func Example_repeating() {
	loop := hosttest.NewLoop()
	s, err := New(loop)
	if err != nil {
		panic(err)
	}

	var fires int
	handle, _ := s.SubmitRepeatingAsync(func(c Cancellable) {
		fires++
		fmt.Println("firing", fires)
		if fires == 2 {
			c.Cancel()
		}
	}, 1, 2)

	loop.Advance(10)
	fmt.Println("cancelled:", handle.IsCancelled())

	// Output:
	// firing 1
	// firing 2
	// cancelled: true
}
