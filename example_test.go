package sparsevec_test

import (
	"fmt"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/plane"
)

func Example() {
	v := sparsevec.New[uint32](sparsevec.WithNullSupport())
	v.PushBack(7)
	v.Set(3, 255)

	x, _ := v.At(3)
	null, _ := v.IsNull(1)
	fmt.Println(v.Size(), x, null)
	// Output: 4 255 true
}

func ExampleVector_Decode() {
	v := sparsevec.New[uint16]()
	if err := v.ImportBack([]uint16{1, 2, 3}); err != nil {
		panic(err)
	}

	buf := make([]uint16, 5)
	n := v.Decode(buf, 0, true)
	fmt.Println(n, buf)
	// Output: 3 [1 2 3 0 0]
}

func ExampleVector_Optimize() {
	v := sparsevec.New[uint64]()
	v.Set(0, 1<<40)
	v.Set(0, 1)

	// plane 40 is still allocated but empty
	st := v.Optimize(plane.OptCompress)
	fmt.Println(v.Plane(40) == nil, st.MemoryUsed > 0)
	// Output: true true
}
