// memprobe exercises the arckit allocators on the current platform and
// prints the allocation geometry they produce: header size and alignment,
// payload addresses, and the zero-copy behavior of the vec/slice
// conversions. Useful for sanity-checking a port before relying on the
// library.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joshuapare/arckit/mem/alloc"
	"github.com/joshuapare/arckit/mem/arc"
	"github.com/joshuapare/arckit/mem/vec"
)

func main() {
	n := flag.Int("n", 1024, "elements to push through the vec conversion probe")
	useOS := flag.Bool("os", false, "probe the OS page allocator instead of the Go-heap allocator")
	flag.Parse()

	var a alloc.Allocator
	if *useOS {
		a = alloc.NewOSAllocator()
		fmt.Println("allocator: OS (anonymous mappings)")
	} else {
		a = alloc.NewGoAllocator()
		fmt.Println("allocator: Go heap slabs")
	}

	fmt.Printf("header: %d bytes, align %d\n", alloc.HeaderSize, alloc.HeaderAlign)

	if err := probe(a, *n); err != nil {
		fmt.Fprintf(os.Stderr, "memprobe: %v\n", err)
		os.Exit(1)
	}
}

func probe(a alloc.Allocator, n int) error {
	v := vec.NewIn[uint64](a)
	for i := 0; i < n; i++ {
		if err := v.Push(uint64(i)); err != nil {
			return fmt.Errorf("push %d: %w", i, err)
		}
	}
	before := &v.Slice()[0]
	capBefore := v.Cap()

	s := arc.FromVec(&v)
	after := &s.Slice()[0]
	fmt.Printf("vec->slice: %d elements, cap %d, payload %p -> %p (moved=%v)\n",
		s.Len(), capBefore, before, after, before != after)

	w := s.Downgrade()
	s.Drop()
	if _, ok := w.Upgrade(); ok {
		return fmt.Errorf("upgrade succeeded after the last strong handle dropped")
	}
	fmt.Println("weak upgrade after final drop: correctly refused")
	w.Drop()

	single := arc.NewIn(uint64(42), a)
	c := single.Clone()
	fmt.Printf("single value: strong=%d weak=%d payload=%p\n",
		single.StrongCount(), single.WeakCount(), single.Get())
	c.Drop()
	single.Drop()
	return nil
}
