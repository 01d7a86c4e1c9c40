package genarena_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/codec"
)

// Example demonstrates that a removed value's handle stays dead after its
// slot is reused.
func Example() {
	a := genarena.New[string]()

	alice := a.Insert("alice")
	bob := a.Insert("bob")

	a.Remove(alice)
	carol := a.Insert("carol") // reuses alice's slot

	_, ok := a.Get(alice)
	fmt.Println(alice, ok)

	v, _ := a.Get(carol)
	fmt.Println(carol, v)

	v, _ = a.Get(bob)
	fmt.Println(bob, v)
	// Output:
	// 0v0 false
	// 0v1 carol
	// 1v0 bob
}

// Example_serialization round-trips an arena, free list included.
func Example_serialization() {
	a := genarena.New[int]()
	a.Insert(10)
	stale := a.Insert(20)
	a.Insert(30)
	a.Remove(stale)

	data, err := a.Encode(codec.JSON{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))

	b, err := genarena.Decode[int](codec.JSON{}, data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(b.Contains(stale), b.Insert(40))
	// Output:
	// {"values":[{"tag":"occupied","generation":0,"value":10},{"tag":"vacant","generation":0,"next_free":null},{"tag":"occupied","generation":0,"value":30}],"next":1}
	// false 1v1
}

// Example_iteration walks the live values in slot order.
func Example_iteration() {
	a := genarena.New[string]()
	for _, s := range []string{"x", "y", "z"} {
		a.Insert(s)
	}
	a.RemoveIndex(1)

	for h, v := range a.All() {
		fmt.Println(h, *v)
	}
	fmt.Println(a.Stats())
	// Output:
	// 0v0 x
	// 2v0 z
	// {2 3 1 0}
}
