// Command example is a minimal, runnable demonstration of the
// reactivity package: two Refs, a Computed derived from them, and an
// Effect that reads the Computed.
package main

import (
	"fmt"

	"github.com/coregx/reactivity"
)

func main() {
	firstName := reactivity.NewRef("Ada")
	lastName := reactivity.NewRef("Lovelace")

	fullName := reactivity.NewComputed(func(prev string) string {
		return firstName.Value() + " " + lastName.Value()
	})

	greetCount := 0
	reactivity.NewEffect(func() {
		greetCount++
		fmt.Printf("Hello, %s! (run #%d)\n", fullName.Value(), greetCount)
	})

	reactivity.StartBatch()
	firstName.Set("Grace")
	lastName.Set("Hopper")
	if err := reactivity.EndBatch(); err != nil {
		fmt.Println("flush error:", err)
	}

	fmt.Println(reactivity.DumpGraph())
}
