// Command inspect is a small cobra CLI wrapping reactivity.DumpGraph,
// useful for eyeballing the shape of a dependency graph while building
// or debugging a reactive program.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/reactivity"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a reactivity dependency graph",
	}

	root.AddCommand(newGraphCmd())
	root.AddCommand(newDemoCmd())

	return root
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the current Dep/Subscriber graph as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(reactivity.DumpGraph())
			return nil
		},
	}
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Build a small sample graph and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	width := reactivity.NewRef(4)
	height := reactivity.NewRef(3)

	area := reactivity.NewComputed(func(prev int) int {
		return width.Value() * height.Value()
	})

	perimeter := reactivity.NewComputed(func(prev int) int {
		return 2 * (width.Value() + height.Value())
	})

	reactivity.NewEffect(func() {
		_ = area.Value()
		_ = perimeter.Value()
	})

	fmt.Println(reactivity.DumpGraph())
	return nil
}
