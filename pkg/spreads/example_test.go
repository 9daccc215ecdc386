package spreads_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/spreads/pkg/spreads"
)

// ExampleNew shows how to register a hook and run the process stage.
func ExampleNew() {
	rotate := spreads.ProcessFunc("rotate", func(ctx context.Context, path string) error {
		// rotate every page under path/raw
		return nil
	})

	w, err := spreads.New(spreads.WithHook(spreads.StageProcess, rotate))
	if err != nil {
		fmt.Printf("failed to create workflow: %v\n", err)
		return
	}

	sr, err := w.RunStage(context.Background(), spreads.StageProcess, "/path/to/book")
	if err != nil {
		fmt.Printf("stage failed: %v\n", err)
		return
	}
	for _, h := range sr.Hooks {
		fmt.Printf("%s: %s\n", h.Hook, h.Status)
	}

	// Output: rotate: succeeded
}
