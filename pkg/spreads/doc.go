// Package spreads is the stage engine of the spreads book-scanning workflow.
//
// A scan moves through four stages: capture, download, process and output.
// Each stage is served by an ordered list of hooks. A hook is any value
// satisfying [Hook]; its Process method is called once per stage with the
// stage directory. Hooks are registered explicitly, there is no runtime
// discovery:
//
//	wf, err := spreads.New(
//	    spreads.WithLogger(logger),
//	    autocrop.WithAutocrop(autocrop.DefaultConfig()),
//	    spreads.WithHook(spreads.StageOutput, myAssembler),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := wf.Run(ctx, "/scans/my-book")
//
// # Failure isolation
//
// Every hook runs behind a recover. A hook returning an error fails its
// stage, but the remaining hooks of that stage still run; later stages are
// skipped. A hook returning a [StagePartialFailure] (some pages failed,
// the rest were written) produces a warning, and the workflow's
// [PartialFailurePolicy] decides whether the run continues.
//
// # Cancellation
//
// Cancelling the context passed to Run, or calling [Workflow.Cancel], stops
// the run before the next hook. The hook that is running sees the cancelled
// context; the autocrop hook reacts by not starting further pages while
// letting pages in flight finish.
//
// # Events
//
// Implement [EventHandler] and pass it with [WithEventHandler] to observe
// state changes and per-hook results. Handlers are called synchronously.
package spreads
