package command

// Layer wraps a command with one cross-cutting behavior, producing a new
// command with the same contract. The wrapped command must remain the
// final step of whatever the layer returns.
type Layer[O any] func(next Command[O]) Command[O]

// Chain applies layers to a command so that the first layer in the list
// becomes the outermost wrapper and therefore observes execution first.
// The base command always runs last, and results flow back out in
// reverse order.
//
// Naive nesting would invert this: wrapping A then B puts B's code
// outside A's, so B would run first even though the caller listed A
// first. Chain reverses the wrapping so attachment order equals run
// order, which is what lets a reader predict composed behavior by
// reading the argument list top to bottom.
//
// Example:
//
//	cmd := command.Chain(base,
//	    first,  // runs first
//	    second, // runs second
//	    third,  // runs third, then base
//	)
func Chain[O any](cmd Command[O], layers ...Layer[O]) Command[O] {
	// Reverse iteration makes the first listed layer the outermost wrapper.
	for i := range len(layers) {
		cmd = layers[len(layers)-1-i](cmd)
	}
	return cmd
}
