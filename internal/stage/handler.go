package stage

import "context"

// Handler describes the contract the pipeline needs from each stage of the
// stitching sequence.
type Handler interface {
	Name() string
	Execute(context.Context, *State) error
}
