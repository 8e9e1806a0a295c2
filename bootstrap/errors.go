package bootstrap

import (
	"github.com/cockroachdb/errors"
)

// Every bootstrap failure is marked with exactly one of these. None of them
// are transient: the caller is expected to give up or retry from scratch
// with a different configuration.
var (
	ErrAdapterNotFound           = errors.New("no adapter satisfies the selection policy")
	ErrQueueFamilyNotFound       = errors.New("no queue family satisfies the required capabilities")
	ErrDeviceCreationFailed      = errors.New("logical device creation failed")
	ErrSurfaceBindingFailed      = errors.New("surface binding failed")
	ErrSwapchainCreationFailed   = errors.New("swapchain creation failed")
	ErrShaderModuleInvalid       = errors.New("shader module invalid")
	ErrPipelineCompilationFailed = errors.New("pipeline compilation failed")
	ErrFramebufferCreationFailed = errors.New("framebuffer creation failed")
	ErrValidationFailed          = errors.New("diagnostics requested abort")
)

// fail wraps err with msg and marks it with kind.
func fail(err error, kind error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), kind)
}

// PipelineError is returned when any pipeline of a batch fails to build. It
// carries the pipelines the driver did manage to create, which the caller
// must release with Release.
type PipelineError struct {
	Partial []Pipeline
	cause   error
	// owner holds the layout and render pass the partial pipelines were
	// built against; it is released after them.
	owner *RenderGraph
}

func (e *PipelineError) Error() string {
	return "create graphics pipelines: " + e.cause.Error()
}

func (e *PipelineError) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrPipelineCompilationFailed) match.
func (e *PipelineError) Is(target error) bool {
	return target == ErrPipelineCompilationFailed
}

// Release destroys every partially created pipeline, then the layout and
// render pass they referenced.
func (e *PipelineError) Release() {
	for i := len(e.Partial) - 1; i >= 0; i-- {
		if e.Partial[i] != nil {
			e.Partial[i].Destroy()
		}
	}
	e.Partial = nil

	if e.owner != nil {
		e.owner.Destroy()
		e.owner = nil
	}
}
