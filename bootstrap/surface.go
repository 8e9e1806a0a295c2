package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// SurfaceDescriptor is one read of everything a surface reports for an
// adapter. It is only valid for the swapchain build that follows it.
type SurfaceDescriptor struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// BindSurface creates the surface for window.
func BindSurface(instance Instance, window Window) (Surface, error) {
	surface, err := instance.CreateSurface(window)
	if err != nil {
		return nil, fail(err, ErrSurfaceBindingFailed, "create surface")
	}
	return surface, nil
}

// QuerySurface reads capabilities, formats and present modes of surface as
// seen by adapter.
func QuerySurface(surface Surface, adapter Adapter) (SurfaceDescriptor, error) {
	var desc SurfaceDescriptor
	var err error

	desc.Capabilities, err = surface.Capabilities(adapter)
	if err != nil {
		return desc, fail(err, ErrSurfaceBindingFailed, "query surface capabilities")
	}

	desc.Formats, err = surface.Formats(adapter)
	if err != nil {
		return desc, fail(err, ErrSurfaceBindingFailed, "query surface formats")
	}

	desc.PresentModes, err = surface.PresentModes(adapter)
	if err != nil {
		return desc, fail(err, ErrSurfaceBindingFailed, "query surface present modes")
	}

	if len(desc.Formats) == 0 {
		return desc, errors.Mark(errors.New("surface reports no formats"), ErrSurfaceBindingFailed)
	}

	return desc, nil
}
