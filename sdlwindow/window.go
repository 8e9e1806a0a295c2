// Package sdlwindow provides the SDL2 window the bootstrap draws into.
package sdlwindow

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

// Window is a resizable SDL2 window created for Vulkan rendering.
type Window struct {
	window *sdl.Window
}

// New creates a window. sdl.Init must already have been called on the
// locked main thread.
func New(title string, width, height int) (*Window, error) {
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &Window{window: window}, nil
}

// InstanceExtensions lists the instance extensions SDL needs for a surface.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// DrawableSize is the size of the window's drawable area in pixels, which
// differs from its size in screen coordinates on high-DPI displays.
func (w *Window) DrawableSize() core1_0.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return core1_0.Extent2D{Width: int(width), Height: int(height)}
}

func (w *Window) CreateSurface(instance core1_0.Instance, extension khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	return vkng_sdl2.CreateSurface(instance, extension, w.window)
}

// Minimized reports whether the window is currently minimised.
func (w *Window) Minimized() bool {
	return w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0
}

func (w *Window) Destroy() error {
	return w.window.Destroy()
}
