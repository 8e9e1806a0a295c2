package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// SwapchainConfig is the resolved swapchain configuration.
type SwapchainConfig struct {
	Format      core1_0.Format
	ColorSpace  khr_surface.ColorSpace
	Extent      core1_0.Extent2D
	ImageCount  int
	PresentMode khr_surface.PresentMode
	Usage       core1_0.ImageUsageFlags

	SharingMode core1_0.SharingMode
	// QueueFamilies is only set for concurrent sharing.
	QueueFamilies []int
}

// SurfaceFormat returns the (format, color space) pair of the config.
func (c SwapchainConfig) SurfaceFormat() khr_surface.SurfaceFormat {
	return khr_surface.SurfaceFormat{Format: c.Format, ColorSpace: c.ColorSpace}
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB in the sRGB nonlinear color
// space and otherwise takes the first reported pair.
func ChooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func ChoosePresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseExtent clamps the window's pixel size into the surface's extent
// bounds. The surface's current extent is ignored.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, window core1_0.Extent2D) core1_0.Extent2D {
	return core1_0.Extent2D{
		Width:  clamp(window.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(window.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ChooseImageCount asks for one image more than the minimum, capped by a
// nonzero maximum. A zero maximum means unbounded.
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// ChooseSharing uses exclusive ownership when one family both renders and
// presents, and concurrent sharing across both families otherwise.
func ChooseSharing(plan QueuePlan) (core1_0.SharingMode, []int) {
	if !plan.Dedicated() {
		return core1_0.SharingModeExclusive, nil
	}
	return core1_0.SharingModeConcurrent, []int{plan.GraphicsFamily, plan.PresentFamily}
}

// Negotiate resolves the full swapchain configuration.
func Negotiate(desc SurfaceDescriptor, window core1_0.Extent2D, plan QueuePlan) SwapchainConfig {
	surfaceFormat := ChooseSurfaceFormat(desc.Formats)
	config := SwapchainConfig{
		Format:      surfaceFormat.Format,
		ColorSpace:  surfaceFormat.ColorSpace,
		PresentMode: ChoosePresentMode(desc.PresentModes),
		Usage:       core1_0.ImageUsageColorAttachment,
	}
	return Renegotiate(desc, window, plan, config)
}

// Renegotiate re-resolves extent, image count and sharing against a fresh
// surface read while keeping the format and present mode of previous.
func Renegotiate(desc SurfaceDescriptor, window core1_0.Extent2D, plan QueuePlan, previous SwapchainConfig) SwapchainConfig {
	config := previous
	config.Extent = ChooseExtent(desc.Capabilities, window)
	config.ImageCount = ChooseImageCount(desc.Capabilities)
	config.SharingMode, config.QueueFamilies = ChooseSharing(plan)
	return config
}

// ImageChain is a swapchain with its images and one view per image. The
// views live exactly as long as the swapchain.
type ImageChain struct {
	Swapchain Swapchain
	Images    []Image
	Views     []ImageView
	Config    SwapchainConfig
}

// BuildChain creates the swapchain described by config and a color view for
// every image the driver actually returned.
func BuildChain(ctx *LogicalContext, surface Surface, desc SurfaceDescriptor, config SwapchainConfig) (*ImageChain, error) {
	swapchain, err := ctx.Device.CreateSwapchain(surface, SwapchainRequest{
		Config:       config,
		PreTransform: desc.Capabilities.CurrentTransform,
	})
	if err != nil {
		return nil, fail(err, ErrSwapchainCreationFailed, "create swapchain")
	}

	chain := &ImageChain{
		Swapchain: swapchain,
		Config:    config,
	}

	chain.Images, err = swapchain.Images()
	if err != nil {
		chain.Destroy()
		return nil, fail(err, ErrSwapchainCreationFailed, "get swapchain images")
	}

	for idx, image := range chain.Images {
		view, err := ctx.Device.CreateImageView(image, config.Format)
		if err != nil {
			chain.Destroy()
			return nil, errors.Mark(errors.Wrapf(err, "create view for swapchain image %d", idx), ErrSwapchainCreationFailed)
		}
		chain.Views = append(chain.Views, view)
	}

	return chain, nil
}

// Destroy releases the views in reverse order, then the swapchain.
func (c *ImageChain) Destroy() {
	for i := len(c.Views) - 1; i >= 0; i-- {
		c.Views[i].Destroy()
	}
	c.Views = nil
	c.Images = nil

	if c.Swapchain != nil {
		c.Swapchain.Destroy()
		c.Swapchain = nil
	}
}
