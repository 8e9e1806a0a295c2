package bootstrap

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Object is any driver object the bootstrap creates and must later release.
type Object interface {
	Destroy()
}

type (
	ImageView      interface{ Object }
	RenderPass     interface{ Object }
	ShaderModule   interface{ Object }
	PipelineLayout interface{ Object }
	Pipeline       interface{ Object }
	Framebuffer    interface{ Object }
	Messenger      interface{ Object }
)

// Image is a presentable image owned by its swapchain. It is never destroyed
// directly.
type Image interface {
	// SwapchainIndex is the image's position in the chain.
	SwapchainIndex() int
}

// Queue is a command queue retrieved from a logical device.
type Queue interface {
	FamilyIndex() int
}

// Window is what the windowing collaborator hands to the bootstrap.
type Window interface {
	// InstanceExtensions lists the instance extensions the platform needs
	// to create a surface for this window.
	InstanceExtensions() []string
	// DrawableSize is the current size of the window in pixels.
	DrawableSize() core1_0.Extent2D
}

// Loader is the driver entry point, available before any instance exists.
type Loader interface {
	AvailableLayers() ([]string, error)
	AvailableExtensions() ([]string, error)
	CreateInstance(request InstanceRequest) (Instance, error)
}

// InstanceRequest describes the instance to create.
type InstanceRequest struct {
	ApplicationName string
	EngineName      string
	Version         [3]int

	Extensions []string
	Layers     []string

	// EnumeratePortability sets the portability enumeration flag.
	EnumeratePortability bool

	// Diagnostics, when set, is chained into instance creation so that
	// instance creation itself is observed.
	Diagnostics *DiagnosticsSink
}

// Instance is a created driver instance.
type Instance interface {
	Adapters() ([]Adapter, error)
	CreateSurface(window Window) (Surface, error)
	CreateMessenger(sink *DiagnosticsSink) (Messenger, error)
	CreateDevice(adapter Adapter, request DeviceRequest) (Device, error)
	Destroy()
}

// Adapter is a physical GPU. Adapters are owned by the instance and are only
// referenced here.
type Adapter interface {
	Name() string
	Class() core1_0.PhysicalDeviceType
	QueueFamilies() []*core1_0.QueueFamilyProperties
	Features() *core1_0.PhysicalDeviceFeatures
	Extensions() ([]string, error)
}

// Surface is the drawable target bound to one window.
type Surface interface {
	Capabilities(adapter Adapter) (*khr_surface.SurfaceCapabilities, error)
	Formats(adapter Adapter) ([]khr_surface.SurfaceFormat, error)
	PresentModes(adapter Adapter) ([]khr_surface.PresentMode, error)
	SupportsPresent(adapter Adapter, family int) (bool, error)
	Destroy()
}

// DeviceRequest describes the logical device to create.
type DeviceRequest struct {
	QueueFamilies []int
	Priority      float32
	Features      *core1_0.PhysicalDeviceFeatures
	Extensions    []string
}

// SwapchainRequest is the negotiated configuration plus what the driver
// needs beyond it.
type SwapchainRequest struct {
	Config       SwapchainConfig
	PreTransform khr_surface.SurfaceTransformFlags
}

// ShaderStage binds a shader module to a pipeline stage.
type ShaderStage struct {
	Stage  core1_0.ShaderStageFlags
	Module ShaderModule
	Entry  string
}

// PipelineDescription is a graphics pipeline in driver-neutral form. The
// fixed-function state uses the driver's own value types.
type PipelineDescription struct {
	Stages        []ShaderStage
	VertexInput   core1_0.PipelineVertexInputStateCreateInfo
	InputAssembly core1_0.PipelineInputAssemblyStateCreateInfo
	Viewport      core1_0.PipelineViewportStateCreateInfo
	Rasterization core1_0.PipelineRasterizationStateCreateInfo
	Multisample   core1_0.PipelineMultisampleStateCreateInfo
	ColorBlend    core1_0.PipelineColorBlendStateCreateInfo
	DynamicStates []core1_0.DynamicState

	Layout     PipelineLayout
	RenderPass RenderPass
	Subpass    int
}

// Device is a logical device. All objects it creates are its children.
type Device interface {
	Queue(family int) Queue
	CreateSwapchain(surface Surface, request SwapchainRequest) (Swapchain, error)
	CreateImageView(image Image, format core1_0.Format) (ImageView, error)
	CreateRenderPass(info core1_0.RenderPassCreateInfo) (RenderPass, error)
	CreateShaderModule(code []uint32) (ShaderModule, error)
	CreatePipelineLayout() (PipelineLayout, error)
	// CreateGraphicsPipelines returns whatever pipelines were created even
	// when it fails.
	CreateGraphicsPipelines(descriptions ...PipelineDescription) ([]Pipeline, error)
	CreateFramebuffer(renderPass RenderPass, attachments []ImageView, extent core1_0.Extent2D) (Framebuffer, error)
	WaitIdle() error
	Destroy()
}

// Swapchain is a created presentable image chain.
type Swapchain interface {
	Images() ([]Image, error)
	Destroy()
}
