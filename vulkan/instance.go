package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap"
)

// SurfaceSource is implemented by windows that can create a surface for
// themselves.
type SurfaceSource interface {
	CreateSurface(instance core1_0.Instance, extension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

// Instance wraps an instance driver.
type Instance struct {
	driver           core1_0.CoreInstanceDriver
	surfaceExtension khr_surface.ExtensionDriver
}

// Adapters enumerates the physical devices with their properties and queue
// families.
func (i *Instance) Adapters() ([]bootstrap.Adapter, error) {
	physicalDevices, _, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	adapters := make([]bootstrap.Adapter, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		properties, err := i.driver.GetPhysicalDeviceProperties(device)
		if err != nil {
			return nil, err
		}

		adapters = append(adapters, &Adapter{
			driver:        i.driver,
			device:        device,
			properties:    properties,
			queueFamilies: i.driver.GetPhysicalDeviceQueueFamilyProperties(device),
		})
	}

	return adapters, nil
}

// CreateSurface binds a surface to window, which must implement
// SurfaceSource.
func (i *Instance) CreateSurface(window bootstrap.Window) (bootstrap.Surface, error) {
	source, ok := window.(SurfaceSource)
	if !ok {
		return nil, errors.Newf("window %T cannot create a surface", window)
	}

	surface, err := source.CreateSurface(i.driver.Instance(), i.surfaceExtension)
	if err != nil {
		return nil, err
	}

	return &Surface{extension: i.surfaceExtension, surface: surface}, nil
}

// CreateMessenger installs a standalone debug messenger feeding sink.
func (i *Instance) CreateMessenger(sink *bootstrap.DiagnosticsSink) (bootstrap.Messenger, error) {
	extension := ext_debug_utils.CreateExtensionDriverFromCoreDriver(i.driver)
	debugMessenger, _, err := extension.CreateDebugUtilsMessenger(nil, messengerOptions(sink))
	if err != nil {
		return nil, err
	}

	return &messenger{extension: extension, messenger: debugMessenger}, nil
}

// CreateDevice creates a logical device with a single queue in each
// requested family.
func (i *Instance) CreateDevice(adapter bootstrap.Adapter, request bootstrap.DeviceRequest) (bootstrap.Device, error) {
	physicalDevice, err := physicalDeviceOf(adapter)
	if err != nil {
		return nil, err
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueFamily := range request.QueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{request.Priority},
		})
	}

	deviceDriver, _, err := i.driver.CreateDevice(physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       request.Features,
		EnabledExtensionNames: request.Extensions,
	})
	if err != nil {
		return nil, err
	}

	return &Device{
		driver:             deviceDriver,
		swapchainExtension: khr_swapchain.CreateExtensionDriverFromCoreDriver(deviceDriver),
	}, nil
}

// Destroy destroys the instance.
func (i *Instance) Destroy() {
	i.driver.DestroyInstance(nil)
}

// Adapter is a physical device.
type Adapter struct {
	driver        core1_0.CoreInstanceDriver
	device        core1_0.PhysicalDevice
	properties    *core1_0.PhysicalDeviceProperties
	queueFamilies []*core1_0.QueueFamilyProperties
}

func physicalDeviceOf(adapter bootstrap.Adapter) (core1_0.PhysicalDevice, error) {
	a, ok := adapter.(*Adapter)
	if !ok {
		return core1_0.PhysicalDevice{}, errors.Newf("adapter %T was not enumerated by this driver", adapter)
	}
	return a.device, nil
}

func (a *Adapter) Name() string { return a.properties.DriverName }

func (a *Adapter) Class() core1_0.PhysicalDeviceType { return a.properties.DriverType }

func (a *Adapter) QueueFamilies() []*core1_0.QueueFamilyProperties { return a.queueFamilies }

func (a *Adapter) Features() *core1_0.PhysicalDeviceFeatures {
	return a.driver.GetPhysicalDeviceFeatures(a.device)
}

func (a *Adapter) Extensions() ([]string, error) {
	extensions, _, err := a.driver.EnumerateDeviceExtensionProperties(a.device)
	if err != nil {
		return nil, err
	}
	return keys(extensions), nil
}

// Surface is a window surface.
type Surface struct {
	extension khr_surface.ExtensionDriver
	surface   khr_surface.Surface
}

func (s *Surface) Capabilities(adapter bootstrap.Adapter) (*khr_surface.SurfaceCapabilities, error) {
	physicalDevice, err := physicalDeviceOf(adapter)
	if err != nil {
		return nil, err
	}
	capabilities, _, err := s.extension.GetPhysicalDeviceSurfaceCapabilities(s.surface, physicalDevice)
	return capabilities, err
}

func (s *Surface) Formats(adapter bootstrap.Adapter) ([]khr_surface.SurfaceFormat, error) {
	physicalDevice, err := physicalDeviceOf(adapter)
	if err != nil {
		return nil, err
	}
	formats, _, err := s.extension.GetPhysicalDeviceSurfaceFormats(s.surface, physicalDevice)
	return formats, err
}

func (s *Surface) PresentModes(adapter bootstrap.Adapter) ([]khr_surface.PresentMode, error) {
	physicalDevice, err := physicalDeviceOf(adapter)
	if err != nil {
		return nil, err
	}
	presentModes, _, err := s.extension.GetPhysicalDeviceSurfacePresentModes(s.surface, physicalDevice)
	return presentModes, err
}

func (s *Surface) SupportsPresent(adapter bootstrap.Adapter, family int) (bool, error) {
	physicalDevice, err := physicalDeviceOf(adapter)
	if err != nil {
		return false, err
	}
	supported, _, err := s.extension.GetPhysicalDeviceSurfaceSupport(s.surface, physicalDevice, family)
	return supported, err
}

func (s *Surface) Destroy() {
	s.extension.DestroySurface(s.surface, nil)
}
