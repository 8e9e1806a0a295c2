// Package vulkan implements the bootstrap driver ports on top of vkngwrapper.
package vulkan

import (
	"sort"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/triangle/bootstrap"
)

// Loader is the global driver, available before any instance exists.
type Loader struct {
	driver core1_0.GlobalDriver
}

// NewLoader loads the driver from a vkGetInstanceProcAddr pointer, such as
// the one returned by sdl.VulkanGetVkGetInstanceProcAddr.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	driver, err := core.CreateDriverFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan driver")
	}
	return &Loader{driver: driver}, nil
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableLayers lists the instance layers the loader can enable.
func (l *Loader) AvailableLayers() ([]string, error) {
	layers, _, err := l.driver.AvailableLayers()
	if err != nil {
		return nil, err
	}
	return keys(layers), nil
}

// AvailableExtensions lists the instance extensions the loader supports.
func (l *Loader) AvailableExtensions() ([]string, error) {
	extensions, _, err := l.driver.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return keys(extensions), nil
}

// CreateInstance creates the instance, chaining the diagnostics messenger
// into creation when one is requested.
func (l *Loader) CreateInstance(request bootstrap.InstanceRequest) (bootstrap.Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       request.ApplicationName,
		ApplicationVersion:    common.CreateVersion(request.Version[0], request.Version[1], request.Version[2]),
		EngineName:            request.EngineName,
		EngineVersion:         common.CreateVersion(request.Version[0], request.Version[1], request.Version[2]),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: request.Extensions,
		EnabledLayerNames:     request.Layers,
	}

	if request.EnumeratePortability {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if request.Diagnostics != nil {
		instanceOptions.Next = messengerOptions(request.Diagnostics)
	}

	instanceDriver, _, err := l.driver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, err
	}

	return &Instance{
		driver:           instanceDriver,
		surfaceExtension: khr_surface.CreateExtensionDriverFromCoreDriver(instanceDriver),
	}, nil
}
