package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var deviceExtensions = []string{khr_swapchain.ExtensionName}

// QueuePlan is the outcome of matching resolved queue families against a
// surface.
type QueuePlan struct {
	// Families is the full resolved list, in enumeration order.
	Families []int

	GraphicsFamily int
	// PresentFamily equals GraphicsFamily when no dedicated presentation
	// family was found.
	PresentFamily int
}

// Dedicated reports whether presentation uses its own queue family.
func (p QueuePlan) Dedicated() bool {
	return p.PresentFamily != p.GraphicsFamily
}

// Unique returns the distinct families that need a queue.
func (p QueuePlan) Unique() []int {
	if p.Dedicated() {
		return []int{p.GraphicsFamily, p.PresentFamily}
	}
	return []int{p.GraphicsFamily}
}

// PlanQueues designates families[0] as the graphics family and the first
// later, distinct family that can present to surface as the presentation
// family. Without one, the graphics family must itself be able to present.
func PlanQueues(surface Surface, adapter Adapter, families []int) (QueuePlan, error) {
	if len(families) == 0 {
		return QueuePlan{}, errors.Mark(errors.Newf("adapter %q has no usable queue family", adapter.Name()), ErrQueueFamilyNotFound)
	}

	plan := QueuePlan{
		Families:       families,
		GraphicsFamily: families[0],
		PresentFamily:  families[0],
	}

	for _, family := range families[1:] {
		if family == plan.GraphicsFamily {
			continue
		}

		supported, err := surface.SupportsPresent(adapter, family)
		if err != nil {
			return QueuePlan{}, fail(err, ErrSurfaceBindingFailed, "query present support")
		}
		if supported {
			plan.PresentFamily = family
			return plan, nil
		}
	}

	supported, err := surface.SupportsPresent(adapter, plan.GraphicsFamily)
	if err != nil {
		return QueuePlan{}, fail(err, ErrSurfaceBindingFailed, "query present support")
	}
	if !supported {
		return QueuePlan{}, errors.Mark(
			errors.Newf("no queue family of adapter %q can present to the surface", adapter.Name()),
			ErrQueueFamilyNotFound)
	}

	return plan, nil
}

// LogicalContext is the logical device plus its queues. Every later GPU
// object is a child of Device.
type LogicalContext struct {
	Device  Device
	Adapter Adapter
	Queues  QueuePlan

	GraphicsQueue Queue
	// PresentQueue is nil when presentation shares the graphics queue.
	PresentQueue Queue
}

// PresentationQueue returns the queue presentation should be submitted to.
func (c *LogicalContext) PresentationQueue() Queue {
	if c.PresentQueue != nil {
		return c.PresentQueue
	}
	return c.GraphicsQueue
}

// CreateContext creates the logical device with one queue per distinct
// family in plan, every feature the adapter reports, the swapchain extension
// and, where the adapter exposes it, the portability subset.
func CreateContext(instance Instance, adapter Adapter, plan QueuePlan) (*LogicalContext, error) {
	extensionNames := append([]string(nil), deviceExtensions...)

	available, err := adapter.Extensions()
	if err != nil {
		return nil, fail(err, ErrDeviceCreationFailed, "enumerate device extensions")
	}
	for _, name := range deviceExtensions {
		if !contains(available, name) {
			return nil, errors.Mark(
				errors.Newf("adapter %q does not support %s", adapter.Name(), name),
				ErrDeviceCreationFailed)
		}
	}
	if contains(available, khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	device, err := instance.CreateDevice(adapter, DeviceRequest{
		QueueFamilies: plan.Unique(),
		Priority:      1.0,
		Features:      adapter.Features(),
		Extensions:    extensionNames,
	})
	if err != nil {
		return nil, fail(err, ErrDeviceCreationFailed, "create device")
	}

	ctx := &LogicalContext{
		Device:        device,
		Adapter:       adapter,
		Queues:        plan,
		GraphicsQueue: device.Queue(plan.GraphicsFamily),
	}
	if plan.Dedicated() {
		ctx.PresentQueue = device.Queue(plan.PresentFamily)
	}

	return ctx, nil
}

func contains(list []string, name string) bool {
	for _, candidate := range list {
		if candidate == name {
			return true
		}
	}
	return false
}
