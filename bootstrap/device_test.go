package bootstrap_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap"
)

func TestPlanQueues(t *testing.T) {
	adapter := gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU)

	tests := []struct {
		name     string
		families []int
		present  map[int]bool
		graphics int
		want     int
	}{
		{"single family", []int{0}, map[int]bool{0: true}, 0, 0},
		{"dedicated present family", []int{0, 2}, map[int]bool{0: true, 2: true}, 0, 2},
		{"later family cannot present", []int{1, 3}, map[int]bool{1: true}, 1, 1},
		{"first presenting later family wins", []int{0, 1, 2}, map[int]bool{2: true, 1: true}, 0, 1},
		{"graphics cannot present", []int{0, 4}, map[int]bool{4: true}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := &fakeSurface{present: tt.present}
			plan, err := bootstrap.PlanQueues(surface, adapter, tt.families)
			if err != nil {
				t.Fatalf("PlanQueues() error = %v", err)
			}
			if plan.GraphicsFamily != tt.graphics || plan.PresentFamily != tt.want {
				t.Errorf("PlanQueues() = graphics %d present %d, want %d %d",
					plan.GraphicsFamily, plan.PresentFamily, tt.graphics, tt.want)
			}
			if plan.Dedicated() != (tt.graphics != tt.want) {
				t.Errorf("Dedicated() = %v", plan.Dedicated())
			}
		})
	}
}

func TestPlanQueuesNotFound(t *testing.T) {
	adapter := gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU)

	_, err := bootstrap.PlanQueues(&fakeSurface{}, adapter, nil)
	if !errors.Is(err, bootstrap.ErrQueueFamilyNotFound) {
		t.Errorf("no families: error = %v, want ErrQueueFamilyNotFound", err)
	}

	_, err = bootstrap.PlanQueues(&fakeSurface{present: map[int]bool{}}, adapter, []int{0, 1})
	if !errors.Is(err, bootstrap.ErrQueueFamilyNotFound) {
		t.Errorf("nothing presents: error = %v, want ErrQueueFamilyNotFound", err)
	}
}

func TestCreateContext(t *testing.T) {
	r := newRig()
	r.instance.fakeObject = r.h.object("instance")
	adapter := gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU, core1_0.QueueGraphics, core1_0.QueueTransfer)
	adapter.features.SamplerAnisotropy = true

	t.Run("shared family", func(t *testing.T) {
		ctx, err := bootstrap.CreateContext(r.instance, adapter, bootstrap.QueuePlan{Families: []int{1}, GraphicsFamily: 1, PresentFamily: 1})
		if err != nil {
			t.Fatalf("CreateContext() error = %v", err)
		}

		request := r.instance.deviceRequest
		if len(request.QueueFamilies) != 1 || request.QueueFamilies[0] != 1 {
			t.Errorf("queue families = %v, want [1]", request.QueueFamilies)
		}
		if request.Priority != 1.0 {
			t.Errorf("priority = %v, want 1.0", request.Priority)
		}
		if request.Features == nil || !request.Features.SamplerAnisotropy {
			t.Errorf("features not taken from adapter: %+v", request.Features)
		}
		if len(request.Extensions) != 1 || request.Extensions[0] != khr_swapchain.ExtensionName {
			t.Errorf("extensions = %v, want [%s]", request.Extensions, khr_swapchain.ExtensionName)
		}

		if ctx.GraphicsQueue.FamilyIndex() != 1 {
			t.Errorf("graphics queue family = %d, want 1", ctx.GraphicsQueue.FamilyIndex())
		}
		if ctx.PresentQueue != nil {
			t.Errorf("present queue = %v, want nil for a shared family", ctx.PresentQueue)
		}
		if ctx.PresentationQueue() != ctx.GraphicsQueue {
			t.Errorf("presentation should use the graphics queue")
		}
		ctx.Device.Destroy()
	})

	t.Run("dedicated family", func(t *testing.T) {
		adapter.extensions = append(adapter.extensions, khr_portability_subset.ExtensionName)

		ctx, err := bootstrap.CreateContext(r.instance, adapter, bootstrap.QueuePlan{Families: []int{0, 1}, GraphicsFamily: 0, PresentFamily: 1})
		if err != nil {
			t.Fatalf("CreateContext() error = %v", err)
		}

		request := r.instance.deviceRequest
		if len(request.QueueFamilies) != 2 || request.QueueFamilies[0] != 0 || request.QueueFamilies[1] != 1 {
			t.Errorf("queue families = %v, want [0 1]", request.QueueFamilies)
		}
		if len(request.Extensions) != 2 || request.Extensions[1] != khr_portability_subset.ExtensionName {
			t.Errorf("extensions = %v, want portability subset enabled", request.Extensions)
		}
		if ctx.PresentQueue == nil || ctx.PresentQueue.FamilyIndex() != 1 {
			t.Errorf("present queue = %v, want family 1", ctx.PresentQueue)
		}
		ctx.Device.Destroy()
	})
}

func TestCreateContextFailures(t *testing.T) {
	plan := bootstrap.QueuePlan{Families: []int{0}}

	t.Run("missing swapchain extension", func(t *testing.T) {
		r := newRig()
		adapter := gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU, core1_0.QueueGraphics)
		adapter.extensions = nil

		_, err := bootstrap.CreateContext(r.instance, adapter, plan)
		if !errors.Is(err, bootstrap.ErrDeviceCreationFailed) {
			t.Errorf("error = %v, want ErrDeviceCreationFailed", err)
		}
	})

	t.Run("driver refuses", func(t *testing.T) {
		r := newRig()
		r.device.createErr = errors.New("out of device memory")
		adapter := gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU, core1_0.QueueGraphics)

		_, err := bootstrap.CreateContext(r.instance, adapter, plan)
		if !errors.Is(err, bootstrap.ErrDeviceCreationFailed) {
			t.Errorf("error = %v, want ErrDeviceCreationFailed", err)
		}
	})
}
