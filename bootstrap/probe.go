package bootstrap

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// AdapterPolicy decides which adapters are acceptable and, optionally, how
// to rank the acceptable ones.
type AdapterPolicy struct {
	// Classes lists the accepted device classes. Empty accepts any class.
	Classes []core1_0.PhysicalDeviceType
	// Score ranks suitable adapters; the highest wins and ties keep
	// enumeration order. Nil means the first suitable adapter wins.
	Score func(adapter Adapter) int
}

// IntegratedOnly accepts integrated GPUs only and picks the first one found.
func IntegratedOnly() AdapterPolicy {
	return AdapterPolicy{
		Classes: []core1_0.PhysicalDeviceType{core1_0.PhysicalDeviceTypeIntegratedGPU},
	}
}

// PreferDiscrete accepts integrated and discrete GPUs and ranks discrete
// ones first.
func PreferDiscrete() AdapterPolicy {
	return AdapterPolicy{
		Classes: []core1_0.PhysicalDeviceType{
			core1_0.PhysicalDeviceTypeDiscreteGPU,
			core1_0.PhysicalDeviceTypeIntegratedGPU,
		},
		Score: func(adapter Adapter) int {
			if adapter.Class() == core1_0.PhysicalDeviceTypeDiscreteGPU {
				return 1
			}
			return 0
		},
	}
}

func (p AdapterPolicy) accepts(class core1_0.PhysicalDeviceType) bool {
	if len(p.Classes) == 0 {
		return true
	}
	for _, accepted := range p.Classes {
		if accepted == class {
			return true
		}
	}
	return false
}

// FindQueueFamilies returns, in enumeration order, the indices of the
// adapter's queue families whose flags contain every bit of mask.
func FindQueueFamilies(adapter Adapter, mask core1_0.QueueFlags) []int {
	var indices []int
	for queueFamilyIdx, queueFamily := range adapter.QueueFamilies() {
		if queueFamily.QueueFlags&mask == mask {
			indices = append(indices, queueFamilyIdx)
		}
	}
	return indices
}

// SelectAdapter picks the adapter to build on. An adapter is suitable when
// the policy accepts its class and at least one of its queue families
// satisfies mask.
func SelectAdapter(adapters []Adapter, mask core1_0.QueueFlags, policy AdapterPolicy) (Adapter, error) {
	var chosen Adapter
	bestScore := 0
	var rejected []string

	for idx, adapter := range adapters {
		if !policy.accepts(adapter.Class()) {
			rejected = append(rejected, fmt.Sprintf("%d %q: class %v not accepted", idx, adapter.Name(), adapter.Class()))
			continue
		}
		if len(FindQueueFamilies(adapter, mask)) == 0 {
			rejected = append(rejected, fmt.Sprintf("%d %q: no queue family with %v", idx, adapter.Name(), mask))
			continue
		}

		if policy.Score == nil {
			return adapter, nil
		}

		score := policy.Score(adapter)
		if chosen == nil || score > bestScore {
			chosen = adapter
			bestScore = score
		}
	}

	if chosen == nil {
		err := errors.Newf("none of %d adapters is suitable", len(adapters))
		if len(rejected) > 0 {
			err = errors.WithDetail(err, strings.Join(rejected, "\n"))
		}
		return nil, errors.Mark(err, ErrAdapterNotFound)
	}
	return chosen, nil
}
