package bootstrap

import (
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Config controls a bootstrap run.
type Config struct {
	ApplicationName string
	EngineName      string
	Version         [3]int

	// Validation enables the requested layers (when available) and the
	// diagnostics messenger.
	Validation       bool
	ValidationLayers []string
	Diagnostics      DiagnosticsConfig

	// QueueCapabilities is the mask every candidate queue family must
	// contain.
	QueueCapabilities core1_0.QueueFlags
	AdapterPolicy     AdapterPolicy

	Logger logrus.FieldLogger
}

// DefaultConfig enables validation, requires a graphics queue and only
// accepts integrated GPUs.
func DefaultConfig() Config {
	return Config{
		ApplicationName: "Triangle",
		EngineName:      "No Engine",
		Version:         [3]int{1, 0, 0},

		Validation:       true,
		ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
		Diagnostics:      DefaultDiagnostics(),

		QueueCapabilities: core1_0.QueueGraphics,
		AdapterPolicy:     IntegratedOnly(),

		Logger: logrus.StandardLogger(),
	}
}
