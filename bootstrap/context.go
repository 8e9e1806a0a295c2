// Package bootstrap brings up a rendering context on top of a graphics
// driver: it selects an adapter, creates the logical device and its queues,
// negotiates a swapchain with the window's surface and builds the render
// pass, pipeline and framebuffers needed to draw a single triangle.
//
// Bootstrap is strictly sequential. Every object it creates is recorded and
// Close releases them in exactly the reverse order of creation.
package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"

	"github.com/vkngwrapper/triangle/bootstrap/shaders"
)

const (
	labelInstance     = "instance"
	labelMessenger    = "debug messenger"
	labelSurface      = "surface"
	labelDevice       = "device"
	labelImageChain   = "image chain"
	labelRenderGraph  = "render graph"
	labelFramebuffers = "framebuffers"
)

// Context owns everything a bootstrap run created.
type Context struct {
	ID uuid.UUID

	Instance     Instance
	Surface      Surface
	Adapter      Adapter
	Logical      *LogicalContext
	Chain        *ImageChain
	Graph        *RenderGraph
	Framebuffers FramebufferSet

	config     Config
	negotiated SwapchainConfig
	logger     logrus.FieldLogger
	sink       *DiagnosticsSink
	ledger     ledger
	closed     bool
}

// Bootstrap runs the whole bring-up sequence against window. Any failure
// releases what was created so far and is returned as a single error marked
// with one of the Err* sentinels.
func Bootstrap(loader Loader, window Window, config Config) (*Context, error) {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	id := uuid.New()
	logger := config.Logger.WithField("session", id.String())
	ctx := &Context{
		ID:     id,
		config: config,
		logger: logger,
		ledger: ledger{logger: logger},
	}
	if config.Validation {
		ctx.sink = NewDiagnosticsSink(config.Diagnostics, logger.WithField("source", "driver"))
	}

	err := ctx.run(loader, window)
	if err != nil {
		ctx.ledger.releaseAll()
		ctx.closed = true
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"adapter":      ctx.Adapter.Name(),
		"format":       ctx.Chain.Config.Format,
		"present_mode": ctx.Chain.Config.PresentMode,
		"extent":       ctx.Chain.Config.Extent,
		"images":       len(ctx.Chain.Images),
	}).Info("bootstrap complete")

	return ctx, nil
}

func (c *Context) run(loader Loader, window Window) error {
	var code shaders.Set
	err := c.stage("shaders", func() error {
		var err error
		code, err = shaders.Load()
		if err != nil {
			return errors.Mark(err, ErrShaderModuleInvalid)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = c.stage("instance", func() error { return c.createInstance(loader, window) })
	if err != nil {
		return err
	}

	if c.sink != nil {
		err = c.stage("messenger", func() error {
			messenger, err := c.Instance.CreateMessenger(c.sink)
			if err != nil {
				return errors.Wrap(err, "create debug messenger")
			}
			c.ledger.push(labelMessenger, messenger)
			return nil
		})
		if err != nil {
			return err
		}
	}

	err = c.stage("surface", func() error {
		surface, err := BindSurface(c.Instance, window)
		if err != nil {
			return err
		}
		c.Surface = surface
		c.ledger.push(labelSurface, surface)
		return nil
	})
	if err != nil {
		return err
	}

	var plan QueuePlan
	err = c.stage("adapter", func() error {
		adapters, err := c.Instance.Adapters()
		if err != nil {
			return fail(err, ErrAdapterNotFound, "enumerate adapters")
		}

		c.Adapter, err = SelectAdapter(adapters, c.config.QueueCapabilities, c.config.AdapterPolicy)
		if err != nil {
			return err
		}

		plan, err = PlanQueues(c.Surface, c.Adapter, FindQueueFamilies(c.Adapter, c.config.QueueCapabilities))
		return err
	})
	if err != nil {
		return err
	}

	err = c.stage("device", func() error {
		logical, err := CreateContext(c.Instance, c.Adapter, plan)
		if err != nil {
			return err
		}
		c.Logical = logical
		c.ledger.push(labelDevice, logical.Device)
		return nil
	})
	if err != nil {
		return err
	}

	err = c.stage("swapchain", func() error {
		desc, err := QuerySurface(c.Surface, c.Adapter)
		if err != nil {
			return err
		}
		return c.buildChain(desc, Negotiate(desc, window.DrawableSize(), plan))
	})
	if err != nil {
		return err
	}

	err = c.stage("render graph", func() error {
		graph, err := BuildRenderGraph(c.Logical.Device, c.Chain.Config.Format, c.Chain.Config.Extent, code)
		if err != nil {
			var pipelineErr *PipelineError
			if errors.As(err, &pipelineErr) {
				pipelineErr.Release()
			}
			return err
		}
		c.Graph = graph
		c.ledger.push(labelRenderGraph, graph)
		return nil
	})
	if err != nil {
		return err
	}

	return c.stage("framebuffers", c.buildFramebuffers)
}

// stage runs fn, times it and turns any diagnostic that requested an abort
// into a failure of the stage.
func (c *Context) stage(name string, fn func() error) error {
	start := hrtime.Now()
	err := fn()
	if err == nil && c.sink != nil {
		err = c.sink.Err()
	}

	entry := c.logger.WithFields(logrus.Fields{
		"stage":   name,
		"elapsed": hrtime.Since(start),
	})
	if err != nil {
		entry.WithError(err).Error("stage failed")
		return errors.Wrapf(err, "bootstrap %s", name)
	}

	entry.Info("stage complete")
	return nil
}

func (c *Context) createInstance(loader Loader, window Window) error {
	available, err := loader.AvailableExtensions()
	if err != nil {
		return fail(err, ErrDeviceCreationFailed, "enumerate instance extensions")
	}

	request := InstanceRequest{
		ApplicationName: c.config.ApplicationName,
		EngineName:      c.config.EngineName,
		Version:         c.config.Version,
	}

	for _, ext := range window.InstanceExtensions() {
		if !contains(available, ext) {
			return errors.Mark(errors.Newf("window requires missing instance extension %s", ext), ErrSurfaceBindingFailed)
		}
		request.Extensions = append(request.Extensions, ext)
	}

	if contains(available, khr_portability_enumeration.ExtensionName) {
		request.Extensions = append(request.Extensions, khr_portability_enumeration.ExtensionName)
		request.EnumeratePortability = true
	}

	if c.sink != nil {
		if contains(available, ext_debug_utils.ExtensionName) {
			request.Extensions = append(request.Extensions, ext_debug_utils.ExtensionName)
			request.Diagnostics = c.sink
		} else {
			c.logger.Warnf("instance extension %s unavailable, diagnostics disabled", ext_debug_utils.ExtensionName)
			c.sink = nil
		}

		layers, err := loader.AvailableLayers()
		if err != nil {
			return fail(err, ErrDeviceCreationFailed, "enumerate instance layers")
		}
		request.Layers = availableLayers(c.config.ValidationLayers, layers, c.logger)
	}

	instance, err := loader.CreateInstance(request)
	if err != nil {
		return fail(err, ErrDeviceCreationFailed, "create instance")
	}

	c.Instance = instance
	c.ledger.push(labelInstance, instance)
	return nil
}

// availableLayers keeps the requested layers whose exact name is enumerated.
func availableLayers(requested, enumerated []string, logger logrus.FieldLogger) []string {
	var enabled []string
	for _, layer := range requested {
		if !contains(enumerated, layer) {
			logger.WithField("layer", layer).Warn("layer not available, skipping")
			continue
		}
		enabled = append(enabled, layer)
	}
	return enabled
}

func (c *Context) buildChain(desc SurfaceDescriptor, config SwapchainConfig) error {
	chain, err := BuildChain(c.Logical, c.Surface, desc, config)
	if err != nil {
		return err
	}
	c.Chain = chain
	c.negotiated = chain.Config
	c.ledger.push(labelImageChain, chain)
	return nil
}

func (c *Context) buildFramebuffers() error {
	framebuffers, err := BuildFramebuffers(c.Logical.Device, c.Graph.RenderPass, c.Chain.Views, c.Chain.Config.Extent)
	if err != nil {
		return err
	}
	c.Framebuffers = framebuffers
	c.ledger.push(labelFramebuffers, framebuffers)
	return nil
}

// Rebuild recreates the swapchain, its views and the framebuffers for a new
// window size, keeping the negotiated format and present mode. The render
// pass and pipeline stay valid because viewport and scissor are dynamic. A
// zero-area extent, such as a minimised window, is ignored.
func (c *Context) Rebuild(extent core1_0.Extent2D) error {
	if c.closed {
		return errors.New("rebuild on closed context")
	}
	if extent.Width == 0 || extent.Height == 0 {
		return nil
	}

	if err := c.Logical.Device.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait for device idle")
	}

	if framebuffers := c.ledger.take(labelFramebuffers); framebuffers != nil {
		framebuffers.Destroy()
	}
	c.Framebuffers = nil

	if chain := c.ledger.take(labelImageChain); chain != nil {
		chain.Destroy()
	}
	c.Chain = nil

	err := c.stage("rebuild swapchain", func() error {
		desc, err := QuerySurface(c.Surface, c.Adapter)
		if err != nil {
			return err
		}
		return c.buildChain(desc, Renegotiate(desc, extent, c.Logical.Queues, c.negotiated))
	})
	if err != nil {
		return err
	}

	return c.stage("rebuild framebuffers", c.buildFramebuffers)
}

// Created lists what the context currently holds, in creation order.
func (c *Context) Created() []string {
	return c.ledger.labels()
}

// Close waits for the device to go idle and releases everything in reverse
// creation order. It is safe to call more than once.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if c.Logical != nil {
		if err := c.Logical.Device.WaitIdle(); err != nil {
			c.logger.WithError(err).Warn("device did not go idle before teardown")
		}
	}

	c.ledger.releaseAll()
	c.Framebuffers = nil
	c.Graph = nil
	c.Chain = nil
	c.Logical = nil
	c.Surface = nil
	c.Instance = nil
	c.logger.Info("context closed")
}
