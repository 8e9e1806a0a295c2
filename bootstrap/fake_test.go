package bootstrap_test

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap"
)

// harness tracks every fake driver object. Destroying an object while one
// of its children is alive, or destroying it twice, is a violation.
type harness struct {
	objects    []*fakeObject
	events     []string
	violations []string
}

type fakeObject struct {
	h         *harness
	label     string
	parents   []*fakeObject
	destroyed bool
}

func (h *harness) object(label string, parents ...*fakeObject) *fakeObject {
	o := &fakeObject{h: h, label: label, parents: parents}
	h.objects = append(h.objects, o)
	h.events = append(h.events, "create "+label)
	return o
}

func (o *fakeObject) Destroy() {
	if o.destroyed {
		o.h.violations = append(o.h.violations, o.label+" destroyed twice")
		return
	}
	for _, other := range o.h.objects {
		if other.destroyed {
			continue
		}
		for _, parent := range other.parents {
			if parent == o {
				o.h.violations = append(o.h.violations, fmt.Sprintf("%s destroyed while %s alive", o.label, other.label))
			}
		}
	}
	o.destroyed = true
	o.h.events = append(o.h.events, "destroy "+o.label)
}

func (h *harness) alive() []string {
	var labels []string
	for _, o := range h.objects {
		if !o.destroyed {
			labels = append(labels, o.label)
		}
	}
	return labels
}

// filter returns the events with the given prefix, prefix stripped.
func (h *harness) filter(prefix string) []string {
	var out []string
	for _, event := range h.events {
		if strings.HasPrefix(event, prefix) {
			out = append(out, strings.TrimPrefix(event, prefix))
		}
	}
	return out
}

type fakeWindow struct {
	extensions []string
	size       core1_0.Extent2D
}

func (w *fakeWindow) InstanceExtensions() []string    { return w.extensions }
func (w *fakeWindow) DrawableSize() core1_0.Extent2D { return w.size }

type fakeLoader struct {
	h          *harness
	layers     []string
	extensions []string
	createErr  error
	// emit is delivered to the chained diagnostics sink during creation.
	emit *bootstrap.Message

	instance *fakeInstance
	request  bootstrap.InstanceRequest
}

func (l *fakeLoader) AvailableLayers() ([]string, error)     { return l.layers, nil }
func (l *fakeLoader) AvailableExtensions() ([]string, error) { return l.extensions, nil }

func (l *fakeLoader) CreateInstance(request bootstrap.InstanceRequest) (bootstrap.Instance, error) {
	l.request = request
	if request.Diagnostics != nil && l.emit != nil {
		request.Diagnostics.Handle(*l.emit)
	}
	if l.createErr != nil {
		return nil, l.createErr
	}
	l.instance.fakeObject = l.h.object("instance")
	return l.instance, nil
}

type fakeInstance struct {
	*fakeObject
	h        *harness
	adapters []bootstrap.Adapter
	surface  *fakeSurface
	device   *fakeDevice

	deviceRequest bootstrap.DeviceRequest
}

func (i *fakeInstance) Adapters() ([]bootstrap.Adapter, error) { return i.adapters, nil }

func (i *fakeInstance) CreateSurface(window bootstrap.Window) (bootstrap.Surface, error) {
	i.surface.fakeObject = i.h.object("surface", i.fakeObject)
	return i.surface, nil
}

func (i *fakeInstance) CreateMessenger(sink *bootstrap.DiagnosticsSink) (bootstrap.Messenger, error) {
	return i.h.object("messenger", i.fakeObject), nil
}

func (i *fakeInstance) CreateDevice(adapter bootstrap.Adapter, request bootstrap.DeviceRequest) (bootstrap.Device, error) {
	i.deviceRequest = request
	if i.device.createErr != nil {
		return nil, i.device.createErr
	}
	i.device.fakeObject = i.h.object("device", i.fakeObject)
	return i.device, nil
}

type fakeAdapter struct {
	name       string
	class      core1_0.PhysicalDeviceType
	families   []core1_0.QueueFlags
	extensions []string
	features   core1_0.PhysicalDeviceFeatures
}

func (a *fakeAdapter) Name() string                      { return a.name }
func (a *fakeAdapter) Class() core1_0.PhysicalDeviceType { return a.class }
func (a *fakeAdapter) Features() *core1_0.PhysicalDeviceFeatures {
	return &a.features
}
func (a *fakeAdapter) Extensions() ([]string, error) { return a.extensions, nil }

func (a *fakeAdapter) QueueFamilies() []*core1_0.QueueFamilyProperties {
	var families []*core1_0.QueueFamilyProperties
	for _, flags := range a.families {
		families = append(families, &core1_0.QueueFamilyProperties{QueueFlags: flags})
	}
	return families
}

func gpu(name string, class core1_0.PhysicalDeviceType, families ...core1_0.QueueFlags) *fakeAdapter {
	return &fakeAdapter{
		name:       name,
		class:      class,
		families:   families,
		extensions: []string{khr_swapchain.ExtensionName},
	}
}

type fakeSurface struct {
	*fakeObject
	capabilities khr_surface.SurfaceCapabilities
	formats      []khr_surface.SurfaceFormat
	modes        []khr_surface.PresentMode
	// present lists the families that can present; nil means all can.
	present map[int]bool
	queries int
}

func (s *fakeSurface) Capabilities(bootstrap.Adapter) (*khr_surface.SurfaceCapabilities, error) {
	s.queries++
	capabilities := s.capabilities
	return &capabilities, nil
}

func (s *fakeSurface) Formats(bootstrap.Adapter) ([]khr_surface.SurfaceFormat, error) {
	return s.formats, nil
}

func (s *fakeSurface) PresentModes(bootstrap.Adapter) ([]khr_surface.PresentMode, error) {
	return s.modes, nil
}

func (s *fakeSurface) SupportsPresent(_ bootstrap.Adapter, family int) (bool, error) {
	if s.present == nil {
		return true, nil
	}
	return s.present[family], nil
}

type fakeQueue struct{ family int }

func (q fakeQueue) FamilyIndex() int { return q.family }

type fakeImage struct{ index int }

func (i fakeImage) SwapchainIndex() int { return i.index }

type fakeSwapchain struct {
	*fakeObject
	images int
}

func (s *fakeSwapchain) Images() ([]bootstrap.Image, error) {
	images := make([]bootstrap.Image, s.images)
	for i := range images {
		images[i] = fakeImage{index: i}
	}
	return images, nil
}

type fakeDevice struct {
	*fakeObject
	h *harness

	// images is how many images a swapchain returns, regardless of the
	// requested count. Zero means exactly the requested count.
	images int

	createErr          error
	failView           int
	failShader         int
	failFramebuffer    int
	failPipeline       bool
	partialOnFailure   bool
	swapchainRequests  []bootstrap.SwapchainRequest
	renderPassInfo     core1_0.RenderPassCreateInfo
	pipelines          []bootstrap.PipelineDescription
	framebufferExtents []core1_0.Extent2D
	waits              int

	swapchain   *fakeSwapchain
	views       map[bootstrap.ImageView]*fakeObject
	renderPass  *fakeObject
	layout      *fakeObject
	viewCount   int
	shaderCount int
	fbCount     int
}

func newDevice(h *harness) *fakeDevice {
	return &fakeDevice{h: h, failView: -1, failShader: -1, failFramebuffer: -1, views: map[bootstrap.ImageView]*fakeObject{}}
}

func (d *fakeDevice) Queue(family int) bootstrap.Queue { return fakeQueue{family: family} }

func (d *fakeDevice) CreateSwapchain(surface bootstrap.Surface, request bootstrap.SwapchainRequest) (bootstrap.Swapchain, error) {
	d.swapchainRequests = append(d.swapchainRequests, request)
	images := d.images
	if images == 0 {
		images = request.Config.ImageCount
	}
	d.swapchain = &fakeSwapchain{
		fakeObject: d.h.object(fmt.Sprintf("swapchain %d", len(d.swapchainRequests)), d.fakeObject, surface.(*fakeSurface).fakeObject),
		images:     images,
	}
	return d.swapchain, nil
}

func (d *fakeDevice) CreateImageView(image bootstrap.Image, format core1_0.Format) (bootstrap.ImageView, error) {
	if image.SwapchainIndex() == d.failView {
		return nil, errors.New("view rejected")
	}
	d.viewCount++
	view := d.h.object(fmt.Sprintf("view %d", d.viewCount), d.fakeObject, d.swapchain.fakeObject)
	d.views[view] = view
	return view, nil
}

func (d *fakeDevice) CreateRenderPass(info core1_0.RenderPassCreateInfo) (bootstrap.RenderPass, error) {
	d.renderPassInfo = info
	d.renderPass = d.h.object("render pass", d.fakeObject)
	return d.renderPass, nil
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (bootstrap.ShaderModule, error) {
	if d.shaderCount == d.failShader {
		return nil, errors.New("shader rejected")
	}
	d.shaderCount++
	return d.h.object(fmt.Sprintf("shader %d", d.shaderCount), d.fakeObject), nil
}

func (d *fakeDevice) CreatePipelineLayout() (bootstrap.PipelineLayout, error) {
	d.layout = d.h.object("pipeline layout", d.fakeObject)
	return d.layout, nil
}

func (d *fakeDevice) CreateGraphicsPipelines(descriptions ...bootstrap.PipelineDescription) ([]bootstrap.Pipeline, error) {
	d.pipelines = append(d.pipelines, descriptions...)
	if d.failPipeline {
		var partial []bootstrap.Pipeline
		if d.partialOnFailure {
			partial = append(partial, d.h.object("partial pipeline", d.fakeObject, d.renderPass, d.layout))
		}
		return partial, errors.New("link failed")
	}

	var pipelines []bootstrap.Pipeline
	for range descriptions {
		pipelines = append(pipelines, d.h.object("pipeline", d.fakeObject, d.renderPass, d.layout))
	}
	return pipelines, nil
}

func (d *fakeDevice) CreateFramebuffer(renderPass bootstrap.RenderPass, attachments []bootstrap.ImageView, extent core1_0.Extent2D) (bootstrap.Framebuffer, error) {
	if d.fbCount == d.failFramebuffer {
		return nil, errors.New("framebuffer rejected")
	}
	d.fbCount++
	d.framebufferExtents = append(d.framebufferExtents, extent)

	parents := []*fakeObject{d.fakeObject, renderPass.(*fakeObject)}
	for _, attachment := range attachments {
		parents = append(parents, d.views[attachment])
	}
	return d.h.object(fmt.Sprintf("framebuffer %d", d.fbCount), parents...), nil
}

func (d *fakeDevice) WaitIdle() error {
	d.waits++
	return nil
}

// rig is a complete fake driver with one integrated GPU and a surface that
// prefers nothing.
type rig struct {
	h        *harness
	loader   *fakeLoader
	instance *fakeInstance
	surface  *fakeSurface
	device   *fakeDevice
	window   *fakeWindow
}

func newRig() *rig {
	h := &harness{}
	surface := &fakeSurface{
		capabilities: khr_surface.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  core1_0.Extent2D{Width: 800, Height: 600},
			MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
		},
		formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		modes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox},
	}
	device := newDevice(h)
	instance := &fakeInstance{
		h:        h,
		adapters: []bootstrap.Adapter{gpu("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU, core1_0.QueueGraphics|core1_0.QueueCompute)},
		surface:  surface,
		device:   device,
	}
	loader := &fakeLoader{
		h:          h,
		layers:     []string{"VK_LAYER_KHRONOS_validation"},
		extensions: []string{"VK_KHR_surface", "VK_KHR_xlib_surface", ext_debug_utils.ExtensionName},
		instance:   instance,
	}

	return &rig{
		h:        h,
		loader:   loader,
		instance: instance,
		surface:  surface,
		device:   device,
		window: &fakeWindow{
			extensions: []string{"VK_KHR_surface", "VK_KHR_xlib_surface"},
			size:       core1_0.Extent2D{Width: 1920, Height: 1080},
		},
	}
}
