package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap"
)

type Swapchain struct {
	extension khr_swapchain.ExtensionDriver
	swapchain khr_swapchain.Swapchain
}

func (s *Swapchain) Images() ([]bootstrap.Image, error) {
	images, _, err := s.extension.GetSwapchainImages(s.swapchain)
	if err != nil {
		return nil, err
	}

	wrapped := make([]bootstrap.Image, 0, len(images))
	for idx, image := range images {
		wrapped = append(wrapped, &Image{image: image, index: idx})
	}
	return wrapped, nil
}

func (s *Swapchain) Destroy() {
	s.extension.DestroySwapchain(s.swapchain, nil)
}

// Image is owned by its swapchain.
type Image struct {
	image core1_0.Image
	index int
}

func (i *Image) SwapchainIndex() int { return i.index }

type ImageView struct {
	driver core1_0.CoreDeviceDriver
	view   core1_0.ImageView
}

func (v *ImageView) Destroy() { v.driver.DestroyImageView(v.view, nil) }

type RenderPass struct {
	driver     core1_0.CoreDeviceDriver
	renderPass core1_0.RenderPass
}

func (p *RenderPass) Destroy() { p.driver.DestroyRenderPass(p.renderPass, nil) }

type shaderModule struct {
	driver core1_0.CoreDeviceDriver
	module core1_0.ShaderModule
}

func (m *shaderModule) Destroy() { m.driver.DestroyShaderModule(m.module, nil) }

type pipelineLayout struct {
	driver core1_0.CoreDeviceDriver
	layout core1_0.PipelineLayout
}

func (l *pipelineLayout) Destroy() { l.driver.DestroyPipelineLayout(l.layout, nil) }

type Pipeline struct {
	driver   core1_0.CoreDeviceDriver
	pipeline core1_0.Pipeline
}

func (p *Pipeline) Destroy() { p.driver.DestroyPipeline(p.pipeline, nil) }

type Framebuffer struct {
	driver      core1_0.CoreDeviceDriver
	framebuffer core1_0.Framebuffer
}

func (f *Framebuffer) Destroy() { f.driver.DestroyFramebuffer(f.framebuffer, nil) }
