package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap"
)

// Device wraps a logical device driver.
type Device struct {
	driver             core1_0.CoreDeviceDriver
	swapchainExtension khr_swapchain.ExtensionDriver
}

type queue struct {
	queue  core1_0.Queue
	family int
}

func (q *queue) FamilyIndex() int { return q.family }

// Queue returns queue 0 of family.
func (d *Device) Queue(family int) bootstrap.Queue {
	return &queue{queue: d.driver.GetQueue(family, 0), family: family}
}

func (d *Device) CreateSwapchain(surface bootstrap.Surface, request bootstrap.SwapchainRequest) (bootstrap.Swapchain, error) {
	s, ok := surface.(*Surface)
	if !ok {
		return nil, errors.Newf("surface %T was not created by this driver", surface)
	}

	config := request.Config
	swapchain, _, err := d.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: s.surface,

		MinImageCount:    config.ImageCount,
		ImageFormat:      config.Format,
		ImageColorSpace:  config.ColorSpace,
		ImageExtent:      config.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       config.Usage,

		ImageSharingMode:   config.SharingMode,
		QueueFamilyIndices: config.QueueFamilies,

		PreTransform:   request.PreTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    config.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return nil, err
	}

	return &Swapchain{extension: d.swapchainExtension, swapchain: swapchain}, nil
}

func (d *Device) CreateImageView(image bootstrap.Image, format core1_0.Format) (bootstrap.ImageView, error) {
	img, ok := image.(*Image)
	if !ok {
		return nil, errors.Newf("image %T was not created by this driver", image)
	}

	// The zero ComponentMapping is the identity swizzle on every channel.
	imageView, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    img.image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, err
	}

	return &ImageView{driver: d.driver, view: imageView}, nil
}

func (d *Device) CreateRenderPass(info core1_0.RenderPassCreateInfo) (bootstrap.RenderPass, error) {
	renderPass, _, err := d.driver.CreateRenderPass(nil, info)
	if err != nil {
		return nil, err
	}
	return &RenderPass{driver: d.driver, renderPass: renderPass}, nil
}

func (d *Device) CreateShaderModule(code []uint32) (bootstrap.ShaderModule, error) {
	shader, _, err := d.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, err
	}
	return &shaderModule{driver: d.driver, module: shader}, nil
}

func (d *Device) CreatePipelineLayout() (bootstrap.PipelineLayout, error) {
	layout, _, err := d.driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, err
	}
	return &pipelineLayout{driver: d.driver, layout: layout}, nil
}

func (d *Device) CreateGraphicsPipelines(descriptions ...bootstrap.PipelineDescription) ([]bootstrap.Pipeline, error) {
	createInfos := make([]core1_0.GraphicsPipelineCreateInfo, 0, len(descriptions))
	for _, desc := range descriptions {
		createInfo, err := graphicsPipelineCreateInfo(desc)
		if err != nil {
			return nil, err
		}
		createInfos = append(createInfos, createInfo)
	}

	pipelines, _, err := d.driver.CreateGraphicsPipelines(nil, nil, createInfos...)

	var created []bootstrap.Pipeline
	for _, pipeline := range pipelines {
		if pipeline.Initialized() {
			created = append(created, &Pipeline{driver: d.driver, pipeline: pipeline})
		}
	}
	if err != nil {
		return created, err
	}
	if len(created) != len(descriptions) {
		return created, errors.Newf("driver created %d of %d pipelines", len(created), len(descriptions))
	}

	return created, nil
}

func graphicsPipelineCreateInfo(desc bootstrap.PipelineDescription) (core1_0.GraphicsPipelineCreateInfo, error) {
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok {
		return core1_0.GraphicsPipelineCreateInfo{}, errors.Newf("pipeline layout %T was not created by this driver", desc.Layout)
	}
	renderPass, ok := desc.RenderPass.(*RenderPass)
	if !ok {
		return core1_0.GraphicsPipelineCreateInfo{}, errors.Newf("render pass %T was not created by this driver", desc.RenderPass)
	}

	var stages []core1_0.PipelineShaderStageCreateInfo
	for _, stage := range desc.Stages {
		module, ok := stage.Module.(*shaderModule)
		if !ok {
			return core1_0.GraphicsPipelineCreateInfo{}, errors.Newf("shader module %T was not created by this driver", stage.Module)
		}
		stages = append(stages, core1_0.PipelineShaderStageCreateInfo{
			Stage:  stage.Stage,
			Module: module.module,
			Name:   stage.Entry,
		})
	}

	createInfo := core1_0.GraphicsPipelineCreateInfo{
		Stages:             stages,
		VertexInputState:   &desc.VertexInput,
		InputAssemblyState: &desc.InputAssembly,
		ViewportState:      &desc.Viewport,
		RasterizationState: &desc.Rasterization,
		MultisampleState:   &desc.Multisample,
		ColorBlendState:    &desc.ColorBlend,
		Layout:             layout.layout,
		RenderPass:         renderPass.renderPass,
		Subpass:            desc.Subpass,
		BasePipelineIndex:  -1,
	}
	if len(desc.DynamicStates) > 0 {
		createInfo.DynamicState = &core1_0.PipelineDynamicStateCreateInfo{
			DynamicStates: desc.DynamicStates,
		}
	}

	return createInfo, nil
}

func (d *Device) CreateFramebuffer(renderPass bootstrap.RenderPass, attachments []bootstrap.ImageView, extent core1_0.Extent2D) (bootstrap.Framebuffer, error) {
	pass, ok := renderPass.(*RenderPass)
	if !ok {
		return nil, errors.Newf("render pass %T was not created by this driver", renderPass)
	}

	var views []core1_0.ImageView
	for _, attachment := range attachments {
		view, ok := attachment.(*ImageView)
		if !ok {
			return nil, errors.Newf("image view %T was not created by this driver", attachment)
		}
		views = append(views, view.view)
	}

	framebuffer, _, err := d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  pass.renderPass,
		Layers:      1,
		Attachments: views,
		Width:       extent.Width,
		Height:      extent.Height,
	})
	if err != nil {
		return nil, err
	}

	return &Framebuffer{driver: d.driver, framebuffer: framebuffer}, nil
}

func (d *Device) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return err
}

func (d *Device) Destroy() {
	d.driver.DestroyDevice(nil)
}
