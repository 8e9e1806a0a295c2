package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/bootstrap/shaders"
)

// RenderGraph is the render pass and the one graphics pipeline built
// against it.
type RenderGraph struct {
	RenderPass     RenderPass
	PipelineLayout PipelineLayout
	Pipeline       Pipeline
}

// Destroy releases the pipeline, its layout and the render pass, in that
// order.
func (g *RenderGraph) Destroy() {
	if g.Pipeline != nil {
		g.Pipeline.Destroy()
		g.Pipeline = nil
	}
	if g.PipelineLayout != nil {
		g.PipelineLayout.Destroy()
		g.PipelineLayout = nil
	}
	if g.RenderPass != nil {
		g.RenderPass.Destroy()
		g.RenderPass = nil
	}
}

// RenderPassInfo declares a single color attachment of the given format,
// cleared on load and kept on store, ending ready for presentation, and one
// subpass writing to it.
func RenderPassInfo(colorFormat core1_0.Format) core1_0.RenderPassCreateInfo {
	return core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         colorFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	}
}

// TrianglePipeline describes the fixed triangle pipeline: no vertex input,
// triangle list, one dynamic viewport and scissor seeded from extent, back
// face culling with clockwise front faces, one sample, blending off.
func TrianglePipeline(vertShader, fragShader ShaderModule, layout PipelineLayout, renderPass RenderPass, extent core1_0.Extent2D) PipelineDescription {
	return PipelineDescription{
		Stages: []ShaderStage{
			{Stage: core1_0.StageVertex, Module: vertShader, Entry: "main"},
			{Stage: core1_0.StageFragment, Module: fragShader, Entry: "main"},
		},
		VertexInput: core1_0.PipelineVertexInputStateCreateInfo{},
		InputAssembly: core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		Viewport: core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{
				{
					X:        0,
					Y:        0,
					Width:    float32(extent.Width),
					Height:   float32(extent.Height),
					MinDepth: 0,
					MaxDepth: 1,
				},
			},
			Scissors: []core1_0.Rect2D{
				{
					Offset: core1_0.Offset2D{X: 0, Y: 0},
					Extent: extent,
				},
			},
		},
		Rasterization: core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: false,

			PolygonMode: core1_0.PolygonModeFill,
			CullMode:    core1_0.CullModeBack,
			FrontFace:   core1_0.FrontFaceClockwise,

			DepthBiasEnable: false,

			LineWidth: 1.0,
		},
		Multisample: core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlend: core1_0.PipelineColorBlendStateCreateInfo{
			LogicOpEnabled: false,
			LogicOp:        core1_0.LogicOpCopy,

			BlendConstants: [4]float32{0, 0, 0, 0},
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},

		Layout:     layout,
		RenderPass: renderPass,
		Subpass:    0,
	}
}

// BuildRenderGraph creates the render pass for colorFormat and the triangle
// pipeline on top of it. Shader modules only live for the duration of the
// call. A *PipelineError still owns the render pass and layout; call its
// Release.
func BuildRenderGraph(device Device, colorFormat core1_0.Format, viewportExtent core1_0.Extent2D, code shaders.Set) (*RenderGraph, error) {
	graph := &RenderGraph{}

	var err error
	graph.RenderPass, err = device.CreateRenderPass(RenderPassInfo(colorFormat))
	if err != nil {
		return nil, fail(err, ErrPipelineCompilationFailed, "create render pass")
	}

	vertShader, err := device.CreateShaderModule(code.Vertex)
	if err != nil {
		graph.Destroy()
		return nil, fail(err, ErrShaderModuleInvalid, "create vertex shader module")
	}
	defer vertShader.Destroy()

	fragShader, err := device.CreateShaderModule(code.Fragment)
	if err != nil {
		graph.Destroy()
		return nil, fail(err, ErrShaderModuleInvalid, "create fragment shader module")
	}
	defer fragShader.Destroy()

	graph.PipelineLayout, err = device.CreatePipelineLayout()
	if err != nil {
		graph.Destroy()
		return nil, fail(err, ErrPipelineCompilationFailed, "create pipeline layout")
	}

	pipelines, err := device.CreateGraphicsPipelines(
		TrianglePipeline(vertShader, fragShader, graph.PipelineLayout, graph.RenderPass, viewportExtent),
	)
	if err != nil {
		return nil, &PipelineError{
			Partial: pipelines,
			cause:   errors.Mark(err, ErrPipelineCompilationFailed),
			owner:   graph,
		}
	}
	graph.Pipeline = pipelines[0]

	return graph, nil
}
