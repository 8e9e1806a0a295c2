package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// FramebufferSet holds one framebuffer per swapchain image; framebuffer i
// wraps image view i.
type FramebufferSet []Framebuffer

// BuildFramebuffers wraps each view in a single-attachment, single-layer
// framebuffer of the given extent.
func BuildFramebuffers(device Device, renderPass RenderPass, views []ImageView, extent core1_0.Extent2D) (FramebufferSet, error) {
	framebuffers := make(FramebufferSet, 0, len(views))
	for idx, imageView := range views {
		framebuffer, err := device.CreateFramebuffer(renderPass, []ImageView{imageView}, extent)
		if err != nil {
			framebuffers.Destroy()
			return nil, errors.Mark(errors.Wrapf(err, "create framebuffer %d", idx), ErrFramebufferCreationFailed)
		}

		framebuffers = append(framebuffers, framebuffer)
	}

	return framebuffers, nil
}

// Destroy releases the framebuffers in reverse order.
func (s FramebufferSet) Destroy() {
	for i := len(s) - 1; i >= 0; i-- {
		s[i].Destroy()
	}
}
