package pulse

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

var samplerCache, _ = lru.NewWithEvict[wgpu.SamplerDescriptor, *wgpu.Sampler](16, samplerCacheOnEvict)

func samplerCacheOnEvict(key wgpu.SamplerDescriptor, value *wgpu.Sampler) {
	value.Release()
}

// CachedSampler returns a sampler matching your description. The sampler may be cached,
// you  must not call wgpu.Sampler.Release() on it.
func CachedSampler(dev *wgpu.Device, desc wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	cachedSampler, ok := samplerCache.Get(desc)
	if ok {
		return cachedSampler, nil
	}

	sampler, err := dev.CreateSampler(&desc)
	if err != nil {
		return nil, fmt.Errorf("create sampler %q: %w", desc.Label, err)
	}

	samplerCache.Add(desc, sampler)

	return sampler, nil
}

// samplerDescriptor clamps to the edge and filters mip levels linearly.
func samplerDescriptor(filter render.Filter) wgpu.SamplerDescriptor {
	mode := wgpu.FilterModeLinear
	if filter == render.FilterNearest {
		mode = wgpu.FilterModeNearest
	}

	return wgpu.SamplerDescriptor{
		Label:         "Pass-Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     mode,
		MinFilter:     mode,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}
