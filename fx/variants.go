package fx

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/postfx/render"
)

// variantKey selects a replacement material. The lowest bits are flags, the
// side is stored above them.
type variantKey uint8

const (
	variantSkinned variantKey = 1 << iota
	variantMorphed
	variantFlatShading

	variantSideShift = 3
)

func variantOf(r *render.Renderable) variantKey {
	var key variantKey

	if r.Skinned {
		key |= variantSkinned
	}

	if r.Morphed {
		key |= variantMorphed
	}

	if r.Material != nil {
		if r.Material.FlatShading {
			key |= variantFlatShading
		}

		key |= variantKey(r.Material.Side) << variantSideShift
	}

	return key
}

func (k variantKey) Side() render.Side {
	return render.Side(k >> variantSideShift)
}

func (k variantKey) Has(flag variantKey) bool {
	return k&flag != 0
}

// variantCache holds the replacement materials of a single buffer.
type variantCache struct {
	cache  *lru.Cache[variantKey, *render.Material]
	create func(key variantKey) *render.Material
}

func newVariantCache(size int, create func(key variantKey) *render.Material) *variantCache {
	cache, _ := lru.New[variantKey, *render.Material](size)

	return &variantCache{
		cache:  cache,
		create: create,
	}
}

func (c *variantCache) Get(key variantKey) *render.Material {
	material, ok := c.cache.Get(key)
	if ok {
		return material
	}

	material = c.create(key)
	c.cache.Add(key, material)

	return material
}

func (c *variantCache) Len() int {
	return c.cache.Len()
}

func (c *variantCache) Purge() {
	c.cache.Purge()
}
