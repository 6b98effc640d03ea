package render

import (
	"cmp"
	"slices"
)

// StaticScene is a Scene built from a flat list of renderables.
// Objects are assigned to layers on Add.
type StaticScene struct {
	objects []sceneObject
	states  map[*Camera]*RenderStates
}

type sceneObject struct {
	layer      int
	renderable *Renderable
}

func (s *StaticScene) Add(layer int, r *Renderable) {
	s.objects = append(s.objects, sceneObject{layer: layer, renderable: r})
}

// Remove removes the renderable from all layers.
func (s *StaticScene) Remove(r *Renderable) {
	s.objects = slices.DeleteFunc(s.objects, func(obj sceneObject) bool {
		return obj.renderable == r
	})
}

func (s *StaticScene) Len() int {
	return len(s.objects)
}

// RenderStates returns the states for the camera. The same value is returned
// for repeated calls with the same camera.
func (s *StaticScene) RenderStates(camera *Camera) *RenderStates {
	if s.states == nil {
		s.states = map[*Camera]*RenderStates{}
	}

	states, ok := s.states[camera]
	if !ok {
		states = &RenderStates{Camera: camera}
		s.states[camera] = states
	}

	return states
}

// RenderQueue builds the queue for the camera. Opaque objects are sorted front
// to back, transparent objects back to front.
func (s *StaticScene) RenderQueue(camera *Camera) *RenderQueue {
	type sortable struct {
		depth      float32
		renderable *Renderable
	}

	layers := map[int][2][]sortable{}

	for _, obj := range s.objects {
		r := obj.renderable
		if r.Material == nil {
			continue
		}

		// position of the object in view space, the camera looks down -z
		origin := camera.View.Mul(r.Transform)
		depth := -origin[14]

		lists := layers[obj.layer]

		idx := 0
		if r.Material.Transparent {
			idx = 1
		}

		lists[idx] = append(lists[idx], sortable{depth: depth, renderable: r})
		layers[obj.layer] = lists
	}

	var queue RenderQueue

	for id, lists := range layers {
		slices.SortStableFunc(lists[0], func(a, b sortable) int { return cmp.Compare(a.depth, b.depth) })
		slices.SortStableFunc(lists[1], func(a, b sortable) int { return cmp.Compare(b.depth, a.depth) })

		layer := &RenderLayer{ID: id}

		for _, item := range lists[0] {
			layer.Opaque = append(layer.Opaque, item.renderable)
		}

		for _, item := range lists[1] {
			layer.Transparent = append(layer.Transparent, item.renderable)
		}

		queue.Layers = append(queue.Layers, layer)
	}

	slices.SortFunc(queue.Layers, func(a, b *RenderLayer) int { return cmp.Compare(a.ID, b.ID) })

	return &queue
}
