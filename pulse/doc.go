// Package pulse implements render.Renderer on top of webgpu.
//
// Programs are plain WGSL with the entry points vs_main and fs_main and a
// single bind group. Full screen programs draw one triangle generated from
// the vertex index and use the bindings
//
//	@binding(0) var smp: sampler;
//	@binding(1) var<uniform> params: array<vec4f, 16>;
//	@binding(2 + i) the i-th texture of Program.Textures
//
// Mesh programs get the vertex inputs position at location 0 and normal at
// location 1 and use the bindings
//
//	@binding(0) var<uniform> camera: Camera;
//	@binding(1) var<uniform> object: Object; // model matrix + array<vec4f, 8>
//	@binding(2) var smp: sampler;
//	@binding(3 + i) the i-th texture of Program.Textures
//
// Params are widened to vec4f and stored in the order of Program.Params.
// Depth textures bind as texture_depth_2d, or texture_depth_multisampled_2d
// if the target is multisampled.
package pulse
