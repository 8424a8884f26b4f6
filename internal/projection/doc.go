// Package projection implements the geometric transforms of the stitch
// stage: lens undistortion, cylindrical warping, equirectangular remapping,
// and orientation adjustment. All transforms are pure functions over frame
// buffers; per-geometry lookup tables are cached on the Projector and
// destination rows fan out across a worker pool.
package projection
