// Package calibration loads and validates the stereo rig model consumed by
// the projection engine. A missing calibration file is a supported state:
// the pipeline degrades to passthrough undistortion rather than failing.
package calibration
