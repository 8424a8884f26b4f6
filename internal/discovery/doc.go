// Package discovery classifies raw rig footage into front and back camera
// streams from filename patterns and derives run titles from footage
// directory names.
package discovery
