// Package linsys analyzes the planar linear system dx/dt = A·x: its eigen
// decomposition, a sampled vector field, the eigenvector overlay and a
// text summary.
package linsys
