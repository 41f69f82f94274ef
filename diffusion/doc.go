// Package diffusion computes diffusion-map embeddings of finite point clouds.
//
// # Diffusion Maps Overview
//
// A diffusion map embeds points using the leading eigenvectors of a normalized
// random-walk operator built from a neighborhood graph. Where PCA only sees the
// directions of largest variance in the ambient space, a diffusion map follows
// the local neighborhood structure, so points that are connected through chains
// of near neighbors end up close together even when the straight-line distance
// between them is large.
//
// This package uses the zero/one kernel and diffusion time zero:
//
//  1. Find the k nearest neighbors of every point (each point is its own
//     nearest neighbor), giving a sparse 0/1 indicator matrix W0
//  2. Symmetrize by counting shared neighbors: W = W0 * W0^T
//  3. Alpha-normalize (alpha = 1) to remove sampling-density bias:
//     W <- D^-1 * W * D^-1 with D = diag(rowsum(W))
//  4. Build the symmetric operator P = D'^-1/2 * W * D'^-1/2, with D' the
//     degree of the alpha-normalized W. P shares its spectrum with the
//     row-stochastic random walk D'^-1 * W
//  5. Take the d eigenvectors of largest eigenvalue magnitude after removing
//     the trivial stationary direction, and map them back to diffusion
//     coordinates with D'^-1/2
//
// The two normalizations are applied in sequence; each uses the degree of the
// previous stage's output.
//
// Nearest-neighbor search is pluggable through NeighborSearcher. BruteForce and
// KDTree are exact and interchangeable.
//
// Reference: Coifman, R. R., & Lafon, S. (2006). Diffusion maps. Applied and
// Computational Harmonic Analysis, 21(1), 5-30.
package diffusion
