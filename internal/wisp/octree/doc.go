// Package octree owns the spatial index layer of the wisp pipeline.
//
// Responsibilities: partitioning a static 3-D point set into octants and
// answering k-nearest-neighbour queries by box pruning with radius doubling.
// Key types: Index, Neighbor.
//
// Dependency rule: octree depends only on faults and gonum; it never imports
// curve, spectral or synthesis code. The index is immutable after Build and
// safe for concurrent queries.
package octree
