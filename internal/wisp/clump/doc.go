// Package clump assigns every dense root point to one guide point.
//
// Responsibilities: building the guide octree, querying each dense point's
// nearest guides, and drawing one of them with a zone-biased selection. The
// result is a Table mapping guide index to the dense indices it drives.
//
// Dependency rule: clump depends on octree, randutil, faults and monitoring.
// Dense points are processed in parallel; each draws from its own random
// stream so the table does not depend on scheduling.
package clump
