// Package strandio reads and writes the files exchanged with the modelling
// tools: Wavefront OBJ point and polyline sets, the clumping table, and
// JSON spectral libraries and statistics.
//
// Every function takes an fsutil.FileSystem. Parsing errors name the file
// and line.
package strandio
