// Package flat provides an exact nearest-neighbour vector index.
//
// Every query is a brute-force scan computing the Euclidean distance to all
// stored vectors. At the corpus sizes served here (a few thousand records)
// this is fast and, unlike approximate indexes, always returns the true
// nearest neighbours.
//
// # Persistence
//
// The index persists as a directory holding three files:
//
//   - index.bin: magic "SVI1", uint32 dimension, uint32 count, then
//     count*dimension float32 values, all little-endian
//   - documents.json: JSON array of document texts
//   - metadata.json: JSON array of flat metadata objects
//
// Files are written into a sibling staging directory and swapped into
// place with renames, so a crash leaves either the old set or the new set.
package flat
