package election

import (
	"encoding/binary"
	"hash/fnv"
)

// DeriveSeed mixes the base seed with a node id and run index so that every
// node draws from its own random stream and repeated runs with the same base
// seed stay distinct. The mix is FNV-1a over the three values, which is
// stable across processes and platforms.
func DeriveSeed(base uint64, nodeID, runIndex int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], base)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(nodeID))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(runIndex))
	h.Write(buf[:])
	return h.Sum64()
}
