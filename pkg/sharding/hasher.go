// Package sharding maps user identifiers to partition routing keys.
package sharding

import (
	"hash/fnv"
	"strings"

	"userdir/pkg/types"
)

// Hash deterministically maps an identifier to a routing key.
//
// The key is the FNV-1a 64-bit hash of the upper-cased identifier, so routing
// is case-insensitive. The unsigned accumulator is reinterpreted as a signed
// 64-bit integer with the bit pattern preserved; negative keys are valid and
// expected, the partition key space covers the full signed range.
func Hash(identifier string) types.RoutingKey {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(identifier)))
	return types.RoutingKey(int64(h.Sum64()))
}
