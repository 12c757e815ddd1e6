package cluster

import (
	"context"

	"userdir/pkg/types"
)

// PartitionDescriptor describes one partition of a directory service as
// reported by discovery.
type PartitionDescriptor struct {
	// LowBound is the inclusive lower bound of the key range the partition owns.
	LowBound int64 `json:"low_bound"`

	// Kind is the partitioning scheme. The client only accepts "range".
	Kind types.PartitionKind `json:"kind"`

	// Addr is the reachable base address of the partition, e.g. "http://host:8080".
	Addr string `json:"addr"`
}

// Discovery lists the partitions currently composing a directory service.
//
// The resolver calls ListPartitions once per operation and never caches the
// result, so topology changes are picked up on the next call.
type Discovery interface {
	ListPartitions(ctx context.Context, service types.ServiceName) ([]PartitionDescriptor, error)
}

// StaticDiscovery serves a fixed partition list. Used in tests and single-box
// deployments where no coordination service is running.
type StaticDiscovery struct {
	Partitions []PartitionDescriptor
}

func (s *StaticDiscovery) ListPartitions(ctx context.Context, service types.ServiceName) ([]PartitionDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]PartitionDescriptor, len(s.Partitions))
	copy(out, s.Partitions)
	return out, nil
}
