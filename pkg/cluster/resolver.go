package cluster

import (
	"context"
	"fmt"
	"sort"

	"userdir/pkg/direrrors"
	"userdir/pkg/sharding"
	"userdir/pkg/types"
)

// Resolver maps routing keys to partition endpoints using fresh topology from
// a Discovery backend. It holds no endpoint cache: every resolution is one
// discovery round trip, so topology changes between calls are picked up
// automatically. Retries are the transport's concern, not the resolver's.
type Resolver struct {
	service types.ServiceName
	disc    Discovery
}

func NewResolver(service types.ServiceName, disc Discovery) *Resolver {
	return &Resolver{service: service, disc: disc}
}

// ResolveForKey returns the single endpoint whose key range contains the
// routing key of the identifier. Never fans out.
func (r *Resolver) ResolveForKey(ctx context.Context, identifier string) (PartitionEndpoint, error) {
	key := sharding.Hash(identifier)

	parts, err := r.partitions(ctx)
	if err != nil {
		return PartitionEndpoint{}, err
	}

	// owner = partition with the greatest low bound <= key
	idx := sort.Search(len(parts), func(i int) bool { return parts[i].LowBound > int64(key) })
	if idx == 0 {
		return PartitionEndpoint{}, fmt.Errorf("%w: no partition covers key %d of %q", direrrors.ErrResolution, key, identifier)
	}

	p := parts[idx-1]
	return PartitionEndpoint{LowBound: types.RoutingKey(p.LowBound), Addr: p.Addr}, nil
}

// ResolveAll returns one endpoint per partition of the service, each
// addressable by its low-key bound, sorted by low bound.
func (r *Resolver) ResolveAll(ctx context.Context) ([]PartitionEndpoint, error) {
	parts, err := r.partitions(ctx)
	if err != nil {
		return nil, err
	}

	endpoints := make([]PartitionEndpoint, 0, len(parts))
	for _, p := range parts {
		endpoints = append(endpoints, PartitionEndpoint{
			LowBound: types.RoutingKey(p.LowBound),
			Addr:     p.Addr,
		})
	}
	return endpoints, nil
}

// partitions fetches the current topology and validates it: every partition
// must be range-partitioned. Returned sorted by low bound.
func (r *Resolver) partitions(ctx context.Context) ([]PartitionDescriptor, error) {
	parts, err := r.disc.ListPartitions(ctx, r.service)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", direrrors.ErrCanceled, err)
		}
		return nil, fmt.Errorf("%w: %v", direrrors.ErrResolution, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: service %q has no partitions", direrrors.ErrResolution, r.service)
	}

	for _, p := range parts {
		if p.Kind != types.KindRange {
			return nil, fmt.Errorf("%w: partition %s of %q is %q", direrrors.ErrUnsupportedPartitionKind, p.Addr, r.service, p.Kind)
		}
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].LowBound < parts[j].LowBound })
	return parts, nil
}
