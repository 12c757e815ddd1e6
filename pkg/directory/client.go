// Package directory is the partition-aware client facade over a sharded user
// directory: point operations route to the single owning partition, full
// scans fan out to every partition and merge.
package directory

import (
	"context"
	"sync"

	"userdir/pkg/cluster"
	"userdir/pkg/rpc"
	"userdir/pkg/types"
)

// Client routes user operations to the partitions that own them. It holds no
// topology state of its own; every operation resolves afresh.
type Client struct {
	resolver *cluster.Resolver
	factory  cluster.PartitionFactory
}

func NewClient(resolver *cluster.Resolver, factory cluster.PartitionFactory) *Client {
	return &Client{resolver: resolver, factory: factory}
}

// NewHTTP returns a client for the service backed by disc, talking HTTP to
// partitions with the fixed default retry policy.
func NewHTTP(service types.ServiceName, disc cluster.Discovery) *Client {
	return NewClient(
		cluster.NewResolver(service, disc),
		rpc.NewPartitionFactory(rpc.DefaultRetrySettings()),
	)
}

// AddUser stores the record on the partition owning its identifier and
// returns the identifier. Single round trip.
func (c *Client) AddUser(ctx context.Context, user types.User) (string, error) {
	p, err := c.partitionFor(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return p.AddUser(ctx, user)
}

// GetUser returns the record for the identifier, or ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (types.User, error) {
	p, err := c.partitionFor(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	return p.GetUser(ctx, id)
}

// UpdateUser replaces an existing record; false means no such record.
func (c *Client) UpdateUser(ctx context.Context, user types.User) (bool, error) {
	p, err := c.partitionFor(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return p.UpdateUser(ctx, user)
}

// DeleteUser removes the record; false means no such record.
func (c *Client) DeleteUser(ctx context.Context, id string) (bool, error) {
	p, err := c.partitionFor(ctx, id)
	if err != nil {
		return false, err
	}
	return p.DeleteUser(ctx, id)
}

// GetAllUsers lists every record across every partition of the directory.
//
// All per-partition list calls are dispatched concurrently and joined before
// returning, so latency is bounded by the slowest partition, not the sum.
// There is no partial-success mode: any partition failure fails the whole
// call with the first encountered failure, after every in-flight call has
// finished. Result order is undefined.
//
// Cost is proportional to the total directory size; this is not a hot-path
// call, and no pagination is offered. Callers needing pagination must build
// it externally.
func (c *Client) GetAllUsers(ctx context.Context) ([]types.User, error) {
	endpoints, err := c.resolver.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]types.User, len(endpoints))
	errs := make([]error, len(endpoints))

	var wg sync.WaitGroup
	for i, ep := range endpoints {
		wg.Add(1)
		go func(i int, ep cluster.PartitionEndpoint) {
			defer wg.Done()

			p, err := c.factory(ep)
			if err != nil {
				errs[i] = err
				return
			}
			users, err := p.ListUsers(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = users
		}(i, ep)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, part := range results {
		total += len(part)
	}
	all := make([]types.User, 0, total)
	for _, part := range results {
		all = append(all, part...)
	}
	return all, nil
}

func (c *Client) partitionFor(ctx context.Context, id string) (cluster.Partition, error) {
	ep, err := c.resolver.ResolveForKey(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.factory(ep)
}
