package cluster

import (
	"context"

	"userdir/pkg/types"
)

// PartitionEndpoint addresses one resolved partition.
type PartitionEndpoint struct {
	LowBound types.RoutingKey
	Addr     string
}

// Partition is a remote-call handle bound to exactly one partition.
//
// GetUser against the wrong partition for an identifier reports not-found
// rather than a routing error; routing correctness is the caller's concern.
type Partition interface {
	AddUser(ctx context.Context, user types.User) (string, error)
	GetUser(ctx context.Context, id string) (types.User, error)

	// UpdateUser and DeleteUser report false, not an error, when the record
	// does not exist on this partition.
	UpdateUser(ctx context.Context, user types.User) (bool, error)
	DeleteUser(ctx context.Context, id string) (bool, error)

	// ListUsers returns every record held by this single partition, collected
	// eagerly. Unbounded: proportional to the partition's share of the directory.
	ListUsers(ctx context.Context) ([]types.User, error)
}

// PartitionFactory produces a handle for a resolved endpoint. Handles are
// transient: created per call, garbage afterwards. Pooling, if any, lives
// behind the factory.
type PartitionFactory func(endpoint PartitionEndpoint) (Partition, error)
