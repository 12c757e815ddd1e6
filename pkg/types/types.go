package types

// RoutingKey is a signed 64-bit partition routing key derived from a user identifier.
type RoutingKey int64

// ServiceName identifies a partitioned directory service in the discovery tree.
type ServiceName string

// PartitionKind names the partitioning scheme a partition was created with.
type PartitionKind string

// KindRange is the only scheme the client supports: each partition owns a
// contiguous range of the signed 64-bit key space.
const KindRange PartitionKind = "range"
