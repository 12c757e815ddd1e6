package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"

	"userdir/pkg/types"
)

const (
	zkSessionTimeout = 5 * time.Second
	zkConnectTimeout = 10 * time.Second
)

// ZKDiscovery reads partition topology from a zookeeper ensemble.
//
// Every ListPartitions call opens its own connection and closes it once the
// listing is read; nothing is cached between calls. Partitions live under
// <root>/services/<service>/partitions/<low-bound>, each znode holding a JSON
// PartitionDescriptor.
type ZKDiscovery struct {
	Servers []string // ["zk1:2181", "zk2:2181"]
	Root    string   // "/userdir"
}

func (d *ZKDiscovery) ListPartitions(ctx context.Context, service types.ServiceName) ([]PartitionDescriptor, error) {
	conn, _, err := zk.Connect(d.Servers, zkSessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("zk connect: %w", err)
	}
	defer conn.Close()

	if err := waitConnected(ctx, conn, zkConnectTimeout); err != nil {
		return nil, err
	}

	base := partitionsPath(d.Root, service)
	children, _, err := conn.Children(base)
	if err != nil {
		return nil, fmt.Errorf("zk children %s: %w", base, err)
	}

	parts := make([]PartitionDescriptor, 0, len(children))
	for _, child := range children {
		data, _, err := conn.Get(base + "/" + child)
		if err != nil {
			return nil, fmt.Errorf("zk get %s/%s: %w", base, child, err)
		}
		var p PartitionDescriptor
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode partition %s: %w", child, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// ZKRegistrar advertises one partition of a service as an ephemeral znode.
// The registration disappears with the session, so a dead partition drops out
// of discovery on its own.
type ZKRegistrar struct {
	conn    *zk.Conn
	root    string
	service types.ServiceName
}

func NewZKRegistrar(servers []string, root string, service types.ServiceName) (*ZKRegistrar, error) {
	conn, _, err := zk.Connect(servers, zkSessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("zk connect: %w", err)
	}
	return &ZKRegistrar{conn: conn, root: root, service: service}, nil
}

// Register creates the partition's ephemeral znode, named by its low bound.
func (r *ZKRegistrar) Register(ctx context.Context, desc PartitionDescriptor) error {
	if err := waitConnected(ctx, r.conn, zkConnectTimeout); err != nil {
		return err
	}

	base := partitionsPath(r.root, r.service)
	if err := ensurePath(r.conn, base); err != nil {
		return fmt.Errorf("ensure partitions path: %w", err)
	}

	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("encode partition: %w", err)
	}

	nodePath := fmt.Sprintf("%s/%d", base, desc.LowBound)
	_, err = r.conn.Create(nodePath, data, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("create ephemeral partition node: %w", err)
	}
	return nil
}

func (r *ZKRegistrar) Close() error {
	r.conn.Close()
	return nil
}

func partitionsPath(root string, service types.ServiceName) string {
	return fmt.Sprintf("%s/services/%s/partitions", root, service)
}

// ensurePath creates every segment of path that does not exist yet.
func ensurePath(conn *zk.Conn, path string) error {
	parts := strings.Split(path, "/")
	cur := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = cur + "/" + p
		exists, _, err := conn.Exists(cur)
		if err != nil {
			return err
		}
		if !exists {
			_, err = conn.Create(cur, nil, 0, zk.WorldACL(zk.PermAll))
			if err != nil && err != zk.ErrNodeExists {
				return err
			}
		}
	}
	return nil
}

// waitConnected blocks until the client has a live session, the timeout
// expires, or ctx fires.
func waitConnected(ctx context.Context, conn *zk.Conn, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		st := conn.State()
		if st == zk.StateConnected || st == zk.StateHasSession {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("zk: not connected after %s, state=%v", timeout, st)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
