package cluster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"userdir/pkg/direrrors"
	"userdir/pkg/sharding"
	"userdir/pkg/types"
)

// fakeDiscovery serves a scripted topology and counts calls.
type fakeDiscovery struct {
	parts []PartitionDescriptor
	err   error
	calls int
}

func (f *fakeDiscovery) ListPartitions(ctx context.Context, service types.ServiceName) ([]PartitionDescriptor, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.parts, nil
}

// threeWayTopology splits the signed key space into three equal-width ranges.
func threeWayTopology() []PartitionDescriptor {
	third := uint64(math.MaxUint64)/3 + 1
	low2 := math.MinInt64 + int64(third)
	low3 := low2 + int64(third)
	return []PartitionDescriptor{
		{LowBound: math.MinInt64, Kind: types.KindRange, Addr: "http://p1:8080"},
		{LowBound: low2, Kind: types.KindRange, Addr: "http://p2:8080"},
		{LowBound: low3, Kind: types.KindRange, Addr: "http://p3:8080"},
	}
}

func TestResolver_ResolveForKey(t *testing.T) {
	parts := threeWayTopology()
	disc := &fakeDiscovery{parts: parts}
	r := NewResolver("users", disc)

	for i := 0; i < 1_000; i++ {
		id := fmt.Sprintf("user-%d", i)
		ep, err := r.ResolveForKey(context.Background(), id)
		if err != nil {
			t.Fatalf("ResolveForKey(%q) error: %v", id, err)
		}

		// expected owner: greatest low bound <= hash(id)
		key := int64(sharding.Hash(id))
		want := parts[0]
		for _, p := range parts {
			if p.LowBound <= key {
				want = p
			}
		}
		if ep.Addr != want.Addr || int64(ep.LowBound) != want.LowBound {
			t.Fatalf("ResolveForKey(%q) = %s (low %d), want %s (low %d)", id, ep.Addr, ep.LowBound, want.Addr, want.LowBound)
		}
	}
}

func TestResolver_RoutingConsistency(t *testing.T) {
	r := NewResolver("users", &fakeDiscovery{parts: threeWayTopology()})

	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("user-%d", i)
		first, err := r.ResolveForKey(context.Background(), id)
		if err != nil {
			t.Fatalf("first resolve of %q: %v", id, err)
		}
		second, err := r.ResolveForKey(context.Background(), id)
		if err != nil {
			t.Fatalf("second resolve of %q: %v", id, err)
		}
		if first != second {
			t.Fatalf("id %q resolved to %v then %v", id, first, second)
		}
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	disc := &fakeDiscovery{parts: []PartitionDescriptor{
		// deliberately unsorted
		{LowBound: 100, Kind: types.KindRange, Addr: "http://p2:8080"},
		{LowBound: math.MinInt64, Kind: types.KindRange, Addr: "http://p1:8080"},
	}}
	r := NewResolver("users", disc)

	eps, err := r.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll error: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("ResolveAll returned %d endpoints, want 2", len(eps))
	}
	if eps[0].Addr != "http://p1:8080" || eps[1].Addr != "http://p2:8080" {
		t.Fatalf("endpoints not sorted by low bound: %+v", eps)
	}
	if int64(eps[0].LowBound) != math.MinInt64 || int64(eps[1].LowBound) != 100 {
		t.Fatalf("low bounds wrong: %+v", eps)
	}
}

func TestResolver_FreshTopologyPerCall(t *testing.T) {
	disc := &fakeDiscovery{parts: threeWayTopology()}
	r := NewResolver("users", disc)

	if _, err := r.ResolveAll(context.Background()); err != nil {
		t.Fatalf("ResolveAll error: %v", err)
	}
	if _, err := r.ResolveForKey(context.Background(), "alice"); err != nil {
		t.Fatalf("ResolveForKey error: %v", err)
	}
	if disc.calls != 2 {
		t.Fatalf("expected one discovery call per operation, got %d for 2 ops", disc.calls)
	}
}

func TestResolver_UnsupportedKind(t *testing.T) {
	disc := &fakeDiscovery{parts: []PartitionDescriptor{
		{LowBound: math.MinInt64, Kind: types.KindRange, Addr: "http://p1:8080"},
		{LowBound: 0, Kind: "named", Addr: "http://p2:8080"},
	}}
	r := NewResolver("users", disc)

	_, err := r.ResolveAll(context.Background())
	if !errors.Is(err, direrrors.ErrUnsupportedPartitionKind) {
		t.Fatalf("ResolveAll error = %v, want ErrUnsupportedPartitionKind", err)
	}
	_, err = r.ResolveForKey(context.Background(), "alice")
	if !errors.Is(err, direrrors.ErrUnsupportedPartitionKind) {
		t.Fatalf("ResolveForKey error = %v, want ErrUnsupportedPartitionKind", err)
	}
}

func TestResolver_DiscoveryFailure(t *testing.T) {
	disc := &fakeDiscovery{err: fmt.Errorf("zk unavailable")}
	r := NewResolver("users", disc)

	_, err := r.ResolveForKey(context.Background(), "alice")
	if !errors.Is(err, direrrors.ErrResolution) {
		t.Fatalf("error = %v, want ErrResolution", err)
	}
}

func TestResolver_EmptyTopology(t *testing.T) {
	r := NewResolver("users", &fakeDiscovery{})

	_, err := r.ResolveAll(context.Background())
	if !errors.Is(err, direrrors.ErrResolution) {
		t.Fatalf("error = %v, want ErrResolution", err)
	}
}

func TestResolver_Canceled(t *testing.T) {
	r := NewResolver("users", &fakeDiscovery{parts: threeWayTopology()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveForKey(ctx, "alice")
	if !errors.Is(err, direrrors.ErrCanceled) {
		t.Fatalf("error = %v, want ErrCanceled", err)
	}
}

func TestResolver_KeyBelowLowestBound(t *testing.T) {
	// topology that does not start at MinInt64 cannot cover every key
	disc := &fakeDiscovery{parts: []PartitionDescriptor{
		{LowBound: math.MaxInt64, Kind: types.KindRange, Addr: "http://p1:8080"},
	}}
	r := NewResolver("users", disc)

	_, err := r.ResolveForKey(context.Background(), "alice")
	if !errors.Is(err, direrrors.ErrResolution) {
		t.Fatalf("error = %v, want ErrResolution", err)
	}
}
