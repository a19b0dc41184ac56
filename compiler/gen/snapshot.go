package gen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/xjoin"
)

// SnapshotNamespace prefixes every snapshot cache key.
const SnapshotNamespace = "xjoin-descriptors"

// Snapshot is the persisted form of a node's descriptors.
type Snapshot struct {
	Schema string        `msgpack:"schema"`
	Digest string        `msgpack:"digest"`
	Fields []*Descriptor `msgpack:"fields"`
}

// EncodeSnapshot encodes the node's descriptors and returns the payload and its digest.
func EncodeSnapshot(n *Node) ([]byte, string, error) {
	fields, err := marshal(n.Fields)
	if err != nil {
		return nil, "", NewGenerationError("snapshot", "", "encode descriptors", err)
	}
	sum := sha256.Sum256(fields)
	digest := hex.EncodeToString(sum[:])
	b, err := marshal(&Snapshot{Schema: n.Name, Digest: digest, Fields: n.Fields})
	if err != nil {
		return nil, "", NewGenerationError("snapshot", "", "encode snapshot", err)
	}
	return b, digest, nil
}

// marshal encodes v with sorted map keys, so map defaults digest stably.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot decodes a payload produced by EncodeSnapshot.
func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, NewGenerationError("snapshot", "", "decode snapshot", err)
	}
	return &s, nil
}

// Snapshots stores node descriptors in a cache so unchanged schemas can be
// skipped on regeneration.
type Snapshots struct {
	Cache xjoin.Cache
	// TTL of stored snapshots; zero keeps them until replaced.
	TTL time.Duration
}

// NewSnapshots returns a Snapshots backed by cache, or by an in-memory cache if nil.
func NewSnapshots(cache xjoin.Cache) *Snapshots {
	if cache == nil {
		cache = xjoin.NewMemoryCache()
	}
	return &Snapshots{Cache: cache}
}

func snapshotKey(schema, digest string) xjoin.CacheKey {
	return xjoin.CacheKey{Namespace: SnapshotNamespace, Schema: schema, Digest: digest}
}

// Update records the node's current descriptors. It reports whether they
// differ from the previously recorded ones.
func (s *Snapshots) Update(ctx context.Context, n *Node) (bool, error) {
	b, digest, err := EncodeSnapshot(n)
	if err != nil {
		return false, err
	}
	key := snapshotKey(n.Name, digest)
	prev, err := s.Cache.Get(ctx, key.String())
	if err != nil {
		return false, fmt.Errorf("xjoin: read snapshot %s: %w", key, err)
	}
	if prev != nil {
		return false, nil
	}
	if err := s.Cache.DeletePrefix(ctx, key.Prefix()); err != nil {
		return false, fmt.Errorf("xjoin: evict snapshots of %s: %w", n.Name, err)
	}
	if err := s.Cache.Set(ctx, key.String(), b, s.TTL); err != nil {
		return false, fmt.Errorf("xjoin: write snapshot %s: %w", key, err)
	}
	return true, nil
}

// Changed reports which nodes of g differ from their recorded snapshots and
// records the new ones.
func (s *Snapshots) Changed(ctx context.Context, g *Graph) ([]*Node, error) {
	var changed []*Node
	for _, n := range g.Nodes {
		ok, err := s.Update(ctx, n)
		if err != nil {
			return nil, err
		}
		if ok {
			changed = append(changed, n)
		}
	}
	return changed, nil
}

// Get returns the recorded snapshot of the node with the given digest, or nil.
func (s *Snapshots) Get(ctx context.Context, schema, digest string) (*Snapshot, error) {
	b, err := s.Cache.Get(ctx, snapshotKey(schema, digest).String())
	if err != nil || b == nil {
		return nil, err
	}
	return DecodeSnapshot(b)
}
