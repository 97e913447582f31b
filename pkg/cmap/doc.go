// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are routed to shards by their murmur3 hash; each shard has its own
// RWMutex. Sweep visits shards one at a time so a long expiry pass never
// holds more than one shard lock.
//
// Usage:
//
//	m := cmap.NewWithShards[string, int64](64)
//	m.Set("jti", deadline)
//	n := m.Sweep(func(_ string, d int64) bool { return d < now })
package cmap
