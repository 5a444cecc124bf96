// Package cmap provides a sharded concurrent map with string keys.
//
// Each shard has its own RWMutex; a key's shard is chosen with maphash.
// Range and Keys lock one shard at a time, so they do not observe a
// consistent snapshot across shards.
package cmap
