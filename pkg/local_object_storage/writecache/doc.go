// Package writecache implements write-cache for objects.
//
// Write-cache has 3 main components:
//  1. memory: small objects are kept in memory until persisted to disk
//  2. small.bolt: BoltDB database for small objects
//  3. FSTree: file system tree for bigger objects
//
// Flushing from the write-cache to the main storage is done in the background.
// To make it possible to serve Read requests after the object was flushed,
// an LRU cache of flushed addresses is maintained. The actual deletion of
// the object from the write-cache is done during eviction from this cache.
package writecache
