// Package storage is the typed persistence layer over the host-provided
// key-value store.
//
// The host owns the store; this layer only marshals typed values to and from
// a bounded byte representation and maps the host's status-code protocol into
// Go errors. Supported value types are the fixed-width numerics (int32,
// int64, uint32, uint64, float32, float64), bool, string and []byte; each
// maps to exactly one item-type tag. Fixed-width values round-trip by exact
// byte width. Text and binary items share a bound of 1024 bytes including the
// terminator, and Store rejects values within one byte of the bound with
// ErrBufferTooSmall rather than silently truncating.
//
// The store becomes available once the loader fires the storage-init hook,
// which calls Init with the host backend. Init is one-shot: the host
// guarantees at most one storage initialization per process lifetime, and the
// package models that as a never-reinitialized singleton. Every operation
// before Init returns ErrNotInitialized.
//
//	if err := storage.Store("volume", int32(80)); err != nil { ... }
//	v, err := storage.Load[int32]("volume")
//	v := storage.LoadOrDefault[int32]("volume") // never fails
//
// All operations are synchronous calls into the backend; the host serializes
// access, so the layer adds no locking of its own beyond singleton
// initialization.
package storage
