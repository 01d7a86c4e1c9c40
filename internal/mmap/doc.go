// Package mmap provides read-only memory-mapped file access.
//
//	m, err := mmap.Open("nodes/00000000000000000001.snap")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// On unix platforms the file is mapped with mmap(2) and Advise forwards to
// madvise(2). Elsewhere the file is read into memory and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice returned by Bytes after Close returns.
package mmap
