// Package mmap maps input files read-only into memory.
//
// Local datasets are opened through a Mapping so that Parquet and Arrow
// readers can seek around the file without copying it into the heap.
//
// Unix uses mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice returned by Bytes after Close.
package mmap
