//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// Framebuffer and I/O bus code packs multi-byte pixel values directly
// into byte slices, which assumes little-endian byte order.
var _ = "deskvm requires a little-endian architecture" + 1
