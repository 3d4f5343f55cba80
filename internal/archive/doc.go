// Package archive converts a directory subtree to and from a linear tar
// stream. Entry paths are recorded relative to the source root, so an
// unpacked tree is isomorphic to the original regardless of where either
// lives on disk. Regular files, directories, and symbolic links round-trip
// with their permission bits; other entry kinds (devices, sockets, fifos)
// are rejected.
package archive
