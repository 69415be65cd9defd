// Package archiver turns a list of files and directories into a single ZIP
// artifact on disk.
//
// Build drives three steps for every input, strictly in order: Classify checks
// that the input exists and is a file or directory, Walk linearizes it into
// (absolute path, relative name) items, and each item is streamed into an
// archive.Writer. Only one input file is open at any time, and file content
// is copied through a fixed size buffer.
//
// Symlinks named directly as inputs are followed. Symlinks found while
// walking a directory are skipped, as are sockets, devices and FIFOs.
package archiver
