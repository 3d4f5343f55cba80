// Package pipeline composes the three stream stages — tar archival, gzip
// compression, and passphrase encryption — into one forward (Encrypt) and
// one mirrored (Decrypt) operation.
//
// The stages nest around a single file handle and run in lock-step, so the
// full archive or ciphertext is never held in memory. Finalization order is
// strict and layer-aware: the archive terminator must reach the compressor,
// the compressed trailer must reach the cipher, and the cipher's
// authentication tag must reach the file before anything beneath it closes.
// Finalizing out of order produces a truncated artifact that fails to
// decrypt.
//
// Both operations are pure functions of their inputs plus the filesystem
// side effect; there is no package-level state.
package pipeline
