// Package blobkzg implements the KZG polynomial-commitment engine used
// by blob-carrying data-availability layers: blob commitments, opening
// proofs, batched verification, and the cell-level erasure-coded
// operations used for availability sampling.
//
// All operations are pure functions of their inputs and an immutable
// Context handle, which holds the trusted setup and everything derived
// from it. A Context is safe for unlimited concurrent use.
package blobkzg
