// Package starkfri is the public surface of a FRI (Fast Reed-Solomon
// Interactive Oracle Proof) low-degree proximity prover/verifier.
//
// The field, polynomial, Merkle-tree, and channel building blocks live in
// internal/starkfri/core and internal/starkfri/channel; the FRI protocol
// itself — commit, query, prove, verify — lives in
// internal/starkfri/fri.Fri. This package exists to hold the error
// taxonomy external callers (an outer STARK composition, for instance)
// are expected to match on.
package starkfri
