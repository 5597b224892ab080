// SPDX-License-Identifier: MIT
// Package coreset is a coreset construction and k-median/k-means
// clustering engine for large, possibly sparse, possibly graph-structured
// datasets.
//
// Given a point set and a dissimilarity measure, the engine computes:
//
//   - a small weighted coreset whose clustering cost approximates the
//     full dataset's for any candidate center set (sensitivity-based
//     importance sampling via the alias method), and
//   - a k-center/k-median solution via D²/k-means++/kmc² seeding followed
//     by Lloyd, mini-batch, or local-search refinement.
//
// The module is organized as a small dependency graph of leaf packages
// composed by engine, its single orchestrating entry point:
//
//	oracle        - point sets, distance oracles, dissimilarity measures, priors
//	matrix        - dense/sparse/on-disk Oracle backends
//	graphoracle   - Oracle adapter over an externally supplied shortest-path function
//	aliassampler  - Walker's alias method, O(1) weighted sampling
//	sensitivity   - BFL/FL/LFKF importance sampling and coreset construction
//	seeding       - D²/k-means++ seeding with optional kmc² and local-search++
//	lloyd         - Lloyd-style hard clustering refinement
//	minibatch     - stochastic mini-batch refinement
//	lsearch       - local-search k-median swap refinement
//	engine        - SumOpts-style orchestration of the above
//
// Graph parsing and shortest-path computation, sparse-matrix ingestion
// from external formats, CLI/UI layers, and general linear algebra remain
// outside this module's scope; the engine consumes distances and weights
// through the oracle package's narrow interfaces and never performs these
// jobs itself. See DESIGN.md for the grounding ledger and SPEC_FULL.md for
// the full requirements this module implements.
package coreset
