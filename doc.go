// Package capgains computes realized capital gains from a chronological
// ledger of security transactions. It is designed to be deterministic and
// auditable: every disposal is explained by the lots it consumed.
//
// The core functionalities include:
//   - Lot Book: the ordered open acquisitions of a company, rescaled in place
//     by stock splits using the running share balance.
//   - Lot Matching: FIFO or tax-optimized selection of the lot a disposal
//     consumes, optionally restricted to the disposal's own account.
//   - Gain Classification: holding period, long/short term classification,
//     financial-year tax rate lookup and the 31-Oct-2018 grandfathering floor.
//   - Runner: per-company folds run concurrently and merged into a single,
//     ordered sequence of gain records.
//
// The package performs no I/O. Reading broker statements lives in the ingest
// package and writing reports in the renderer package; both serve the `cgc`
// command-line tool and its HTTP server.
package capgains
