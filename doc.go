// Package stockbook tracks a small personal stock portfolio: the symbols
// held, their share counts and the daily close and volume of each one.
//
// The core concepts are:
//   - Stock and Observation: a tracked position and its daily price series,
//     unique by date.
//   - Portfolio: the set of stocks owned by a session, with the operations to
//     buy, sell and value them.
//   - Merge: the single ingestion path shared by manual entry, web retrieval
//     and CSV import. Invalid rows are reported, never fatal, and the last
//     value recorded for a date wins.
//   - Store: the persistence contract, implemented by the filestore (JSONL)
//     and sqlstore (SQLite) packages.
//   - HistoryFetcher: the retrieval contract, implemented by the yahoo package.
//
// This package serves as the foundational logic for the `sbk` command-line
// tool.
package stockbook
