package stockbook

import "errors"

// Error kinds returned by this package and its storage and retrieval
// adapters. They are always wrapped with some context, use errors.Is to test
// for them.
var (
	// ErrInvalidArgument reports bad user input: non-numeric or non-positive
	// amounts, empty symbol or name, negative shares.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientShares reports a sell exceeding the current holding.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrUnknownStock reports a symbol that is not tracked in the portfolio.
	ErrUnknownStock = errors.New("unknown stock")
	// ErrNoObservations reports a stock without any daily observation.
	ErrNoObservations = errors.New("no observations")

	// ErrMalformedRow reports a raw row rejected during ingestion. It never
	// aborts a batch.
	ErrMalformedRow = errors.New("malformed row")
	// ErrRetrievalUnavailable reports a network or automation failure of a
	// history fetcher.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrFileNotFound reports a missing import file.
	ErrFileNotFound = errors.New("file not found")
	// ErrParseError reports an import file that cannot be read as a whole.
	ErrParseError = errors.New("parse error")

	// ErrStoreNotInitialized reports a load or save on storage that was never created.
	ErrStoreNotInitialized = errors.New("store not initialized")
	// ErrStoreCorrupt reports persisted data that does not match the schema.
	ErrStoreCorrupt = errors.New("store corrupt")
	// ErrStoreAlreadyExists reports a redundant create, storage is left untouched.
	ErrStoreAlreadyExists = errors.New("store already exists")
)
