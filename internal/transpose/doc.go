// Package transpose implements the transposition accumulator used for bulk
// import into bit planes.
//
// Values are bit-scanned into their set-bit positions; for each position
// the absolute element index is appended to that plane's row of a
// fixed-width matrix. A full row is handed to a flush callback which loads it
// into the plane in one sorted bulk call. Rows only ever receive ascending
// indices, so flushed rows are always sorted.
package transpose
