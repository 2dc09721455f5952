// Package compress implements the length-prefixed compressed blocks used by
// the snapshot format.
//
// A block is [raw length u32][stored length u32][payload], little endian.
// A stored length of zero means the payload is the raw bytes; this is also
// chosen when compression saves less than 10%.
package compress
