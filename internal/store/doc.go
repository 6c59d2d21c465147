// package store handles all filesystem persistence: atomic JSON documents,
// the on-disk output layout, and roster loading.
//
// Every write goes through a temp-file-and-rename so a crash mid-write
// leaves the previous document intact. Readers treat a missing file as an
// empty starting state, never as an error.
package store
