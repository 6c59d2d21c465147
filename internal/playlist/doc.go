// package playlist reconciles discovery output against the live playlist.
//
// The stage is split in two halves that never run inside one another:
// planners read the cached playlist snapshot and the per-artist documents
// and emit a persisted mutation plan without any API calls beyond an
// expired snapshot refresh, and the applier executes a previously written
// plan action by action, checkpointing progress after every mutation.
package playlist
