// Package repositories implements SQLite persistence for the entities around the pipeline.
//
// The permanent track table is written exclusively by the loader's
// stage-and-merge path; [TrackRepository] is the read side used by the
// dashboard layer. [PlaylistRepository] keeps the playlist display entity in
// step with successful loads, and [RunRepository] records pipeline run
// history with status transitions.
//
// Sequence numbers provide stable, human-readable run ordering independent of
// UUIDs and timestamps; [NextSequence] atomically increments per-name
// counters in the sequences table.
package repositories
