// Package etl implements the extract, transform, and load stages for playlist ingestion.
//
// The core abstraction is [Engine], which sequences the three stages for one
// playlist and reports a [models.PlaylistSummary] or a stage-tagged
// [PipelineError]. Stages emit progress updates via channels for non-blocking
// status reporting to CLI/HTTP layers.
//
// # Stages
//
//   - [Extractor] crawls the paginated playlist-items endpoint and resolves
//     per-track genre sets through best-effort artist lookups.
//   - [Normalize] is a pure function turning raw records into canonical ones:
//     date parsing, null policies, duration and year derivation, and uniform
//     list coercion through [models.FlexStrings].
//   - [Loader] stages canonical rows into a uniquely named staging table and
//     merges them into playlist_tracks with a single declared upsert keyed on
//     (playlist_id, track_id), all inside one transaction.
//
// # Checkpoints
//
// Between stages the engine optionally writes checkpoint artifacts (raw JSON,
// cleaned CSV and JSON) into a data directory. Checkpoints are durability
// aids only; a failed checkpoint write is logged and never fails the run.
package etl
