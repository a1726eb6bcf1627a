// Package models defines domain entities shared by the extract, transform, and load stages.
//
// The package contains two categories of types:
//
// 1. Pipeline records: transient units of work flowing through the stages
//   - [RawTrack] : a track as assembled from the upstream API, fields still loosely shaped
//   - [CanonicalTrack] : a track after normalization, every field concretely typed
//   - [FlexStrings] : tagged union for list-valued fields whose source shape varies
//
// 2. Persistent entities: rows in the relational sink
//   - [Playlist] : playlist metadata kept for the dashboard read path
//   - [PipelineRun] : one pipeline invocation with status and counters
//
// [PlaylistMeta] and [PlaylistSummary] carry playlist identity between the
// extraction layer and callers of the pipeline.
package models
