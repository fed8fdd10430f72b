// Package pipeline runs finder and pair searches in parallel, one worker per
// dataset partition.
//
// Partitions are round-robin sets of sequence indices. Shards builds one
// worker per partition over a Subset view, once per dataset; searches reuse
// the workers and their match caches. Matches are mapped back to global
// sequence indices and merged into one result list. The context is checked
// before each partition starts; a running scan is never interrupted.
package pipeline
