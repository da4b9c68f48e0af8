// Package ledger tracks the processing status of ingested files in the
// warehouse's imports table.
//
// Each file is identified by (source, file_name). A record is created only by
// a transition into STARTED or SKIPPED and is updated in place afterwards.
// Ids are cached per Ledger; the cache never expires and is cleared only by
// Cache.Clear, so rows edited out of band may be seen stale.
//
// The imports table is provisioned outside this package:
//
//	id, file_name, source, file_date, status, file_path,
//	time_imported, created_at, updated_at
package ledger
