// Package upsert generates and runs the two-statement "upsert" used to sync
// a staging table into a target table: an UPDATE of rows whose uniqueness
// keys match but whose other columns differ, followed by an INSERT of rows
// whose keys are missing from the target.
//
// The statements are not atomic and take no locks. When the UPDATE succeeds
// and the INSERT fails, the target is left partially synced; run the upsert
// inside a cursor with autocommit disabled to make the pair all-or-nothing.
// Two upserts running concurrently into the same target can both insert the
// same key.
//
// Table and column names are inserted with quotes stripped and are not
// otherwise validated. Column functions are restricted to an allow-list.
package upsert
