// Package whetl holds the public contracts of the warehouse ETL helper layer:
// the Executor and Connector interfaces, the import-ledger status model,
// upsert and bulk-transfer specifications, and the error taxonomy shared by
// every internal package.
//
// Most callers interact with the concrete implementations in internal/ via
// the whetl CLI; the types here exist so those implementations can be
// swapped for mocks in tests.
package whetl
