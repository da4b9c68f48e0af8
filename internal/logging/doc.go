// Package logging provides the whetl.Logger implementations used by the CLI
// and tests.
//
//   - ConsoleLogger: line-oriented output to stderr (or any io.Writer)
//   - NullLogger: discards everything
//   - RecordingLogger: keeps messages in memory for assertions
package logging
