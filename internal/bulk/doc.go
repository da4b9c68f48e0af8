// Package bulk generates and runs the warehouse's object storage transfers:
// COPY to load files into a table and UNLOAD to write a query result out.
//
// Options are appended verbatim and are not checked against the warehouse's
// option grammar.
package bulk
