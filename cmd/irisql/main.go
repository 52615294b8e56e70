// Package main provides a CLI for rendering and checking IRIS SQL.
//
// The CLI supports:
//   - render: Lower a query document to IRIS SQL
//   - ddl: Render CREATE TABLE statements from a table document
//   - inspect: Describe the tables of a schema
//   - ping: Check that the database answers
//   - doctor: Run health checks on configuration and schema
//
// Usage:
//
//	irisql [flags] <command>
//
// Commands that talk to the database (inspect, ping, doctor, and render or
// ddl with --exec) need database settings in irisql.yaml, IRISQL_DATABASE_*
// environment variables, or --db.
package main

func main() {
	Execute()
}
