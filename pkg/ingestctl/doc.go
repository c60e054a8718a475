/*
Package ingestctl contains the ingest controller.

Completed builds report their fingerprint records asynchronously. The
controller queues the reports, registers every fingerprint of a report
in the registry and finally attaches the record to the build. Reports
failing with recoverable errors are retried with exponential backoff.
*/
package ingestctl
