/*
Package metrics provides the Prometheus metrics infrastructure of the
provenance server:

-   the registry all metrics of this module are registered at
-   the HTTP endpoint exporting them
-   metrics not owned by a single package, like retries

Packages owning metrics (fingerprint, ingestctl) define them in their own
metrics subpackage and register them here.

Metrics are package global singletons. Tests observing metric values must
patch the registry with Testing.PatchRegistry and must not run in parallel
to other tests doing the same.
*/
package metrics
