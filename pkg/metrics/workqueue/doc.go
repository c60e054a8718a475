/*
Package workqueue exports the metrics of k8s.io/client-go/util/workqueue
queues via the registry of package metrics.

Each named queue must be mapped to a subsystem with RegisterSubsystem
before it is created, so that its metrics share the prefix of the other
metrics of the owning package.
*/
package workqueue
