package metrics

// Subsystem is the prefix of all metric names exported by this module.
const Subsystem = "steward_provenance"
