// Package provenance contains the API groups of the artifact provenance
// service.
package provenance

// GroupName is the name of the API group.
const GroupName = "provenance.steward.sap.com"
