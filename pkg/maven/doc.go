// Package maven derives the artifact file names a Maven build deploys
// from its POM and resolves snapshot versions from repository metadata.
package maven
