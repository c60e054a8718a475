/*
Package fingerprinter computes MD5 fingerprints of the files a build
produced in its workspace, registers them and attaches the resulting
fingerprint record to the build.

It is the counterpart of the Jenkins `fingerprint` pipeline step.
*/
package fingerprinter
