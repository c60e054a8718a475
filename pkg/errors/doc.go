/*
Package errors provides annotations for errors that control how callers
react to them.

An error can be annotated with an error class (infrastructure, content,
configuration) and with its recoverability. Annotations are transparent:
the message is unchanged and errors.Is / errors.As see the wrapped error.
*/
package errors
