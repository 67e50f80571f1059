// Package apierr defines the error taxonomy shared by the client packages
// and the exit codes the command layer derives from it.
package apierr
