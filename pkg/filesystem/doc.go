// Package filesystem holds the file operations stowman performs itself:
// metadata-preserving copies for backups and privileged installs, and
// atomic writes for the package descriptor.
package filesystem
