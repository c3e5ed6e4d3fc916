// Package adopt takes over configuration files that already exist at a
// package's install target.
//
// The operator is shown every file that blocks the package, asked once,
// and then the linker's adopt mode moves each file into the repository
// and links it back. When git is available the resulting repository diff
// can be committed right away.
package adopt
