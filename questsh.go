// Package questsh holds the domain types shared by the simulated shell: the
// path resolver, filesystem and command contracts, results and events.
//
// The concrete filesystem lives in package filesystem, built-in commands in
// package commands and the parser/interpreter in package shell.
package questsh

// Version is reported by `uname -r`.
const Version = "6.1.0-quest"
