// SPDX-License-Identifier: MIT
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// The file path connects a parsed in-memory definition back to its physical
// source on disk, so that errors can say exactly in which file a problematic
// stage, axis or input is declared when a pipeline is split across files.
package model

import "fmt"

type FSInfo struct {
	FilePath string
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// Describe returns "<kind> <name> (<file>)" for log and error messages.
func (f *FSInfo) Describe(kind, name string) string {
	if f == nil || f.FilePath == "" {
		return fmt.Sprintf("%s %q", kind, name)
	}
	return fmt.Sprintf("%s %q (%s)", kind, name, f.FilePath)
}
