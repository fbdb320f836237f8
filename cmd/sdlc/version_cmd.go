package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in sdlc's version
	VersionMajor = 0
	// VersionMinor is the minor number in sdlc's version
	VersionMinor = 1
	// VersionPatch is the patch number in sdlc's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sdlc",
		Long:  `All software has versions. This is sdlc's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sdlc v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
