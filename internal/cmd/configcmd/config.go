// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tocsite configuration",
		Long:  `Commands for viewing, checking, and clearing tocsite configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdCheck())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars are the environment variables that override the config file.
var envVars = []string{
	"TOCSITE_DIR", "TOCSITE_PATH_PREFIX", "TOCSITE_OUTPUT", "TOCSITE_LISTEN",
	"TOCSITE_REMOTE_URL", "TOCSITE_REMOTE_USER", "TOCSITE_REMOTE_TOKEN",
}
