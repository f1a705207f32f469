// Package cli holds the cobra commands behind cmd/seed and cmd/export.
package cli

import (
	"fmt"
	"os"

	"github.com/crudusers/users-service/pkg/logger"
	"github.com/spf13/cobra"
)

// Execute runs cmd and exits with status 1 on failure.
func Execute(cmd *cobra.Command) {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	if err := cmd.Execute(); err != nil {
		logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
