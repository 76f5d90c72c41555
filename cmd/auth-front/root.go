package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "auth-front",
		Short: "Browser front end for login, registration and Google sign-in",
		Long: `auth-front serves the login, registration and dashboard screens and
talks to a remote auth API on the browser's behalf. The session token the API
returns is kept in a single encrypted cookie.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate(`{{printf "auth-front version %s\n" .Version}}`)

	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newConfigInitCmd())
	return root
}
