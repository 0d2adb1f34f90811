package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/studysync-api/internal/service"
)

var (
	tokenStudent string
	tokenName    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a student",
	Long: `Signs an access token with the configured JWT secret. Useful for local testing
against the API.

Example:
  studysync token --student 7f0c... --name "Ada"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		issued, err := service.NewTokenService(cfg.JWT).Issue(tokenStudent, tokenName)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), issued.AccessToken)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenStudent, "student", "", "Student id placed in the token")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Display name")
	_ = tokenCmd.MarkFlagRequired("student")
	rootCmd.AddCommand(tokenCmd)
}
