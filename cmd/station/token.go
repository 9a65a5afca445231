package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"train-station/internal/auth"
)

// newTokenCmd issues HS256 tokens for local testing against a JWT_SECRET deployment.
func newTokenCmd(a *app) *cobra.Command {
	var (
		user  string
		staff bool
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			token, err := auth.IssueToken(a.cfg.Auth.JWTSecret, user, staff, ttl)
			if err != nil {
				return err
			}
			a.log.LogSecurity("TOKEN_ISSUED", fmt.Sprintf("user=%s staff=%t ttl=%s", user, staff, ttl))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "subject (user id) of the token")
	cmd.Flags().BoolVar(&staff, "staff", false, "grant staff rights")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
