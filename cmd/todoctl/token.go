package main

import (
	"errors"
	"fmt"
	"time"

	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/pkg/auth"

	"github.com/spf13/cobra"
)

// token
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for a user",
	Long: `Issue an API bearer token for a user.

The token is signed with JWT_SECRET and carries the user as its subject,
which the API uses as the todo owner.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

var (
	tokenUser string
	tokenTTL  time.Duration
)

var errNoSecret = errors.New("JWT_SECRET is not configured")

// openValidator builds the token signer from the environment. Tests replace it.
var openValidator = func() (*auth.JWTValidator, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errNoSecret
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User the token is issued for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenTTL <= 0 {
		return fmt.Errorf("invalid --ttl %s: must be positive", tokenTTL)
	}

	validator, err := openValidator()
	if err != nil {
		return err
	}

	token, err := validator.IssueToken(tokenUser, tokenTTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
