package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njprem/lighthouse-api/internal/config"
	"github.com/njprem/lighthouse-api/internal/logging"
	"github.com/njprem/lighthouse-api/internal/service"
)

const (
	seedUserCount = 50
	seedPassword  = "password123"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo accounts user001 through user050",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger, closer := logging.Setup(cfg.LogLevel, cfg.LogstashTCPAddr)
			defer closer.Close()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			created, err := seedAccounts(cmd.Context(), a.auth, seedUserCount)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded %d accounts (%d already present)\n", created, seedUserCount-created)
			return nil
		},
	}
}

// seedAccounts registers userNNN accounts, skipping any that already exist.
func seedAccounts(ctx context.Context, auth *service.AuthService, count int) (int, error) {
	created := 0
	for i := 1; i <= count; i++ {
		_, err := auth.Register(ctx, service.RegisterInput{
			FirstName: "User",
			LastName:  fmt.Sprintf("%03d", i),
			Username:  fmt.Sprintf("user%03d", i),
			Password:  seedPassword,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrUsernameTaken):
		default:
			return created, fmt.Errorf("seed user%03d: %w", i, err)
		}
	}
	return created, nil
}
