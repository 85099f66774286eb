package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Attentive/internal/db"
	"github.com/soaringjerry/Attentive/internal/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print completed-session statistics for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, closeStore, err := db.Open(ctx, cfg.Driver, cfg.DBPath, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		u, err := store.FindUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("no user with email %s", email)
		}
		st, err := services.NewStatsService(store).UserStats(ctx, u.ID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"user": u.Name, "email": u.Email, "stats": st})
	},
}

func init() {
	statsCmd.Flags().String("email", "", "Email of the registered user")
}
