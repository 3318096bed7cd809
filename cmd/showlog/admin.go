package main

import (
	"github.com/spf13/cobra"

	"github.com/ryanjpeterson/jimbos-show-log/internal/app/users"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

func newSeedAdminCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or update the admin account from ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.ValidateAdmin(); err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), rt.cfg.Database.URL, rt.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			admin := rt.cfg.Admin
			user, err := users.New(store.New(db), nil).Seed(cmd.Context(), admin.Username, admin.Email, admin.Password)
			if err != nil {
				return err
			}
			rt.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("admin account ready")
			return nil
		},
	}
}
