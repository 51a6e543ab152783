// Command lifelinectl holds operator chores that do not belong in the server:
// minting triage tokens and importing the hospital bed sheet.
package main

import (
	"context"
	"fmt"
	"lifeline/config"
	"lifeline/database"
	"lifeline/repositories"
	"lifeline/utils"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "lifelinectl",
		Short: "Lifeline SOS operator tools",
	}
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(importHospitalsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <operator-id>",
		Short: "Mint a triage token signed with ADMIN_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.AdminJWTSecret == "" {
				return fmt.Errorf("ADMIN_JWT_SECRET is not set")
			}
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")
			if role != utils.RoleOperator && role != utils.RoleAdmin {
				return fmt.Errorf("role must be %q or %q", utils.RoleOperator, utils.RoleAdmin)
			}

			token, err := utils.NewJWTService(cfg.AdminJWTSecret).GenerateToken(args[0], email, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Operator email embedded in the token")
	cmd.Flags().String("role", utils.RoleOperator, "operator or admin")
	return cmd
}

func importHospitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-hospitals <csv>",
		Short: "Upsert the hospital bed sheet into MongoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Disconnect()

			n, err := database.SeedHospitals(ctx, repositories.NewHospitalRepository(db), args[0])
			if err != nil {
				return err
			}
			logrus.Infof("🏥 Imported %d hospitals from %s", n, args[0])
			return nil
		},
	}
	return cmd
}
