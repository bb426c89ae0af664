package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-matcher/internal/api/middleware"
	"resume-matcher/internal/models"
	"resume-matcher/internal/postgresdb"
	"resume-matcher/internal/processor"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		if err := postgresdb.Migrate(cmd.Context(), cfg.Database.URL); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Mark uploads stuck in processing as failed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		store, err := postgresdb.New(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer store.Close()

		w := processor.NewWorker(store, nil, nil,
			processor.WithLogger(log),
			processor.WithStaleAfter(cfg.Worker.StaleAfter),
		)
		n, err := w.RecoverStale(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("stale uploads recovered", zap.Int64("count", n))
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and HR onboarding profiles",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user and print its id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")

		u := &models.User{Name: name, Email: email, Role: models.Role(role)}
		if !u.Role.Valid() {
			return fmt.Errorf("unknown role %q", role)
		}

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		store, err := postgresdb.New(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer store.Close()

		if err := store.CreateUser(cmd.Context(), u); err != nil {
			return err
		}
		log.Info("user created", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
		fmt.Fprintln(cmd.OutOrStdout(), u.ID)
		return nil
	},
}

var userOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Save the company profile of an HR user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")
		size, _ := cmd.Flags().GetString("company-size")
		timeline, _ := cmd.Flags().GetString("hiring-timeline")
		industry, _ := cmd.Flags().GetString("industry-focus")

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		store, err := postgresdb.New(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer store.Close()

		u, err := store.UserByID(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if u.Role != models.RoleHR {
			return fmt.Errorf("user %d is not an hr user", userID)
		}

		if err := store.SaveOnboarding(cmd.Context(), &models.HROnboarding{
			UserID:         userID,
			CompanySize:    size,
			HiringTimeline: timeline,
			IndustryFocus:  industry,
		}); err != nil {
			return err
		}
		log.Info("hr onboarding saved", zap.Int64("user_id", userID))
		return nil
	},
}

var userTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if err := cfg.ValidateAPI(); err != nil {
			return err
		}
		store, err := postgresdb.New(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer store.Close()

		u, err := store.UserByID(cmd.Context(), userID)
		if err != nil {
			return err
		}

		token, err := middleware.IssueToken([]byte(cfg.API.JWTSecret), *u, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().String("role", string(models.RoleCandidate), "candidate or hr")

	userOnboardCmd.Flags().Int64("user-id", 0, "id of the hr user")
	userOnboardCmd.Flags().String("company-size", "", "company size")
	userOnboardCmd.Flags().String("hiring-timeline", "", "hiring timeline")
	userOnboardCmd.Flags().String("industry-focus", "", "industry focus")
	_ = userOnboardCmd.MarkFlagRequired("user-id")

	userTokenCmd.Flags().Int64("user-id", 0, "id of the user")
	userTokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	_ = userTokenCmd.MarkFlagRequired("user-id")

	userCmd.AddCommand(userCreateCmd, userOnboardCmd, userTokenCmd)
	rootCmd.AddCommand(migrateCmd, recoverCmd, userCmd)
}
