package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/crudusers/users-service/internal/config"
	"github.com/crudusers/users-service/internal/database"
	"github.com/crudusers/users-service/internal/seed"
	"github.com/crudusers/users-service/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultSeedURI = "mongodb://127.0.0.1:27017/" + seed.DefaultDatabase

type seeder interface {
	EnsureIndexes(ctx context.Context) (string, error)
	Create(ctx context.Context, in seed.Input) (*seed.Profile, error)
}

// NewSeedCmd builds the command that inserts one example profile.
//
//	seed --name "Jane Roe" --email jane@example.com
func NewSeedCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	var (
		dbName   string
		name     string
		email    string
		age      float64
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Insert an example user profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := v.GetString("MONGODB_URI")
			db, err := resolveDatabase(uri, dbName)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := database.ConnectMongo(ctx, uri, timeout)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			store := seed.NewStore(client.Database(db).Collection("users"))
			in := seed.Input{Name: name, Email: email, Age: &age}
			return runSeed(ctx, store, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().String("uri", defaultSeedURI, "MongoDB connection string (env MONGODB_URI)")
	_ = v.BindPFlag("MONGODB_URI", cmd.Flags().Lookup("uri"))
	cmd.Flags().StringVar(&dbName, "database", "", "database name (default: from the URI, else "+seed.DefaultDatabase+")")
	cmd.Flags().StringVar(&name, "name", "John Doe", "profile name")
	cmd.Flags().StringVar(&email, "email", "john@example.com", "profile email (unique)")
	cmd.Flags().Float64Var(&age, "age", 30, "accepted and ignored by the profile schema")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect and write timeout")

	return cmd
}

// resolveDatabase prefers an explicit name, then the URI path, then the default.
func resolveDatabase(uri, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	db, err := config.DatabaseFromURI(uri)
	if err != nil {
		return "", err
	}
	if db == "" {
		return seed.DefaultDatabase, nil
	}
	return db, nil
}

func runSeed(ctx context.Context, s seeder, in seed.Input, out, errOut io.Writer) error {
	if idx, err := s.EnsureIndexes(ctx); err != nil {
		logger.Warnf("seed: %v", err)
	} else {
		logger.Debugf("seed: index %s ready", idx)
	}

	p, err := s.Create(ctx, in)
	if err != nil {
		fmt.Fprintf(errOut, "Error creating user: %v\n", err)
		return fmt.Errorf("seed failed: %w", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "User created: %s\n", b)
	return nil
}
