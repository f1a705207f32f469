package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/crudusers/users-service/internal/config"
	"github.com/crudusers/users-service/internal/database"
	"github.com/crudusers/users-service/internal/snapshot"
	"github.com/crudusers/users-service/internal/storage"
	"github.com/crudusers/users-service/internal/users"
	"github.com/crudusers/users-service/pkg/logger"
	"github.com/spf13/cobra"
)

type exportTarget interface {
	snapshot.Uploader
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// NewExportCmd builds the command that writes the users collection to MinIO.
//
//	export --presign 15m
//	export show --key users/20240905T202952Z.json
func NewExportCmd() *cobra.Command {
	var (
		key     string
		presign time.Duration
	)

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Write a JSON snapshot of all users to object storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			bucket, err := storage.NewMinIOStorage(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, time.Second)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			repo := users.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
			if key == "" {
				key = snapshot.Key(time.Now())
			}
			return runExport(ctx, repo, bucket, key, presign, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key (default users/<UTC timestamp>.json)")
	cmd.Flags().DurationVar(&presign, "presign", 0, "also print a download URL valid for this long")

	cmd.AddCommand(newExportShowCmd())
	return cmd
}

func newExportShowCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			bucket, err := storage.NewMinIOStorage(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), bucket, key, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key of the snapshot")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runExport(ctx context.Context, src snapshot.Lister, dst exportTarget, key string, presign time.Duration, out io.Writer) error {
	n, err := snapshot.Write(ctx, src, dst, key)
	if err != nil {
		return err
	}
	logger.Infof("export: wrote %d users to %s", n, key)
	fmt.Fprintf(out, "%s (%d users)\n", key, n)

	if presign > 0 {
		url, err := dst.GetPresignedURL(ctx, key, presign)
		if err != nil {
			return fmt.Errorf("presign %s: %w", key, err)
		}
		fmt.Fprintln(out, url)
	}
	return nil
}

func runShow(ctx context.Context, src snapshot.Downloader, key string, out io.Writer) error {
	list, err := snapshot.Read(ctx, src, key)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
