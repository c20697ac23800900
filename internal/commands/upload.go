package commands

import (
	"errors"
	"path/filepath"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/spf13/cobra"
)

func newUploadCommand(root *rootOptions) *cobra.Command {
	var object string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a statement or bill to the configured bucket for a later job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := root.open(cmd, app.Options{Storage: true}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Storage == nil {
				return errors.New("upload needs storage.gcs_bucket")
			}
			if object == "" {
				object = filepath.Base(args[0])
			}
			uri, err := a.Storage.UploadFile(ctx, a.Config.Storage.GCSBucket, object, args[0])
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", uri)
			return nil
		},
	}
	cmd.Flags().StringVar(&object, "object", "", "object name, defaults to the file name")
	return cmd
}
