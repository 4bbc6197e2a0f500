package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func newUploadCommand(e *env) *Command {
	cmd := &Command{
		Name:        "upload",
		Description: "Upload an image and print its URL",
		Flags:       newFlagSet("upload"),
	}
	api := addAPIFlags(cmd.Flags, e)
	file := cmd.Flags.String("file", "", "Image to upload")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *file == "" {
			return fmt.Errorf("file is required")
		}

		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", *file, err)
		}
		defer f.Close()

		c, err := api.client(e)
		if err != nil {
			return err
		}
		res, err := c.Upload(context.Background(), filepath.Base(*file), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s (%s, %d bytes)\n", res.URL, res.MIME, res.Size)
		return nil
	}
	return cmd
}
