package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio-client/models"
)

func (a *App) newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or a document",
		Long: `Upload a file. Images (png, jpg, jpeg, gif, webp, svg) go to the image
endpoint, documents (pdf, doc, docx) to the document endpoint. The file is
checked against the upload policy before it is sent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "read file", err)
			}
			name := filepath.Base(path)

			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			uploads := c.Services().Uploads

			var res models.Response[models.UploadedFile]
			switch models.CategoryOf(name) {
			case models.FileImage:
				res, err = uploads.UploadImage(cmd.Context(), name, content)
			case models.FileDocument:
				res, err = uploads.UploadDocument(cmd.Context(), name, content)
			default:
				// the image endpoint reports the policy violation
				res, err = uploads.UploadImage(cmd.Context(), name, content)
			}
			if err != nil {
				return err
			}

			file := res.Data
			return a.formatter(cmd).Success(file, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Uploaded %s (%s) to %s\n", name, models.FormatSize(file.FileSize), file.FileURL)
				return err
			})
		},
	}
}
