package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devadigapratham/zpl2pdf/blob"
	"github.com/devadigapratham/zpl2pdf/config"
	"github.com/devadigapratham/zpl2pdf/i18n"
	"github.com/devadigapratham/zpl2pdf/orchestrator"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a ZPL file through a running zpl2pdf server",
	Long: `Convert submits a .zpl, .txt or .prn file (or standard input when the
file is "-" or omitted) to a zpl2pdf server, fetches the generated PDF through
the server's proxy and writes it to --output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("server", "http://localhost"+config.DefaultHTTPAddr, "base URL of the zpl2pdf server")
	convertCmd.Flags().StringP("output", "o", orchestrator.DownloadName, "where to write the PDF")
	convertCmd.Flags().Bool("url-only", false, "print the PDF URL and skip the download")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	server, _ := cmd.Flags().GetString("server")
	output, _ := cmd.Flags().GetString("output")
	urlOnly, _ := cmd.Flags().GetBool("url-only")

	locale, _ := i18n.ParseLocale(cfg.Locale)
	tr := i18n.New(locale)

	client := orchestrator.NewClient(server, &http.Client{Timeout: cfg.UpstreamTimeout}, tr.Locale().String())
	o := orchestrator.New(client, blob.NewStore(),
		orchestrator.WithTranslator(tr),
		orchestrator.WithLogger(logger),
	)
	defer o.Close()

	// Read the input
	if len(args) == 0 || args[0] == "-" {
		err = o.LoadReader(cmd.InOrStdin())
	} else {
		err = o.LoadFile(args[0])
	}
	if err != nil {
		return err
	}

	if !o.CanSubmit() {
		return errors.New("nothing to convert: the ZPL content is blank")
	}

	ctx := cmd.Context()
	if err := o.Submit(ctx); err != nil {
		if msg := o.Snapshot().ErrorMessage; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if urlOnly {
		fmt.Fprintln(out, o.PDFURL())
		return nil
	}

	// Submit leaves the preview pending; fetch it now
	if err := o.LoadPreview(ctx); err != nil {
		view := o.Snapshot().Preview
		return fmt.Errorf("%s %s", view.Message, view.DirectURL)
	}

	if err := o.SaveFile(output); err != nil {
		return err
	}

	snap := o.Snapshot()
	fmt.Fprintf(cmd.ErrOrStderr(), "PDF saved to %s (%d bytes)\n", output, snap.Preview.Size)
	fmt.Fprintln(out, snap.PDFURL)
	return nil
}
