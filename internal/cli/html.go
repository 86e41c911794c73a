package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grez-lucas/form-autofill/internal/autofill/htmldoc"
)

// offlineDomain is the email domain when a saved page gives no host.
const offlineDomain = "example.org"

type htmlOptions struct {
	output string
}

func newHTMLCommand(global *globalOptions) *cobra.Command {
	opts := &htmlOptions{}

	cmd := &cobra.Command{
		Use:   "html <file>",
		Short: "Fill the form of a saved HTML page offline",
		Long: `Fill the form controls of a saved HTML page without a browser and write the
filled page. Scripts on the page do not run. The step delay is off unless
--delay is given.`,
		Example: `  autofill html signup.html -o signup.filled.html
  autofill html --seed 7 --json signup.html -o /dev/null`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTML(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the filled page here instead of stdout")

	return cmd
}

func runHTML(cmd *cobra.Command, global *globalOptions, opts *htmlOptions, path string) error {
	cfg, err := global.settings(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("delay") {
		cfg.StepDelay = 0
	}

	id, err := global.identity(cfg, offlineDomain)
	if err != nil {
		return err
	}

	doc, err := htmldoc.Load(path)
	if err != nil {
		return err
	}

	report, err := global.fill(cmd.Context(), cfg, id, doc)
	if err != nil {
		return err
	}

	page, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	// The report goes to stderr when stdout carries the page.
	reportOut := cmd.OutOrStdout()
	if opts.output == "" {
		reportOut = cmd.ErrOrStderr()
		if _, err := io.WriteString(cmd.OutOrStdout(), page); err != nil {
			return err
		}
	} else if err := os.WriteFile(opts.output, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	return writeReport(reportOut, report, global.json)
}
