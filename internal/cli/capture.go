package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grez-lucas/form-autofill/internal/autofill/browser"
)

type captureOptions struct {
	browserOptions
	output     string
	screenshot string
	fill       bool
}

func newCaptureCommand(global *globalOptions) *cobra.Command {
	opts := &captureOptions{}

	cmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Save a live form as one HTML file for offline filling",
		Long: `Load a URL in Chromium and save its HTML with the content of every iframe
inlined, so "autofill html" can fill it later without a browser. With --fill
the form is filled first and the filled page is saved.`,
		Example: `  autofill capture https://shop.example.org/register -o register.html
  autofill capture --fill --screenshot register.png http://localhost:8080/signup -o signup.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, global, opts, args[0])
		},
	}

	opts.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Write the page here instead of stdout")
	f.StringVar(&opts.screenshot, "screenshot", "", "Also save a PNG screenshot taken before capture")
	f.BoolVar(&opts.fill, "fill", false, "Fill the form before capturing")

	return cmd
}

func runCapture(cmd *cobra.Command, global *globalOptions, opts *captureOptions, rawURL string) error {
	target, err := parsePageURL(rawURL)
	if err != nil {
		return err
	}

	cfg, err := global.settings(cmd)
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)

	s, err := openSession(cmd.Context(), cfg, target)
	if err != nil {
		return err
	}
	defer s.finish(cmd, opts.wait)

	if opts.fill {
		id, err := global.identity(cfg, target.Hostname())
		if err != nil {
			return err
		}
		report, err := global.fill(cmd.Context(), cfg, id, browser.NewDocument(s.page))
		if err != nil {
			return err
		}
		if err := writeReport(cmd.ErrOrStderr(), report, global.json); err != nil {
			return err
		}
	}

	// The screenshot is taken before inlining changes the layout.
	if opts.screenshot != "" {
		png, err := s.page.Screenshot(false, nil)
		if err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		if err := os.WriteFile(opts.screenshot, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.screenshot, err)
		}
	}

	html, inlined, err := browser.Capture(s.page)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), html)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	_, err = successColor.Fprintf(cmd.ErrOrStderr(), "✓ saved %s (%d iframe(s) inlined)\n", opts.output, inlined)
	return err
}
