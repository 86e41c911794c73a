package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/spf13/cobra"

	"github.com/grez-lucas/form-autofill/internal/autofill/browser"
	"github.com/grez-lucas/form-autofill/internal/autofill/config"
)

// browserOptions are the flags of every command that opens a live page.
type browserOptions struct {
	headless bool
	stealth  bool
	chrome   string
	wait     bool
}

func (o *browserOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.headless, "headless", true, "Run the browser without a window")
	f.BoolVar(&o.stealth, "stealth", true, "Mask automation fingerprints")
	f.StringVar(&o.chrome, "chrome", "", "Chromium executable (default: found or downloaded by Rod)")
	f.BoolVar(&o.wait, "wait", false, "Keep the browser open until ENTER is pressed")
}

func (o *browserOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Headless = o.headless
	}
	if flags.Changed("stealth") {
		cfg.Stealth = o.stealth
	}
	if flags.Changed("chrome") {
		cfg.ChromeBin = o.chrome
	}
}

// session is a launched browser with one page loaded.
type session struct {
	browser *rod.Browser
	page    *rod.Page
}

func parsePageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", raw)
	}
	return u, nil
}

// openSession launches the browser, loads target and waits until the page
// and its frames stop changing.
func openSession(ctx context.Context, cfg *config.Config, target *url.URL) (*session, error) {
	b, err := browser.Launch(browser.LaunchOptions{
		Bin:      cfg.ChromeBin,
		Headless: cfg.Headless,
		Stealth:  cfg.Stealth,
	})
	if err != nil {
		return nil, err
	}

	s := &session{browser: b}
	page, err := browser.NewPage(b, cfg.Stealth)
	if err != nil {
		s.close()
		return nil, err
	}
	s.page = page.Context(ctx)

	if err := s.page.Navigate(target.String()); err != nil {
		s.close()
		return nil, fmt.Errorf("navigate to %s: %w", target, err)
	}
	if err := s.page.WaitLoad(); err != nil {
		s.close()
		return nil, fmt.Errorf("wait for load: %w", err)
	}
	if err := browser.WaitForFrames(s.page); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// finish optionally holds the window open, then closes the browser.
func (s *session) finish(cmd *cobra.Command, wait bool) {
	if wait {
		fmt.Fprint(cmd.ErrOrStderr(), "Press ENTER to close the browser: ")
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	}
	s.close()
}

func (s *session) close() {
	_ = s.browser.Close()
}

type pageOptions struct {
	browserOptions
	frame    string
	humanize bool
}

func newPageCommand(global *globalOptions) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "page <url>",
		Short: "Open a URL in Chromium and fill its form",
		Long: `Open a URL in Chromium, wait for the page and its frames to settle, and fill
the form. The email domain defaults to the page host without "www.".`,
		Example: `  autofill page https://shop.example.org/register
  autofill page --frame deepest --humanize --headless=false http://localhost:8080/signup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, global, opts, args[0])
		},
	}

	opts.register(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.frame, "frame", browser.FrameTop, `Fill inside an iframe: "deepest" or a CSS selector`)
	f.BoolVar(&opts.humanize, "humanize", false, "Type text values with human-like pauses")

	return cmd
}

func runPage(cmd *cobra.Command, global *globalOptions, opts *pageOptions, rawURL string) error {
	target, err := parsePageURL(rawURL)
	if err != nil {
		return err
	}

	cfg, err := global.settings(cmd)
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if cmd.Flags().Changed("humanize") {
		cfg.Humanize = opts.humanize
	}

	id, err := global.identity(cfg, target.Hostname())
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cfg, target)
	if err != nil {
		return err
	}
	defer s.finish(cmd, opts.wait)

	frame, err := browser.ResolveFrame(s.page, opts.frame)
	if err != nil {
		return err
	}

	typing := browser.TypingNone
	if cfg.Humanize {
		typing = browser.TypingHuman
	}

	report, err := global.fill(cmd.Context(), cfg, id, browser.NewDocument(frame, browser.WithTyping(typing)))
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, global.json)
}
