package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grez-lucas/form-autofill/internal/autofill/browser"
)

func newFramesCommand(global *globalOptions) *cobra.Command {
	opts := &browserOptions{}

	cmd := &cobra.Command{
		Use:   "frames <url>",
		Short: "List the iframes of a page and the form controls in each",
		Long: `Load a URL in Chromium and print its frame tree with the number of form
controls per frame. Use the printed selector with "autofill page --frame".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parsePageURL(args[0])
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

			frames, err := browser.FrameTree(s.page)
			if err != nil {
				return err
			}
			writeFrames(cmd, frames)
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

func writeFrames(cmd *cobra.Command, frames []browser.FrameInfo) {
	out := cmd.OutOrStdout()
	for _, f := range frames {
		indent := strings.Repeat("  ", f.Depth)
		if f.Depth == 0 {
			fmt.Fprintf(out, "%s%s  controls=%d\n", indent, f.Path, f.Controls)
			continue
		}
		if f.Err != nil {
			fmt.Fprintf(out, "%s%s  %s\n", indent, f.Selector, errorColor.Sprint(f.Err))
			continue
		}
		line := fmt.Sprintf("%s%s  visible=%v  controls=%d  src=%s", indent, f.Selector, f.Visible, f.Controls, truncate(f.Src, 80))
		if !f.Visible || f.Controls == 0 {
			line = dimColor.Sprint(line)
		}
		fmt.Fprintln(out, line)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
