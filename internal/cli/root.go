// Package cli implements the autofill command line.
package cli

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grez-lucas/form-autofill/internal/autofill/config"
	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
	"github.com/grez-lucas/form-autofill/internal/autofill/identity"
)

var version = "dev"

// SetVersion overrides the version printed by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	envFiles  []string
	username  string
	email     string
	domain    string
	testUser  int
	userField []string
	password  string
	seed      uint64
	delay     time.Duration
	verbosity int
	json      bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:     "autofill",
		Version: version,
		Short:   "Fill web forms with plausible random test data",
		Long: `autofill fills every input, select and textarea of a form with random but
plausible values, one control at a time, so registration and checkout forms
can be exercised by hand or in CI without typing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	f := cmd.PersistentFlags()
	f.StringSliceVar(&opts.envFiles, "env-file", nil, "Read settings from these .env files (default .env)")
	f.StringVar(&opts.username, "username", "", "Username written to username fields")
	f.StringVar(&opts.email, "email", "", "Email written to email fields")
	f.StringVar(&opts.domain, "domain", "", "Email domain for generated identities")
	f.IntVar(&opts.testUser, "test-user", 0, "Use the numbered test account N (test1, test2, ...)")
	f.StringSliceVar(&opts.userField, "username-field", nil, "Fields that receive the username (default: none, filled as text)")
	f.StringVar(&opts.password, "password", "", "Password written to password fields")
	f.Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible values (0 picks a random seed)")
	f.DurationVar(&opts.delay, "delay", filler.DefaultStepDelay, "Pause between two controls")
	f.CountVarP(&opts.verbosity, "verbose", "v", "Log more detail (repeat for more)")
	f.BoolVar(&opts.json, "json", false, "Print the fill report as JSON")

	cmd.AddCommand(newPageCommand(opts))
	cmd.AddCommand(newHTMLCommand(opts))
	cmd.AddCommand(newCaptureCommand(opts))
	cmd.AddCommand(newFramesCommand(opts))

	return cmd
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

// settings loads the environment configuration and applies explicit flags
// on top of it.
func (o *globalOptions) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Username = o.username
	}
	if flags.Changed("email") {
		cfg.Email = o.email
	}
	if flags.Changed("domain") {
		cfg.Domain = o.domain
	}
	if flags.Changed("username-field") {
		cfg.UsernameFields = o.userField
	}
	if flags.Changed("password") {
		cfg.Password = o.password
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("delay") {
		cfg.StepDelay = o.delay
	}
	return cfg, nil
}

// identity picks the seed identity. fallbackDomain is used when neither the
// environment nor the flags name one.
func (o *globalOptions) identity(cfg *config.Config, fallbackDomain string) (filler.Identity, error) {
	domain := cfg.Domain
	if domain == "" {
		domain = fallbackDomain
	}
	if o.testUser > 0 {
		return identity.Numbered(cfg.Username, o.testUser, domain)
	}
	return identity.Resolve(cfg.Username, cfg.Email, domain, gofakeit.New(cfg.Seed))
}

// newLogger returns a zap-backed logr.Logger writing to stderr. Each -v
// enables one more V level.
func newLogger(verbosity int) (logr.Logger, func(), error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zc.DisableStacktrace = true

	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

func (o *globalOptions) fill(ctx context.Context, cfg *config.Config, id filler.Identity, doc filler.Document) (*filler.Report, error) {
	log, flush, err := newLogger(o.verbosity)
	if err != nil {
		return nil, err
	}
	defer flush()

	log.Info("filling form", "username", id.Username, "email", id.Email, "seed", cfg.Seed)

	opts := append(cfg.FillerOptions(), filler.WithLogger(log))
	return filler.New(id, opts...).Run(ctx, doc)
}
