package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	answerWindow      time.Duration
	bind              string
	countdownInterval time.Duration
	countdownTicks    int
	port              int
	prefix            string
	profile           bool
	publicURL         string
	questions         string
	tlsCert           string
	tlsKey            string
	roundPause        time.Duration
	verbose           bool
	version           bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.countdownTicks < 1 {
		return fmt.Errorf("invalid countdown tick count (must be at least 1): %d", c.countdownTicks)
	}
	if c.countdownInterval <= 0 {
		return fmt.Errorf("invalid countdown interval (must be positive): %s", c.countdownInterval)
	}
	if c.answerWindow <= 0 {
		return fmt.Errorf("invalid answer window (must be positive): %s", c.answerWindow)
	}
	if c.roundPause <= 0 {
		return fmt.Errorf("invalid round pause (must be positive): %s", c.roundPause)
	}
	if c.questions == "" {
		return errors.New("a question bank path is required")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// joinURL is the address encoded into the QR code shown on the host display.
// Players scan it to reach the mobile controller page.
func (c *Config) joinURL() string {
	base := strings.TrimSuffix(c.publicURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s://%s", c.scheme(), net.JoinHostPort(c.bind, strconv.Itoa(c.port)))
	}
	return base + strings.TrimSuffix(c.prefix, "/") + "/mobile"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIABOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "triviabox",
		Short:         "A realtime trivia game for one TV and many phones.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.DurationVar(&cfg.answerWindow, "answer-window", 10*time.Second, "time players have to answer each question (env: TRIVIABOX_ANSWER_WINDOW)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TRIVIABOX_BIND)")
	fs.DurationVar(&cfg.countdownInterval, "countdown-interval", time.Second, "delay between countdown ticks (env: TRIVIABOX_COUNTDOWN_INTERVAL)")
	fs.IntVar(&cfg.countdownTicks, "countdown-ticks", 5, "number of countdown ticks before the first question (env: TRIVIABOX_COUNTDOWN_TICKS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TRIVIABOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TRIVIABOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TRIVIABOX_PROFILE)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally reachable base URL, encoded into the join QR code (env: TRIVIABOX_PUBLIC_URL)")
	fs.StringVarP(&cfg.questions, "questions", "q", "questions.json", "path to the question bank, JSON or YAML (env: TRIVIABOX_QUESTIONS)")
	fs.DurationVar(&cfg.roundPause, "round-pause", 3*time.Second, "pause between scoring one question and opening the next (env: TRIVIABOX_ROUND_PAUSE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TRIVIABOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TRIVIABOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TRIVIABOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TRIVIABOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("triviabox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
