// Package cli implements the browserfx command, which drives demo programs
// on a headless host and prints what they draw.
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// logRateLimits caps log lines marked with Limit, per call site.
var logRateLimits = map[time.Duration]int{
	time.Second: 10,
	time.Minute: 100,
}

// app carries the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	cfg    Config
	logger *logiface.Logger[logiface.Event]
	styles styles
	stderr io.Writer
}

// Execute runs the command line.
func Execute() error {
	return NewCommand(os.Stdout, os.Stderr).Execute()
}

// NewCommand builds the root command. Output goes to stdout, logs go to
// stderr.
func NewCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stderr: stderr}

	root := &cobra.Command{
		Use:   `browserfx`,
		Short: `Run browserfx programs on a headless host`,
		Long: `browserfx runs small programs against a headless browser host: an event
loop, an in-memory document, and a session history. Every frame the program
draws is printed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringP(`config`, `c`, ``, `config file (default is ./browserfx.yaml if present)`)
	flags.String(`log-level`, Default().LogLevel, `log level (trace, debug, info, warning, err)`)
	flags.String(`url`, Default().URL, `initial location of the host`)
	flags.Duration(`frame-interval`, Default().FrameInterval, `animation frame period`)
	flags.Duration(`timeout`, Default().Timeout, `maximum run time`)
	flags.Bool(`passive`, Default().Passive, `host honours passive listeners`)
	flags.Bool(`strict-urls`, Default().StrictURLs, `host rejects malformed urls on navigation`)
	flags.Bool(`color`, Default().Color, `style output`)
	for key, flag := range map[string]string{
		`config`:         `config`,
		`log_level`:      `log-level`,
		`url`:            `url`,
		`frame_interval`: `frame-interval`,
		`timeout`:        `timeout`,
		`passive`:        `passive`,
		`strict_urls`:    `strict-urls`,
		`color`:          `color`,
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newCounterCommand(a),
		newRouteCommand(a),
	)
	return root
}

func (a *app) init() error {
	v := a.v
	SetDefaults(v)

	if cfgFile := v.GetString(`config`); cfgFile != `` {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		v.SetConfigName(`browserfx`)
		v.SetConfigType(`yaml`)
		v.AddConfigPath(`.`)
		// the file is optional
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`, `-`, `_`))
	v.AutomaticEnv()

	cfg, err := Load(v)
	if err != nil {
		return err
	}
	level, _ := ParseLevel(cfg.LogLevel)

	a.cfg = cfg
	a.styles = newStyles(cfg.Color)
	a.logger = stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(a.stderr)),
		stumpy.L.WithLevel(level),
		stumpy.L.WithCategoryRateLimits(logRateLimits),
	).Logger()
	return nil
}
