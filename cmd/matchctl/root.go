package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"supplier-match/internal/config"
	"supplier-match/internal/matching"
)

const app = "matchctl"

// cli — общий для подкоманд viper и путь к конфигу
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           app,
		Short:         "matchctl inspects and reconciles supplier product catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is supplier-match.yaml in current directory)")
	pf.String("vocabulary", "", "vocabulary YAML file (default is the built-in flooring vocabulary)")
	pf.Float64("threshold", matching.DefaultThreshold, "similarity threshold in [0,1]")
	pf.Int("min-separator-index", matching.DefaultMinSeparatorIndex, "earliest character position at which a dash separator truncates a name")

	_ = c.v.BindPFlag("matching.vocabulary_file", pf.Lookup("vocabulary"))
	_ = c.v.BindPFlag("matching.threshold", pf.Lookup("threshold"))
	_ = c.v.BindPFlag("matching.min_separator_index", pf.Lookup("min-separator-index"))

	root.AddCommand(
		newTokenizeCmd(c),
		newScoreCmd(c),
		newReconcileCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() (config.Config, *matching.Matcher, error) {
	cfg, err := config.LoadViper(c.v, c.cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, m, nil
}
