package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/condor/dota-replay/pkg/catalog"
	"github.com/condor/dota-replay/pkg/dota"
)

var (
	flagIndent    bool
	flagNoActions bool
	flagNoChat    bool
	flagRelaxed   bool
	flagMapsDir   string
	flagOutput    string
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:           "dota-replay",
		Short:         "DotA Allstars replay decoder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	parseCmd := &cobra.Command{
		Use:   "parse <replay.w3g>",
		Short: "Decode a replay and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().BoolVar(&flagIndent, "indent", false, "indent the JSON output")
	parseCmd.Flags().BoolVar(&flagNoActions, "no-actions", false, "skip the action stream (drops stats, draft and hero data)")
	parseCmd.Flags().BoolVar(&flagNoChat, "no-chat", false, "drop chat messages")
	parseCmd.Flags().BoolVar(&flagRelaxed, "relaxed", false, "skip unknown action opcodes instead of failing")
	parseCmd.Flags().StringVar(&flagMapsDir, "maps-dir", "", "directory with map data XML files (entity codes stay unresolved without it)")
	parseCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write JSON to a file instead of stdout")
	parseCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log decode diagnostics")
	root.AddCommand(parseCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !flagVerbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	opts := dota.Options{
		SkipActions: flagNoActions,
		SkipChat:    flagNoChat,
		Relaxed:     flagRelaxed,
		Log:         logBridge(logger),
	}
	if flagMapsDir != "" {
		opts.Resolver = catalog.NewResolver(flagMapsDir)
	}

	replay, err := dota.NewParser(opts).Parse(args[0])
	if err != nil {
		return err
	}

	out, err := replay.ToJSON(flagIndent)
	if err != nil {
		return err
	}
	if flagOutput != "" {
		return os.WriteFile(flagOutput, append(out, '\n'), 0o644)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func logBridge(logger zerolog.Logger) dota.LogFunc {
	return func(level dota.LogLevel, msg string) {
		switch level {
		case dota.LogDebug:
			logger.Debug().Msg(msg)
		case dota.LogInfo:
			logger.Info().Msg(msg)
		case dota.LogWarn:
			logger.Warn().Msg(msg)
		default:
			logger.Error().Msg(msg)
		}
	}
}
