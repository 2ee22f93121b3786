/*
Package trie implements balance-mpt commands operating on the balance trie.
*/
package trie

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/statecommit/balance-mpt/cli/options"
	"github.com/statecommit/balance-mpt/pkg/config"
	"github.com/statecommit/balance-mpt/pkg/core/balances"
	"github.com/statecommit/balance-mpt/pkg/core/mpt"
	"github.com/statecommit/balance-mpt/pkg/services/metrics"
	"github.com/statecommit/balance-mpt/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns trie-related commands.
func NewCommands() []cli.Command {
	cfgFlags := []cli.Flag{options.ConfigFile, options.Debug}
	inFlags := append([]cli.Flag{options.Input}, cfgFlags...)
	return []cli.Command{
		{
			Name:      "put",
			Usage:     "Put balances into an empty trie and print its root",
			UsageText: "balance-mpt put [--config-file file] [--debug] <address> <balance> [<address> <balance> ...]",
			Action:    put,
			Flags:     cfgFlags,
		},
		{
			Name:      "replay",
			Usage:     "Apply balance updates from file and print the resulting root",
			UsageText: "balance-mpt replay --in file [--config-file file] [--debug]",
			Description: `Reads the list of {address, balance} entries and applies them in order
   to an empty trie. An empty balance deletes the address. Prometheus and pprof
   services are running during the replay if enabled in configuration.`,
			Action: replay,
			Flags:  inFlags,
		},
		{
			Name:      "verify",
			Usage:     "Check that the address has the claimed balance",
			UsageText: "balance-mpt verify --in file [--config-file file] [--debug] <address> <balance>",
			Description: `Replays the entries and prints "present", "absent" or "mismatch" for the
   claimed balance. Exit code is 1 unless the balance is present.`,
			Action: verify,
			Flags:  inFlags,
		},
		{
			Name:      "dump",
			Usage:     "Print the trie built from file as JSON",
			UsageText: "balance-mpt dump --in file [--config-file file] [--debug]",
			Action:    dump,
			Flags:     inFlags,
		},
	}
}

// newModule creates logger and balances module according to the
// configuration given in ctx.
func newModule(ctx *cli.Context) (*balances.Module, *zap.Logger, config.Config, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, nil, cfg, err
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, nil, cfg, err
	}
	m, err := balances.NewModule(cfg.ApplicationConfiguration.Trie, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, cfg, err
	}
	return m, log, cfg, nil
}

// load creates a module and fills it with entries from the input file.
func load(ctx *cli.Context) (*balances.Module, *zap.Logger, error) {
	entries, err := readEntries(ctx.String("in"))
	if err != nil {
		return nil, nil, err
	}
	m, log, _, err := newModule(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, err = m.UpsertBatch(entries); err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return m, log, nil
}

func printRoot(ctx *cli.Context, root util.Uint256) {
	fmt.Fprintf(ctx.App.Writer, "0x%s\n", root.StringBE())
}

func put(ctx *cli.Context) error {
	entries, err := entriesFromArgs(ctx.Args())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	m, log, _, err := newModule(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	if _, err = m.UpsertBatch(entries); err != nil {
		return cli.NewExitError(err, 1)
	}
	printRoot(ctx, m.StateRoot())
	return nil
}

func replay(ctx *cli.Context) error {
	entries, err := readEntries(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	m, log, cfg, err := newModule(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	services := []*metrics.Service{
		metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log),
		metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log),
	}
	for _, s := range services {
		if err := s.Start(); err != nil {
			return cli.NewExitError(fmt.Errorf("can't start %s service: %w", s.Name(), err), 1)
		}
		defer s.ShutDown()
	}

	n, err := m.UpsertBatch(entries)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printRoot(ctx, m.StateRoot())
	fmt.Fprintf(ctx.App.Writer, "entries: %d, addresses: %d, version: %d\n", n, m.Len(), m.Version())
	return nil
}

func verify(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return cli.NewExitError(errors.New("expected <address> <balance>"), 1)
	}
	m, log, err := load(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	res := m.Check(args[0], args[1])
	fmt.Fprintln(ctx.App.Writer, res)
	if res != mpt.Present {
		return cli.NewExitError(fmt.Errorf("balance of %s is %s", args[0], res), 1)
	}
	return nil
}

type trieDump struct {
	Root      util.Uint256   `json:"root"`
	Version   uint64         `json:"version"`
	Addresses int            `json:"addresses"`
	Trie      mpt.NodeObject `json:"trie"`
}

func dump(ctx *cli.Context) error {
	m, log, err := load(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	if err := m.Validate(); err != nil {
		return cli.NewExitError(err, 1)
	}
	s := m.Snapshot()
	d := trieDump{
		Root:      s.StateRoot(),
		Version:   m.Version(),
		Addresses: m.Len(),
		Trie:      mpt.NodeObject{Node: s.Root()},
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(data))
	return nil
}
