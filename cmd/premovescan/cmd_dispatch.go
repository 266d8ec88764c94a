package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/premovescan/premovescan/internal/alert"
	"github.com/premovescan/premovescan/internal/command"
	"github.com/premovescan/premovescan/internal/config"
	"github.com/premovescan/premovescan/internal/errs"
	applog "github.com/premovescan/premovescan/internal/log"
	"github.com/premovescan/premovescan/internal/metrics"
	"github.com/premovescan/premovescan/internal/scan"
	"github.com/premovescan/premovescan/internal/store"
)

var cmdDispatchCmd = &cobra.Command{
	Use:   "cmd [command line]",
	Short: "Dispatch a single operator command (/trade, /close, /status, /adjust, /scan, /watchlist)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCmdDispatch,
}

func init() {
	rootCmd.AddCommand(cmdDispatchCmd)
}

func runCmdDispatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return taggedErr(errs.Config, err)
	}
	applog.Init(cfg.LogLevel, isTerminal())

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return taggedErr(errs.Config, err)
	}
	defer st.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return taggedErr(errs.Internal, err)
	}
	mcol := metrics.New(prometheus.NewRegistry())
	sink := alert.NewConsoleSink(applog.Component("alert"))
	scheduler := scan.New(registry, st, mcol, sink, cfg, applog.Component("scan"))

	parsed, err := command.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}

	dispatcher := command.NewStoreDispatcher(st, scheduler, cfg.Risk)
	out, err := dispatcher.Dispatch(parsed)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
