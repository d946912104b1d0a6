// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package launcher contains the harness shared by the IPTV applications:
// command line parsing, configuration loading, logging and metrics setup
// and signal handling.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/processmetrics"
	"github.com/scionproto/mcastlab/pkg/private/prom"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/app"
	"github.com/scionproto/mcastlab/private/app/command"
	libconfig "github.com/scionproto/mcastlab/private/config"
)

// Configuration keys used by the launcher. The log keys are read from the
// same TOML file as the application configuration.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
	cfgLogConsoleDisableCaller   = "log.console.disable_caller"
)

// EnvPrefix is the prefix of environment variables that override launcher
// settings, e.g. IPTV_LOG_CONSOLE_LEVEL=debug.
const EnvPrefix = "IPTV"

// Application models an IPTV application.
type Application struct {
	// TOMLConfig holds the application configuration. It is filled from the
	// file passed with --config, or left empty if no file is given, and then
	// initialized with defaults and validated before Main is called.
	TOMLConfig libconfig.Config

	// ShortName is the short name of the application. If empty, the
	// executable name is used.
	ShortName string

	// Role is exported as the iptv_role_info metric. If empty, the short
	// name is used.
	Role string

	// Flags registers additional flags of the root command.
	Flags func(*pflag.FlagSet)

	// RequiredInterfaces returns the names of the network interfaces the
	// application uses. The launcher waits until they exist and are up. It is
	// called after the configuration is initialized.
	RequiredInterfaces func() []string

	// Main is the custom logic of the application. If Main returns an error,
	// Run exits with a non-zero exit code.
	Main func(ctx context.Context) error

	// ErrorWriter specifies where error output should be printed. If nil,
	// os.Stderr is used.
	ErrorWriter io.Writer

	config *viper.Viper
}

// Run sets up the harness and then passes control to Main.
//
// Run uses os.Args and exits the process on a fatal error.
func (a *Application) Run() {
	if err := a.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(a.getErrorWriter(), "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// Execute runs the application with the given command line arguments.
func (a *Application) Execute(ctx context.Context, args []string) error {
	executable := filepath.Base(os.Args[0])
	shortName := a.getShortName(executable)

	cmd := &cobra.Command{
		Use:           executable,
		Short:         shortName,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.executeCommand(cmd.Context(), shortName)
		},
	}
	cmd.AddCommand(
		command.NewSample(cmd, command.NewSampleConfig(a.TOMLConfig)),
		command.NewVersion(cmd),
		command.NewGendocs(cmd),
	)
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (optional, defaults apply)")
	cmd.Flags().String(cfgLogConsoleLevel, "",
		"Console logging level override (debug|info|error)")
	if a.Flags != nil {
		a.Flags(cmd.Flags())
	}

	a.config = viper.New()
	a.config.SetEnvPrefix(EnvPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.config.AutomaticEnv()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktraceLevel, log.DefaultStacktraceLevel)
	a.config.SetDefault(cfgLogConsoleDisableCaller, false)
	// The flags only override the file if they are set on the command line.
	for _, key := range []string{cfgConfigFile, cfgLogConsoleLevel} {
		if err := a.config.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return err
		}
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *Application) getShortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) executeCommand(ctx context.Context, shortName string) error {
	if file := a.config.GetString(cfgConfigFile); file != "" {
		// Load launcher settings from the same file as the application
		// configuration.
		a.config.SetConfigType("toml")
		a.config.SetConfigFile(file)
		if err := a.config.ReadInConfig(); err != nil {
			return serrors.Wrap("loading launcher config from file", err, "file", file)
		}
		if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
			return serrors.Wrap("loading config from file", err, "file", file)
		}
	}
	a.TOMLConfig.InitDefaults()

	logEntriesTotal := prom.SafeRegister(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Name:      "log_emitted_entries_total",
			Help:      "Total number of log entries emitted.",
		},
		[]string{"level"},
	)).(*prometheus.CounterVec)
	opt := log.WithEntriesCounter(log.EntriesCounter{
		Debug: logEntriesTotal.With(prometheus.Labels{"level": "debug"}),
		Info:  logEntriesTotal.With(prometheus.Labels{"level": "info"}),
		Error: logEntriesTotal.With(prometheus.Labels{"level": "error"}),
	})
	if err := log.Setup(a.getLogging(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()
	defer log.HandlePanic()

	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	prom.SafeRegister(collectors.NewBuildInfoCollector())
	role := a.Role
	if role == "" {
		role = shortName
	}
	prom.ExportRole(prometheus.DefaultRegisterer, role)
	if err := processmetrics.Init(prometheus.DefaultRegisterer); err != nil {
		log.Error("Process metrics not available", "err", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = app.WithSignal(ctx, os.Interrupt, syscall.SIGTERM)
	if a.RequiredInterfaces != nil {
		if err := WaitForInterfaces(ctx, a.RequiredInterfaces()); err != nil {
			return err
		}
	}
	log.Info("Application starting", "app", shortName)
	defer log.Info("Application stopped", "app", shortName)
	if a.Main == nil {
		return nil
	}
	return a.Main(ctx)
}

func (a *Application) getLogging() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktraceLevel),
			DisableCaller:   a.config.GetBool(cfgLogConsoleDisableCaller),
		},
	}
}

func (a *Application) getErrorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}
