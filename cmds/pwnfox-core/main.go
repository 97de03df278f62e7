package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/info"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service"
)

var (
	rootCmd = &cobra.Command{
		Use:              "pwnfox-core",
		Short:            "PwnFox native messaging host",
		PersistentPreRun: initializeGlobals,
		Run:              runCore,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version and related metadata.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(info.FullVersion())
			return nil
		},
	}

	configFile  string
	logToStderr bool
	logDir      string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "set path of the config file shared with pwnfoxctl")

	rootCmd.Flags().BoolVar(&logToStderr, "log-stderr", false, "log to stderr instead of a file")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "set directory for log files")
	rootCmd.Flags().StringVar(&logLevel, "log", "", "set log level to [trace|debug|info|warning|error|critical]")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initializeGlobals(cmd *cobra.Command, args []string) {
	// Set name and license.
	info.Set("PwnFox Core", "1.1.0", "MIT")

	// Configure metrics.
	_ = metrics.SetNamespace("pwnfox")

	// Set default log level.
	log.SetLogLevel(log.InfoLevel)
}

func runCore(cmd *cobra.Command, args []string) {
	svcCfg := &service.ServiceConfig{
		ConfigFile:  configFile,
		LogToStderr: logToStderr,
		LogDir:      logDir,
		LogLevel:    logLevel,
	}
	if err := svcCfg.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		os.Exit(2)
	}

	// Start logging.
	// Stdout is never used for logs, it carries the native messaging stream.
	if err := log.Start(svcCfg.LogLevel, svcCfg.LogToStderr, svcCfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(4)
	}

	// Create and start instance.
	instance, err := service.New(svcCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating an instance: %s\n", err)
		os.Exit(2)
	}
	if err := instance.Start(); err != nil {
		log.Errorf("pwnfox-core: failed to start: %s", err)
		log.Shutdown()
		os.Exit(1)
	}
	log.Infof("pwnfox-core: started %s", info.Version())

	// Connect the extension to the service over stdio.
	bridge := newBridge(instance, os.Stdin, os.Stdout)
	bridge.mgr.Go("native messaging bridge", bridge.run)

	// Subscribe to signals.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(
		signalCh,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
	)

	// Wait for a shutdown trigger.
wait:
	for {
		select {
		case <-instance.Stopped():
			break wait
		case sig := <-signalCh:
			// SIGUSR1 dumps diagnostics and continues running.
			if sig == syscall.SIGUSR1 {
				if report, rErr := instance.DebugInfo(); rErr == nil {
					log.Infof("pwnfox-core: diagnostics on request\n%s", report)
				} else {
					log.Warningf("pwnfox-core: failed to collect diagnostics: %s", rErr)
				}
				continue wait
			}
			log.Warningf("pwnfox-core: received stop signal %s", sig)
			instance.Shutdown()
			break wait
		}
	}

	// Wait for the shutdown to finish.
	// Force exit after 5 more interrupts.
	forceCnt := 5
shutdown:
	for {
		select {
		case <-instance.Stopped():
			break shutdown
		case sig := <-signalCh:
			if sig == syscall.SIGUSR1 {
				continue shutdown
			}
			forceCnt--
			if forceCnt <= 0 {
				log.Criticalf("pwnfox-core: forced exit")
				log.Shutdown()
				os.Exit(1)
			}
			log.Warningf("pwnfox-core: already shutting down, %d more signals to force exit", forceCnt)
		}
	}

	// Stop logging and give pending lines a moment to settle.
	log.Shutdown()
	time.Sleep(100 * time.Millisecond)

	os.Exit(instance.ExitCode())
}
