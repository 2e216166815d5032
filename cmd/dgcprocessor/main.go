// Command dgcprocessor starts the dgc_REST_api transaction processor. It
// mirrors the original processor's command line: a validator connection
// endpoint and a repeatable verbosity flag.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dgc-processor/core"
	appconfig "dgc-processor/pkg/config"

	"dgc-processor/internal/inspect"
	"dgc-processor/internal/statetest"
)

var (
	connect   string
	verbosity int
)

func main() {
	root := &cobra.Command{
		Use:   "dgcprocessor",
		Short: "dgc_REST_api deterministic transaction processor",
		RunE:  runServe,
	}
	root.Flags().StringVarP(&connect, "connect", "C", "tcp://localhost:4004", "validator component endpoint")
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity")

	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// verbosityToLevel mirrors main.rs's LogLevelFilter tiers: 0 warn, 1 info,
// 2 debug, 3+ trace.
func verbosityToLevel(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.WarnLevel
	case v == 1:
		return logrus.InfoLevel
	case v == 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logrus.SetLevel(verbosityToLevel(verbosity))
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := appconfig.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Warn("using defaults: config load failed")
		cfg = &appconfig.AppConfig
	}
	if connect == "" {
		connect = cfg.Processor.Connect
	}

	log := logrus.WithFields(logrus.Fields{
		"family":  core.FamilyName,
		"version": core.FamilyVersion,
		"connect": connect,
	})
	log.Info("starting processor")

	if cfg.Inspect.Enabled {
		store := statetest.NewStore()
		srv := inspect.New(store)
		log.WithField("addr", cfg.Inspect.Addr).Info("starting inspection server")
		go func() {
			if err := http.ListenAndServe(cfg.Inspect.Addr, srv.Router()); err != nil {
				log.WithError(err).Error("inspection server stopped")
			}
		}()
	}

	// A real deployment registers this family with the validator over the
	// connect endpoint and blocks on the processor's message loop. No
	// transport client for that protocol exists in this workspace's
	// dependency set (see DESIGN.md), so this entrypoint wires the pieces
	// that exist: config, logging, the inspection server, and the core
	// itself via NewProcessor.
	_ = core.NewProcessor()
	select {}
}

// seedCmd demonstrates the core against the in-memory statetest store,
// useful for smoke-checking a build without a validator attached.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "apply a demo sequence of transactions against an in-memory store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetLevel(verbosityToLevel(verbosity))

			store := statetest.NewStore()
			proc := core.NewProcessor()

			recordID := uuid.NewString()
			signer := uuid.NewString()

			payload := `{"action":"CREATE_PARTICIPANT","timestamp":1,"create_participant":{"name":"demo"}}`
			if err := proc.Apply(store, signer, []byte(payload)); err != nil {
				return err
			}

			tablePayload := `{"action":"CREATE_TABLE","timestamp":1,"create_table":{"name":"widgets","properties":[{"name":"color","data_type":4}]}}`
			if err := proc.Apply(store, signer, []byte(tablePayload)); err != nil {
				return err
			}

			recordPayload := fmt.Sprintf(`{"action":"CREATE_RECORD","timestamp":1,"create_record":{"record_id":%q,"table":"widgets","properties":[]}}`, recordID)
			if err := proc.Apply(store, signer, []byte(recordPayload)); err != nil {
				return err
			}

			fmt.Printf("seeded %d state addresses\n", store.Len())
			return nil
		},
	}
}
