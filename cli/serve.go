package cli

import (
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"voting-settlement/api"
	"voting-settlement/config"
	"voting-settlement/logger"
	"voting-settlement/service"
	"voting-settlement/storage"
)

func init() {
	addServeFlags(serveCmd.Flags())
}

// addServeFlags registers the serve flags on flags. Both the root command and
// serve carry them, so each binds its own set into viper when it runs.
func addServeFlags(flags *pflag.FlagSet) {
	flags.String("listen", config.DefaultListenAddr, "address the HTTP service binds to")
	flags.Duration("settlement-timeout", config.DefaultSettlementTimeout, "how long a settlement waits for inclusion")
	flags.String("receipt-store", "memory", "settlement receipt store (memory, json or badger)")
	flags.String("receipt-path", "data/receipts", "directory of the json or badger receipt store")
}

func bindServeFlags(flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"listen":             "listen",
		"settlement_timeout": "settlement-timeout",
		"receipt_store":      "receipt-store",
		"receipt_path":       "receipt-path",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindServeFlags(cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.LoadServer(v, configFile)
	if err != nil {
		return err
	}
	return serve(cfg)
}

func serve(cfg *config.Server) error {
	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	receipts, err := storage.Open(cfg.ReceiptStore, cfg.ReceiptPath, log)
	if err != nil {
		return err
	}
	defer receipts.Close()

	// Chain credentials are read per settlement. Checking them here only
	// warns, so the service can take ballots before PK is provisioned.
	if chain, err := config.LoadChain(); err != nil {
		log.Warn().Str("reason", service.PublicMessage(err)).Msg("chain credentials not usable yet")
	} else {
		safe := config.SafeChain(*chain)
		log.Info().
			Str("rpc_url", safe.RPCURL).
			Str("contract", safe.ContractAddress).
			Msg("chain credentials loaded")
	}

	tally := service.NewTally()
	metrics := service.NewMetricsCollector()
	settlement := service.NewSettlementService(tally, receipts, metrics, config.LoadChain, service.DialChain, cfg.SettlementTimeout)
	server := api.NewServer(log, tally, settlement, receipts, metrics)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: server.Handler()}

	serverChan := make(chan error, 1)
	go func() {
		log.Info().
			Str("listen", ln.Addr().String()).
			Str("receipt_store", cfg.ReceiptStore).
			Dur("settlement_timeout", cfg.SettlementTimeout).
			Msg("starting server")
		serverChan <- srv.Serve(ln)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		// in-flight requests are dropped
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close server")
		}
	}

	log.Info().Msg("server shutdown completed")
	return nil
}
