package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/tee-attestation-agent/attestor"
	"github.com/ruteri/tee-attestation-agent/cmd/flags"
	"github.com/ruteri/tee-attestation-agent/common"
	"github.com/ruteri/tee-attestation-agent/httpserver"
	"github.com/ruteri/tee-attestation-agent/metrics"
	"github.com/ruteri/tee-attestation-agent/secrets"
	"github.com/ruteri/tee-attestation-agent/tee"
	"github.com/urfave/cli/v2"
)

var appFlags = append([]cli.Flag{
	flags.RpcAddrFlag,
	flags.ListenAddrFlag,
	flags.SPContractFlag,
	flags.SecretSourceFlag,
	flags.SchemaActionsFlag,
	flags.SchemaFromBodyFlag,
	flags.QuoteProviderFlag,
	flags.QuoteProviderAddrFlag,
	flags.LogServiceFlagFn("attestation-agent"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "attestation-agent",
		Usage:   "Record job outcomes as Sign Protocol attestations on Gnosis Chiado",
		Version: common.Version,
		Flags:   appFlags,
		Action:  runAgent,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAgent(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	network := attestor.GnosisChiado.WithRPC(cCtx.String(flags.RpcAddrFlag.Name))

	spContract := cCtx.String(flags.SPContractFlag.Name)
	if !ethcommon.IsHexAddress(spContract) {
		return fmt.Errorf("invalid sp-contract address: %q", spContract)
	}

	// Connect to the chain
	logger.Info("Connecting to Ethereum RPC", "address", network.RPCURL, "network", network.Name)
	ethClient, err := ethclient.Dial(network.RPCURL)
	if err != nil {
		logger.Error("Failed to dial RPC", "err", err)
		return err
	}
	defer ethClient.Close()

	ctx, cancel := context.WithTimeout(cCtx.Context, 10*time.Second)
	chainID, err := ethClient.ChainID(ctx)
	cancel()
	if err != nil {
		logger.Warn("Could not query chain id", "err", err)
	} else if chainID.Cmp(network.ChainID) != 0 {
		logger.Warn("RPC chain id does not match network", "rpcChainId", chainID, "expectedChainId", network.ChainID)
	}

	metricsSrv, err := metrics.New(common.PackageName, cCtx.String(flags.MetricsAddrFlag.Name))
	if err != nil {
		logger.Error("Failed to create metrics server", "err", err)
		return err
	}

	// Secrets are loaded once. A misconfiguration is reported here and on
	// every attestation request, but does not stop the agent.
	source, err := secrets.SourceFor(cCtx.String(flags.SecretSourceFlag.Name), logger)
	if err != nil {
		logger.Error("Invalid secret source", "err", err)
		return err
	}
	loader := secrets.NewLoader(source, logger)
	if err := loader.Load(cCtx.Context); err != nil {
		logger.Warn("Secrets are not usable, attestation requests will fail", "source", source.Name(), "err", err)
	}

	quoteProvider, err := tee.ProviderFor(cCtx.String(flags.QuoteProviderFlag.Name), cCtx.String(flags.QuoteProviderAddrFlag.Name))
	if err != nil {
		logger.Error("Invalid quote provider", "err", err)
		return err
	}

	handlerCfg := httpserver.HandlerConfig{
		Actions:       httpserver.ActionsAttestOnly,
		SchemaSource:  httpserver.SchemaFromSecrets,
		Network:       network,
		Version:       common.Version,
		QuoteProvider: quoteProvider,
	}
	if cCtx.Bool(flags.SchemaActionsFlag.Name) {
		handlerCfg.Actions = httpserver.ActionsSchemaAndAttest
	}
	if cCtx.Bool(flags.SchemaFromBodyFlag.Name) {
		handlerCfg.SchemaSource = httpserver.SchemaFromBody
	}

	factory := attestor.NewClientFactory(ethClient, ethcommon.HexToAddress(spContract), network, logger)
	handler := httpserver.NewHandler(handlerCfg, loader, factory, secrets.NewMemorySchemaStore(), metricsSrv.Recorder, logger)

	cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
	server, err := httpserver.New(cfg, handler, metricsSrv)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server",
		"spContract", spContract,
		"schemaActions", handler.SchemaActionsEnabled(),
		"quoteProvider", cCtx.String(flags.QuoteProviderFlag.Name))
	server.RunInBackground()

	// Wait for termination signal
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}
