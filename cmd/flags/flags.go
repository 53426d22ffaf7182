package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/tee-attestation-agent/attestor"
	"github.com/ruteri/tee-attestation-agent/common"
	"github.com/ruteri/tee-attestation-agent/httpserver"
	"github.com/ruteri/tee-attestation-agent/secrets"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// Submission waits for the receipt; Chiado blocks are 5s apart.
		WriteTimeout: 120 * time.Second,
	}
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	Value:   attestor.GnosisChiado.RPCURL,
	EnvVars: []string{"RPC_ADDR"},
	Usage:   "address to connect to RPC",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:3000",
	EnvVars: []string{"LISTEN_ADDR"},
	Usage:   "address to listen on for API",
}

var SPContractFlag = &cli.StringFlag{
	Name:     "sp-contract",
	Required: true,
	EnvVars:  []string{"SP_CONTRACT"},
	Usage:    "Sign Protocol contract address on the target network",
}

var SecretSourceFlag = &cli.StringFlag{
	Name:    "secret-source",
	Value:   secrets.DefaultSourceURI,
	EnvVars: []string{"SECRET_SOURCE"},
	Usage:   "where to load the secret blob from: env://NAME, file:///path, vault://host/mount/path, awssm://secret-id",
}

var SchemaActionsFlag = &cli.BoolFlag{
	Name:    "schema-actions",
	Value:   false,
	EnvVars: []string{"SCHEMA_ACTIONS"},
	Usage:   "allow registering the JobStatus schema through the API",
}

var SchemaFromBodyFlag = &cli.BoolFlag{
	Name:    "schema-from-body",
	Value:   false,
	EnvVars: []string{"SCHEMA_FROM_BODY"},
	Usage:   "accept schemaId in the attestation request body",
}

var QuoteProviderFlag = &cli.StringFlag{
	Name:    "quote-provider",
	Value:   "none",
	EnvVars: []string{"QUOTE_PROVIDER"},
	Usage:   "TEE quote provider for /signer: none, dcap, remote or dummy",
}

var QuoteProviderAddrFlag = &cli.StringFlag{
	Name:    "quote-provider-addr",
	EnvVars: []string{"QUOTE_PROVIDER_ADDR"},
	Usage:   "base URL of the remote quote provider",
}

var AgentAddrFlag = &cli.StringFlag{
	Name:    "agent-addr",
	Value:   "http://127.0.0.1:3000",
	EnvVars: []string{"AGENT_ADDR"},
	Usage:   "base URL of the attestation agent",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
