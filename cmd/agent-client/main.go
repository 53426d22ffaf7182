package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/tee-attestation-agent/api/clients"
	"github.com/ruteri/tee-attestation-agent/cmd/flags"
	"github.com/ruteri/tee-attestation-agent/tee"
	"github.com/urfave/cli/v2"
)

var flagJobCID = &cli.StringFlag{
	Name:     "job-cid",
	Required: true,
	Usage:    "content identifier of the finished job",
}

var flagStatus = &cli.StringFlag{
	Name:     "status",
	Required: true,
	Usage:    "job outcome, e.g. completed or failed",
}

var flagSchemaID = &cli.StringFlag{
	Name:  "schema-id",
	Usage: "schema id to attest against, only honored by agents accepting it in the body",
}

var flagVerifyQuote = &cli.BoolFlag{
	Name:  "verify-quote",
	Usage: "verify the signer's DCAP quote and print its measurements",
}

func main() {
	app := &cli.App{
		Name:  "agent-client",
		Usage: "Talk to a running attestation agent",
		Flags: []cli.Flag{
			flags.AgentAddrFlag,
		},
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Query the agent's info probe",
				Action: func(cCtx *cli.Context) error {
					client := clients.NewAgentClient(cCtx.String(flags.AgentAddrFlag.Name))
					info, err := client.Info(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(info)
				},
			},
			{
				Name:  "attest",
				Usage: "Record a job outcome",
				Flags: []cli.Flag{flagJobCID, flagStatus, flagSchemaID},
				Action: func(cCtx *cli.Context) error {
					client := clients.NewAgentClient(cCtx.String(flags.AgentAddrFlag.Name))
					result, err := client.CreateAttestation(cCtx.Context,
						cCtx.String(flagJobCID.Name),
						cCtx.String(flagStatus.Name),
						cCtx.String(flagSchemaID.Name))
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "create-schema",
				Usage: "Register the JobStatus schema",
				Action: func(cCtx *cli.Context) error {
					client := clients.NewAgentClient(cCtx.String(flags.AgentAddrFlag.Name))
					result, err := client.CreateSchema(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "signer",
				Usage: "Show the signer address and TEE quote",
				Flags: []cli.Flag{flagVerifyQuote},
				Action: func(cCtx *cli.Context) error {
					client := clients.NewAgentClient(cCtx.String(flags.AgentAddrFlag.Name))
					signer, err := client.Signer(cCtx.Context)
					if err != nil {
						return err
					}
					if err := printJSON(signer); err != nil {
						return err
					}
					if !cCtx.Bool(flagVerifyQuote.Name) {
						return nil
					}

					if signer.AttestationType != tee.DCAPAttestation {
						return fmt.Errorf("cannot verify quote of type %q", signer.AttestationType)
					}
					quote, err := hex.DecodeString(signer.Quote)
					if err != nil {
						return fmt.Errorf("invalid quote encoding: %w", err)
					}
					chainID, ok := new(big.Int).SetString(signer.ChainID, 10)
					if !ok {
						return errors.New("invalid chain id in signer response")
					}

					reportData := tee.SignerReportData(ethcommon.HexToAddress(signer.Address), chainID)
					measurements, err := tee.VerifyDCAPQuote(reportData, quote)
					if err != nil {
						return fmt.Errorf("quote verification failed: %w", err)
					}
					return printJSON(measurements)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
