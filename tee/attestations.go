// Package tee produces TEE quotes binding the agent's signer address, so that a
// verifier can check the attesting key lives inside a measured environment.
package tee

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	tdx_abi "github.com/google/go-tdx-guest/abi"
	tdx_client "github.com/google/go-tdx-guest/client"
	tdx_pb "github.com/google/go-tdx-guest/proto/tdx"
	"github.com/google/go-tdx-guest/verify"
)

// Attestation type identifiers.
const (
	DCAPAttestation   = "qemu-tdx"
	RemoteAttestation = "remote-tdx"
	DummyAttestation  = "dummy"
)

// ErrUnsupportedProvider is returned by ProviderFor for unknown names.
var ErrUnsupportedProvider = errors.New("unsupported quote provider")

// QuoteProvider returns a raw quote over 64 bytes of report data.
type QuoteProvider interface {
	AttestationType() string
	Attest(reportData [64]byte) ([]byte, error)
}

// ProviderFor returns the provider named kind. An empty kind or "none" yields
// a nil provider and no error.
func ProviderFor(kind, remoteAddress string) (QuoteProvider, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "dcap":
		return &DCAPQuoteProvider{}, nil
	case "remote":
		if remoteAddress == "" {
			return nil, errors.New("remote quote provider requires an address")
		}
		return &RemoteQuoteProvider{Address: remoteAddress}, nil
	case "dummy":
		return DummyQuoteProvider{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, kind)
	}
}

// SignerReportData binds a signer to a chain: address || uint256(chainID) || 0.
func SignerReportData(signer common.Address, chainID *big.Int) [64]byte {
	var reportData [64]byte
	copy(reportData[:20], signer.Bytes())
	if chainID != nil {
		chainID.FillBytes(reportData[20:52])
	}
	return reportData
}

// DCAPQuoteProvider obtains quotes from the local TDX guest, preferring
// configfs-tsm and falling back to the TDX guest device.
type DCAPQuoteProvider struct{}

func (*DCAPQuoteProvider) AttestationType() string { return DCAPAttestation }

func (*DCAPQuoteProvider) Attest(reportData [64]byte) ([]byte, error) {
	qp := &tdx_client.LinuxConfigFsQuoteProvider{}
	if qp.IsSupported() == nil {
		return qp.GetRawQuote(reportData)
	}

	qd, err := tdx_client.OpenDevice()
	if err != nil {
		return nil, err
	}
	defer qd.Close()

	return tdx_client.GetRawQuote(qd, reportData)
}

// RemoteQuoteProvider asks a quote service at Address/attest/<hex report data>.
type RemoteQuoteProvider struct {
	Address string
	Client  *http.Client
}

func (*RemoteQuoteProvider) AttestationType() string { return RemoteAttestation }

func (p *RemoteQuoteProvider) Attest(reportData [64]byte) ([]byte, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	url := fmt.Sprintf("%s/attest/%s", p.Address, hex.EncodeToString(reportData[:]))
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("calling remote quote provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("remote quote provider returned status %d: %s", resp.StatusCode, string(body))
	}

	rawQuote, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading quote from response: %w", err)
	}
	return rawQuote, nil
}

// DummyQuoteProvider returns a readable placeholder. For local development only.
type DummyQuoteProvider struct{}

func (DummyQuoteProvider) AttestationType() string { return DummyAttestation }

func (DummyQuoteProvider) Attest(reportData [64]byte) ([]byte, error) {
	return []byte(fmt.Sprintf("Attestation for signer %x", reportData)), nil
}

// VerifyDCAPQuote verifies a TDX quote and checks it carries reportData.
// It returns the MRTD and RTMR measurements as hex.
func VerifyDCAPQuote(reportData [64]byte, quote []byte) (map[int]string, error) {
	protoQuote, err := tdx_abi.QuoteToProto(quote)
	if err != nil {
		return nil, fmt.Errorf("could not parse quote: %w", err)
	}

	v4Quote, ok := protoQuote.(*tdx_pb.QuoteV4)
	if !ok {
		return nil, fmt.Errorf("unsupported quote type: %T", protoQuote)
	}

	if err := verify.TdxQuote(protoQuote, verify.DefaultOptions()); err != nil {
		return nil, fmt.Errorf("quote verification failed: %w", err)
	}

	if !bytes.Equal(v4Quote.TdQuoteBody.ReportData, reportData[:]) {
		return nil, fmt.Errorf("invalid report data %x, expected %x", v4Quote.TdQuoteBody.ReportData, reportData[:])
	}

	return map[int]string{
		0: hex.EncodeToString(v4Quote.TdQuoteBody.MrTd),
		1: hex.EncodeToString(v4Quote.TdQuoteBody.Rtmrs[0]),
		2: hex.EncodeToString(v4Quote.TdQuoteBody.Rtmrs[1]),
		3: hex.EncodeToString(v4Quote.TdQuoteBody.Rtmrs[2]),
		4: hex.EncodeToString(v4Quote.TdQuoteBody.Rtmrs[3]),
	}, nil
}
