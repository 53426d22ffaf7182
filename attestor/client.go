package attestor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// Backend is what SignClient needs from a chain connection.
// *ethclient.Client and the simulated backend's client satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// SignClient implements interfaces.Attestor against a deployed SP contract.
type SignClient struct {
	contract *bind.BoundContract
	backend  Backend
	address  common.Address
	auth     *bind.TransactOpts
	signer   common.Address
	log      *slog.Logger
}

// NewSignClient binds key to the SP contract at address on chainID.
func NewSignClient(backend Backend, address common.Address, key *ecdsa.PrivateKey, chainID *big.Int, log *slog.Logger) (*SignClient, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return &SignClient{
		contract: bind.NewBoundContract(address, spABI, backend, backend, backend),
		backend:  backend,
		address:  address,
		auth:     auth,
		signer:   crypto.PubkeyToAddress(key.PublicKey),
		log:      log,
	}, nil
}

// Address returns the signer's account address.
func (c *SignClient) Address() common.Address {
	return c.signer
}

// CreateSchema registers schema with the signer as registrant.
func (c *SignClient) CreateSchema(ctx context.Context, schema *interfaces.SchemaDefinition) (*interfaces.SchemaResult, error) {
	data, err := schemaData(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	tx, err := c.contract.Transact(c.transactOpts(ctx), methodRegister, spSchema{
		Registrant:   c.signer,
		Revocable:    true,
		DataLocation: DataLocationOnChain,
		Data:         data,
	}, []byte{})
	if err != nil {
		return nil, fmt.Errorf("failed to send register transaction: %w", err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	schemaID, err := c.schemaIDFromReceipt(receipt)
	if err != nil {
		return nil, err
	}

	c.log.Info("Schema registered",
		"schemaId", FormatID(schemaID),
		"name", schema.Name,
		"txHash", tx.Hash().Hex())

	return &interfaces.SchemaResult{
		SchemaID:        FormatID(schemaID),
		TransactionHash: tx.Hash().Hex(),
	}, nil
}

// CreateAttestation records input as an on-chain attestation.
func (c *SignClient) CreateAttestation(ctx context.Context, input *interfaces.AttestationInput) (*interfaces.AttestationResult, error) {
	schemaID, err := ParseID(input.SchemaID)
	if err != nil {
		return nil, err
	}

	data, err := EncodeData(input.Schema, input.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation data: %w", err)
	}

	tx, err := c.contract.Transact(c.transactOpts(ctx), methodAttest, spAttestation{
		SchemaId:     schemaID,
		Attester:     c.signer,
		DataLocation: DataLocationOnChain,
		Recipients:   [][]byte{},
		Data:         data,
	}, input.IndexingValue, []byte{}, []byte{})
	if err != nil {
		return nil, fmt.Errorf("failed to send attest transaction: %w", err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	attestationID, err := c.attestationIDFromReceipt(receipt)
	if err != nil {
		return nil, err
	}

	c.log.Info("Attestation made",
		"attestationId", FormatID(attestationID),
		"schemaId", input.SchemaID,
		"indexingValue", input.IndexingValue,
		"txHash", tx.Hash().Hex())

	return &interfaces.AttestationResult{
		AttestationID:   FormatID(attestationID),
		TransactionHash: tx.Hash().Hex(),
	}, nil
}

func (c *SignClient) transactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *c.auth
	opts.Context = ctx
	return &opts
}

func (c *SignClient) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	start := time.Now()
	c.log.Debug("Waiting for transaction", "txHash", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}

	c.log.Debug("Transaction mined",
		"txHash", tx.Hash().Hex(),
		"block", receipt.BlockNumber,
		slog.Duration("duration", time.Since(start)))

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrTransactionReverted, tx.Hash().Hex())
	}
	return receipt, nil
}

func (c *SignClient) schemaIDFromReceipt(receipt *types.Receipt) (uint64, error) {
	var event schemaRegisteredEvent
	if err := c.unpackEvent(receipt, eventSchemaRegistered, &event); err != nil {
		return 0, err
	}
	return event.SchemaId, nil
}

func (c *SignClient) attestationIDFromReceipt(receipt *types.Receipt) (uint64, error) {
	var event attestationMadeEvent
	if err := c.unpackEvent(receipt, eventAttestationMade, &event); err != nil {
		return 0, err
	}
	return event.AttestationId, nil
}

// unpackEvent decodes the first log in receipt emitted by the contract for event.
func (c *SignClient) unpackEvent(receipt *types.Receipt, event string, out interface{}) error {
	id := spABI.Events[event].ID
	for _, log := range receipt.Logs {
		if log.Address != c.address || len(log.Topics) == 0 || log.Topics[0] != id {
			continue
		}
		if err := c.contract.UnpackLog(out, event, *log); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s in %s", interfaces.ErrEventNotFound, event, receipt.TxHash.Hex())
}
