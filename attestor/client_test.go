package attestor

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var simulatedChainID = big.NewInt(1337)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestChain creates a simulated chain with one funded account.
func SetupTestChain() (*simulated.Backend, *bind.TransactOpts, *ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, nil, err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, simulatedChainID)
	if err != nil {
		return nil, nil, nil, err
	}

	balance := new(big.Int)
	balance.SetString("10000000000000000000", 10) // 10 ETH

	genesisAlloc := map[common.Address]types.Account{
		auth.From: {Balance: balance},
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(8000000))
	return backend, auth, privateKey, nil
}

// emitterCode returns creation code for a contract that emits a single LOG1
// with topic and data on every call.
func emitterCode(topic common.Hash, data []byte) []byte {
	size := make([]byte, 2)
	binary.BigEndian.PutUint16(size, uint16(len(data)))

	// CODECOPY(0, dataOffset, size) LOG1(0, size, topic) STOP <data>
	const dataOffset = 49
	runtime := []byte{0x61, size[0], size[1], 0x61, 0x00, dataOffset, 0x60, 0x00, 0x39, 0x7f}
	runtime = append(runtime, topic.Bytes()...)
	runtime = append(runtime, 0x61, size[0], size[1], 0x60, 0x00, 0xa1, 0x00)
	runtime = append(runtime, data...)

	return deployWrapper(runtime)
}

// revertCode returns creation code for a contract that always reverts.
func revertCode() []byte {
	return deployWrapper([]byte{0x60, 0x00, 0x60, 0x00, 0xfd})
}

// deployWrapper prefixes runtime with init code returning it.
func deployWrapper(runtime []byte) []byte {
	size := make([]byte, 2)
	binary.BigEndian.PutUint16(size, uint16(len(runtime)))

	// CODECOPY(0, 14, size) RETURN(0, size)
	init := []byte{0x61, size[0], size[1], 0x60, 0x0e, 0x60, 0x00, 0x39, 0x61, size[0], size[1], 0x60, 0x00, 0xf3}
	return append(init, runtime...)
}

func deploy(t *testing.T, backend *simulated.Backend, auth *bind.TransactOpts, code []byte) common.Address {
	addr, tx, _, err := bind.DeployContract(auth, spABI, code, backend.Client())
	require.NoError(t, err)
	backend.Commit()

	receipt, err := backend.Client().TransactionReceipt(context.Background(), tx.Hash())
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	return addr
}

// autoCommit mines blocks in the background until the returned func is called.
func autoCommit(backend *simulated.Backend) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				backend.Commit()
			}
		}
	}()
	return func() { close(done) }
}

func attestationMadeLog(t *testing.T, id uint64, indexingKey string) (common.Hash, []byte) {
	event := spABI.Events[eventAttestationMade]
	data, err := event.Inputs.Pack(id, indexingKey)
	require.NoError(t, err)
	return event.ID, data
}

func schemaRegisteredLog(t *testing.T, id uint64) (common.Hash, []byte) {
	event := spABI.Events[eventSchemaRegistered]
	data, err := event.Inputs.Pack(id)
	require.NoError(t, err)
	return event.ID, data
}

func TestSignClient_CreateAttestation(t *testing.T) {
	backend, auth, key, err := SetupTestChain()
	require.NoError(t, err)
	defer backend.Close()

	topic, data := attestationMadeLog(t, 7, "bafyjob")
	contract := deploy(t, backend, auth, emitterCode(topic, data))

	client, err := NewSignClient(backend.Client(), contract, key, simulatedChainID, testLogger())
	require.NoError(t, err)
	assert.Equal(t, auth.From, client.Address())

	stop := autoCommit(backend)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	res, err := client.CreateAttestation(ctx, JobStatusInput("0x2d", "bafyjob", "completed"))
	require.NoError(t, err)
	assert.Equal(t, "0x7", res.AttestationID)
	assert.Len(t, res.TransactionHash, 66)

	// The submitted calldata carries the schema id, encoded data and indexing key.
	tx, _, err := backend.Client().TransactionByHash(ctx, common.HexToHash(res.TransactionHash))
	require.NoError(t, err)
	args, err := spABI.Methods[methodAttest].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "bafyjob", args[1])
}

func TestSignClient_CreateSchema(t *testing.T) {
	backend, auth, key, err := SetupTestChain()
	require.NoError(t, err)
	defer backend.Close()

	topic, data := schemaRegisteredLog(t, 45)
	contract := deploy(t, backend, auth, emitterCode(topic, data))

	client, err := NewSignClient(backend.Client(), contract, key, simulatedChainID, testLogger())
	require.NoError(t, err)

	stop := autoCommit(backend)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	res, err := client.CreateSchema(ctx, JobStatusSchema())
	require.NoError(t, err)
	assert.Equal(t, "0x2d", res.SchemaID)
	assert.NotEmpty(t, res.TransactionHash)
}

func TestSignClient_MissingEvent(t *testing.T) {
	backend, auth, key, err := SetupTestChain()
	require.NoError(t, err)
	defer backend.Close()

	// Emits SchemaRegistered where AttestationMade is expected.
	topic, data := schemaRegisteredLog(t, 1)
	contract := deploy(t, backend, auth, emitterCode(topic, data))

	client, err := NewSignClient(backend.Client(), contract, key, simulatedChainID, testLogger())
	require.NoError(t, err)

	stop := autoCommit(backend)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	_, err = client.CreateAttestation(ctx, JobStatusInput("0x2d", "bafyjob", "completed"))
	assert.ErrorIs(t, err, interfaces.ErrEventNotFound)
}

func TestSignClient_Revert(t *testing.T) {
	backend, auth, key, err := SetupTestChain()
	require.NoError(t, err)
	defer backend.Close()

	contract := deploy(t, backend, auth, revertCode())

	client, err := NewSignClient(backend.Client(), contract, key, simulatedChainID, testLogger())
	require.NoError(t, err)

	_, err = client.CreateAttestation(context.Background(), JobStatusInput("0x2d", "bafyjob", "completed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send attest transaction")
}

func TestSignClient_InvalidInputFailsBeforeSending(t *testing.T) {
	backend, _, key, err := SetupTestChain()
	require.NoError(t, err)
	defer backend.Close()

	client, err := NewSignClient(backend.Client(), common.HexToAddress("0x01"), key, simulatedChainID, testLogger())
	require.NoError(t, err)

	_, err = client.CreateAttestation(context.Background(), JobStatusInput("schema", "bafyjob", "completed"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidID)

	input := JobStatusInput("0x1", "bafyjob", "completed")
	delete(input.Data, FieldStatus)
	_, err = client.CreateAttestation(context.Background(), input)
	assert.ErrorContains(t, err, "failed to encode attestation data")
}

func TestSignClient_UnpackEvent(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	contract := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	client, err := NewSignClient(nil, contract, key, simulatedChainID, testLogger())
	require.NoError(t, err)

	topic, data := attestationMadeLog(t, 0x1234, "job")
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			// same event from another contract is ignored
			{Address: common.HexToAddress("0xbb"), Topics: []common.Hash{topic}, Data: data},
			{Address: contract, Topics: []common.Hash{topic}, Data: data},
		},
	}

	id, err := client.attestationIDFromReceipt(receipt)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), id)

	_, err = client.schemaIDFromReceipt(receipt)
	assert.ErrorIs(t, err, interfaces.ErrEventNotFound)
}
