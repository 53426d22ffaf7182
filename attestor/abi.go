package attestor

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// spABIJSON is the subset of the ISP interface used by the agent.
const spABIJSON = `[
  {
    "type": "function",
    "name": "register",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "schema",
        "type": "tuple",
        "components": [
          {"name": "registrant", "type": "address"},
          {"name": "revocable", "type": "bool"},
          {"name": "dataLocation", "type": "uint8"},
          {"name": "maxValidFor", "type": "uint64"},
          {"name": "hook", "type": "address"},
          {"name": "timestamp", "type": "uint64"},
          {"name": "data", "type": "string"}
        ]
      },
      {"name": "delegateSignature", "type": "bytes"}
    ],
    "outputs": [{"name": "schemaId", "type": "uint64"}]
  },
  {
    "type": "function",
    "name": "attest",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "attestation",
        "type": "tuple",
        "components": [
          {"name": "schemaId", "type": "uint64"},
          {"name": "linkedAttestationId", "type": "uint64"},
          {"name": "attestTimestamp", "type": "uint64"},
          {"name": "revokeTimestamp", "type": "uint64"},
          {"name": "attester", "type": "address"},
          {"name": "validUntil", "type": "uint64"},
          {"name": "dataLocation", "type": "uint8"},
          {"name": "revoked", "type": "bool"},
          {"name": "recipients", "type": "bytes[]"},
          {"name": "data", "type": "bytes"}
        ]
      },
      {"name": "indexingKey", "type": "string"},
      {"name": "delegateSignature", "type": "bytes"},
      {"name": "extraData", "type": "bytes"}
    ],
    "outputs": [{"name": "attestationId", "type": "uint64"}]
  },
  {
    "type": "event",
    "name": "SchemaRegistered",
    "anonymous": false,
    "inputs": [{"name": "schemaId", "type": "uint64", "indexed": false}]
  },
  {
    "type": "event",
    "name": "AttestationMade",
    "anonymous": false,
    "inputs": [
      {"name": "attestationId", "type": "uint64", "indexed": false},
      {"name": "indexingKey", "type": "string", "indexed": false}
    ]
  }
]`

const (
	methodRegister = "register"
	methodAttest   = "attest"

	eventSchemaRegistered = "SchemaRegistered"
	eventAttestationMade  = "AttestationMade"
)

// DataLocation values understood by the protocol.
const (
	DataLocationOnChain uint8 = iota
	DataLocationArweave
	DataLocationIPFS
	DataLocationCustom
)

var spABI = mustParseABI(spABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// spSchema mirrors the ISP Schema struct.
type spSchema struct {
	Registrant   common.Address
	Revocable    bool
	DataLocation uint8
	MaxValidFor  uint64
	Hook         common.Address
	Timestamp    uint64
	Data         string
}

// spAttestation mirrors the ISP Attestation struct.
type spAttestation struct {
	SchemaId            uint64
	LinkedAttestationId uint64
	AttestTimestamp     uint64
	RevokeTimestamp     uint64
	Attester            common.Address
	ValidUntil          uint64
	DataLocation        uint8
	Revoked             bool
	Recipients          [][]byte
	Data                []byte
}

type schemaRegisteredEvent struct {
	SchemaId uint64
}

type attestationMadeEvent struct {
	AttestationId uint64
	IndexingKey   string
}
