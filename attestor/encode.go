package attestor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// ErrUnsupportedFieldType is returned for schema field types the encoder does not handle.
var ErrUnsupportedFieldType = errors.New("unsupported schema field type")

// schemaArguments converts schema fields into ABI arguments.
func schemaArguments(schema *interfaces.SchemaDefinition) (abi.Arguments, error) {
	if schema == nil || len(schema.Data) == 0 {
		return nil, errors.New("schema has no fields")
	}
	args := make(abi.Arguments, 0, len(schema.Data))
	for _, field := range schema.Data {
		typ, err := abi.NewType(field.Type, "", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrUnsupportedFieldType, field.Name, err)
		}
		args = append(args, abi.Argument{Name: field.Name, Type: typ})
	}
	return args, nil
}

// EncodeData ABI-encodes data in schema field order.
func EncodeData(schema *interfaces.SchemaDefinition, data map[string]any) ([]byte, error) {
	args, err := schemaArguments(schema)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		raw, ok := data[arg.Name]
		if !ok {
			return nil, fmt.Errorf("missing value for field %q", arg.Name)
		}
		value, err := convertValue(arg.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", arg.Name, err)
		}
		values = append(values, value)
	}

	return args.Pack(values...)
}

// DecodeData is the inverse of EncodeData.
func DecodeData(schema *interfaces.SchemaDefinition, encoded []byte) (map[string]any, error) {
	args, err := schemaArguments(schema)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(args))
	if err := args.UnpackIntoMap(out, encoded); err != nil {
		return nil, err
	}
	return out, nil
}

func convertValue(typ abi.Type, raw any) (interface{}, error) {
	switch typ.T {
	case abi.StringTy:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil

	case abi.BoolTy:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return b, nil

	case abi.AddressTy:
		switch v := raw.(type) {
		case common.Address:
			return v, nil
		case string:
			if !common.IsHexAddress(v) {
				return nil, fmt.Errorf("invalid address %q", v)
			}
			return common.HexToAddress(v), nil
		}
		return nil, fmt.Errorf("expected address, got %T", raw)

	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(raw)
		if err != nil {
			return nil, err
		}
		if typ.T == abi.UintTy && (n.Sign() < 0 || n.BitLen() > typ.Size) {
			return nil, fmt.Errorf("value %s out of range for %s", n, typ)
		}
		if typ.T == abi.IntTy {
			// [-2^(size-1), 2^(size-1)-1]
			limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
			if n.Cmp(new(big.Int).Neg(limit)) < 0 || n.Cmp(limit) >= 0 {
				return nil, fmt.Errorf("value %s out of range for %s", n, typ)
			}
		}
		if typ.GetType() == reflect.TypeOf(n) {
			return n, nil
		}
		if typ.T == abi.UintTy {
			return reflect.ValueOf(n.Uint64()).Convert(typ.GetType()).Interface(), nil
		}
		return reflect.ValueOf(n.Int64()).Convert(typ.GetType()).Interface(), nil

	case abi.BytesTy:
		return toBytes(raw)

	case abi.FixedBytesTy:
		b, err := toBytes(raw)
		if err != nil {
			return nil, err
		}
		if len(b) != typ.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", typ.Size, len(b))
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFieldType, typ)
}

func toBigInt(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("non-integer number %v", v)
		}
		return big.NewInt(int64(v)), nil
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("expected integer, got %T", raw)
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("expected hex bytes, got %T", raw)
}
