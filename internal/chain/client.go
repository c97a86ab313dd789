package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/internal/metrics"
)

const defaultGasLimit = 2000000

// ErrNoOwnerKey is returned when a signed call is attempted without an owner key
var ErrNoOwnerKey = errors.New("owner private key is not configured")

// Receipt is the outcome of a mined contract transaction
type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         uint64 `json:"gasUsed"`
}

// Contract is the supply chain smart contract as seen by the service
type Contract interface {
	AddMaterial(ctx context.Context, name, description, stage string) (*Receipt, error)
	MaterialCounter(ctx context.Context) (int64, error)
	MaterialStage(ctx context.Context, materialID int64) (string, error)
}

// Backend is the part of an Ethereum node client the contract needs.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EthereumContract signs and submits calls to the contract with the owner key.
// Nonces are fetched per call and never serialized, so concurrent AddMaterial
// calls may race on the same nonce.
type EthereumContract struct {
	backend        Backend
	abi            abi.ABI
	address        common.Address
	owner          common.Address
	key            *ecdsa.PrivateKey
	gasLimit       uint64
	receiptTimeout time.Duration
}

// Dial connects to the configured node and binds the contract
func Dial(ctx context.Context, cfg config.ChainConfig) (*EthereumContract, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to chain node")
	}
	contract, err := NewEthereumContract(client, cfg)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info().
		Str("rpc_url", cfg.RPCURL).
		Str("contract", contract.address.Hex()).
		Str("owner", contract.owner.Hex()).
		Msg("Chain client ready")
	return contract, client, nil
}

// NewEthereumContract binds the contract at cfg.ContractAddress on backend
func NewEthereumContract(backend Backend, cfg config.ChainConfig) (*EthereumContract, error) {
	parsed, err := abi.JSON(strings.NewReader(MaterialContractABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse contract ABI")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, errors.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	if !common.IsHexAddress(cfg.OwnerAddress) {
		return nil, errors.Errorf("invalid owner address %q", cfg.OwnerAddress)
	}

	c := &EthereumContract{
		backend:        backend,
		abi:            parsed,
		address:        common.HexToAddress(cfg.ContractAddress),
		owner:          common.HexToAddress(cfg.OwnerAddress),
		gasLimit:       cfg.GasLimit,
		receiptTimeout: cfg.ReceiptTimeout,
	}
	if c.gasLimit == 0 {
		c.gasLimit = defaultGasLimit
	}
	if c.receiptTimeout <= 0 {
		c.receiptTimeout = 2 * time.Minute
	}

	if cfg.OwnerPrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OwnerPrivateKey, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "invalid owner private key")
		}
		if derived := crypto.PubkeyToAddress(key.PublicKey); derived != c.owner {
			return nil, errors.Errorf("owner private key belongs to %s, not %s", derived.Hex(), c.owner.Hex())
		}
		c.key = key
	}

	return c, nil
}

// AddMaterial signs and submits addMaterial(name, description, stage) and
// waits for the receipt
func (c *EthereumContract) AddMaterial(ctx context.Context, name, description, stage string) (receipt *Receipt, err error) {
	defer func(start time.Time) { metrics.ObserveChainCall(methodAddMaterial, start, err) }(time.Now())
	return c.addMaterial(ctx, name, description, stage)
}

func (c *EthereumContract) addMaterial(ctx context.Context, name, description, stage string) (*Receipt, error) {
	if c.key == nil {
		return nil, ErrNoOwnerKey
	}

	data, err := c.abi.Pack(methodAddMaterial, name, description, stage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode addMaterial call")
	}

	nonce, err := c.backend.PendingNonceAt(ctx, c.owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch owner nonce")
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch gas price")
	}
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch chain id")
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.address,
		Value:    big.NewInt(0),
		Gas:      c.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, errors.Wrap(err, "failed to submit transaction")
	}
	log.Debug().
		Str("tx_hash", signed.Hash().Hex()).
		Uint64("nonce", nonce).
		Msg("addMaterial transaction submitted")

	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.backend, signed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed waiting for receipt of %s", signed.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Errorf("transaction %s reverted", signed.Hash().Hex())
	}

	result := &Receipt{
		TransactionHash: receipt.TxHash.Hex(),
		GasUsed:         receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

// MaterialCounter reads the contract's material counter
func (c *EthereumContract) MaterialCounter(ctx context.Context) (int64, error) {
	out, err := c.call(ctx, methodMaterialCounter)
	if err != nil {
		return 0, err
	}
	counter, ok := out[0].(*big.Int)
	if !ok {
		return 0, errors.Errorf("unexpected materialCounter result %T", out[0])
	}
	if !counter.IsInt64() {
		return 0, errors.Errorf("material counter %s overflows int64", counter)
	}
	return counter.Int64(), nil
}

// MaterialStage reads the current on-chain stage of a material
func (c *EthereumContract) MaterialStage(ctx context.Context, materialID int64) (string, error) {
	if materialID < 0 {
		return "", errors.Errorf("invalid material id %d", materialID)
	}
	out, err := c.call(ctx, methodGetMaterialStage, big.NewInt(materialID))
	if err != nil {
		return "", err
	}
	stage, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("unexpected getMaterialStage result %T", out[0])
	}
	return stage, nil
}

// call performs a read-only contract call and decodes its outputs
func (c *EthereumContract) call(ctx context.Context, method string, args ...interface{}) (out []interface{}, err error) {
	defer func(start time.Time) { metrics.ObserveChainCall(method, start, err) }(time.Now())

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s call", method)
	}

	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		From: c.owner,
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", method)
	}

	out, err = c.abi.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s result", method)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("empty %s result", method)
	}
	return out, nil
}
