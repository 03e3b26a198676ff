package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is a read-only view of one chain. The chain ID is fetched once on
// connect so deployments can be checked against it.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	chainID   uint64
}

// NewClient dials rpcURL and reads the chain ID.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	client, err := newClient(ctx, rpcClient)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	return client, nil
}

func newClient(ctx context.Context, rpcClient *rpc.Client) (*Client, error) {
	ethClient := ethclient.NewClient(rpcClient)
	id, err := ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	if !id.IsUint64() {
		return nil, fmt.Errorf("chain id %s out of range", id)
	}
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethClient,
		chainID:   id.Uint64(),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) ChainID() uint64 { return c.chainID }

// PinBlock returns the latest block number, for reads that must agree with
// each other.
func (c *Client) PinBlock(ctx context.Context) (*big.Int, error) {
	number, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}
	return new(big.Int).SetUint64(number), nil
}

// CallContract performs an eth_call at blockNumber; nil means latest.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
