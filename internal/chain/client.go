// Package chain fetches game contract logs over JSON-RPC.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the log source of one chain.
type Client struct {
	eth        *ethclient.Client
	timestamps *timestampCache
}

func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return &Client{eth: eth, timestamps: newTimestampCache(timestampCacheSize)}, nil
}

func (c *Client) Close() { c.eth.Close() }

func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// BlockTimestamp returns the header time of a block. Logs carry no timestamp and
// a range usually holds many logs per block.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	if ts, ok := c.timestamps.get(number); ok {
		return ts, nil
	}
	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("header %d: %w", number, err)
	}
	c.timestamps.put(number, header.Time)
	return header.Time, nil
}

// FilterLogs returns the logs of addresses in [fromBlock, toBlock] whose first
// topic is one of topic0. An empty topic0 matches every event.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.eth.FilterLogs(ctx, query)
}
