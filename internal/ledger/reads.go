package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"aptodo/internal/service"
)

// LedgerInfo describes the node's view of the chain.
type LedgerInfo struct {
	ChainID         int    `json:"chain_id"`
	LedgerVersion   string `json:"ledger_version"`
	LedgerTimestamp string `json:"ledger_timestamp"`
}

// AccountInfo is the core account record.
type AccountInfo struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// Sequence returns the parsed sequence number.
func (a AccountInfo) Sequence() (uint64, error) {
	n, err := strconv.ParseUint(a.SequenceNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence number %q: %w", a.SequenceNumber, err)
	}
	return n, nil
}

// GasEstimate is the node's gas unit price estimate.
type GasEstimate struct {
	GasEstimate              uint64 `json:"gas_estimate"`
	DeprioritizedGasEstimate uint64 `json:"deprioritized_gas_estimate"`
	PrioritizedGasEstimate   uint64 `json:"prioritized_gas_estimate"`
}

// LedgerInfo returns the current ledger info.
func (c *Client) LedgerInfo(ctx context.Context) (LedgerInfo, error) {
	var info LedgerInfo
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/", nil, &info); err != nil {
		return LedgerInfo{}, err
	}
	return info, nil
}

// AccountInfo returns the account's sequence number and authentication key.
func (c *Client) AccountInfo(ctx context.Context, address string) (AccountInfo, error) {
	var info AccountInfo
	if err := c.do(ctx, http.MethodGet, c.nodeURL("accounts", address), nil, &info); err != nil {
		return AccountInfo{}, err
	}
	return info, nil
}

// AccountResource returns the typed resource stored under address.
func (c *Client) AccountResource(ctx context.Context, address, resourceType string) (service.Resource, error) {
	var res service.Resource
	if err := c.do(ctx, http.MethodGet, c.nodeURL("accounts", address, "resource", resourceType), nil, &res); err != nil {
		return service.Resource{}, err
	}
	return res, nil
}

// TableItem returns the raw value stored in the table under req.Key.
func (c *Client) TableItem(ctx context.Context, handle string, req service.TableItemRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.nodeURL("tables", handle, "item"), req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// EstimateGasPrice returns the current gas unit price estimate.
func (c *Client) EstimateGasPrice(ctx context.Context) (GasEstimate, error) {
	var est GasEstimate
	if err := c.do(ctx, http.MethodGet, c.nodeURL("estimate_gas_price"), nil, &est); err != nil {
		return GasEstimate{}, err
	}
	return est, nil
}
