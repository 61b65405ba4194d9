package client

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dwdwow/pacifica-go/signing"
)

// Client bundles the Info and Exchange clients over one transport.
type Client struct {
	API      *API
	Info     *Info
	Exchange *Exchange
}

// Options configures a Client.
type Options struct {
	// BaseURL defaults to mainnet.
	BaseURL string
	// PrivateKey is a base58 ed25519 private key. Empty makes a read-only
	// client.
	PrivateKey string
	// MainAccount puts the key in agent mode, acting for this account.
	MainAccount string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// NewClient creates a Client.
func NewClient(opts Options) (*Client, error) {
	var signer *signing.Signer
	if opts.PrivateKey != "" {
		var err error
		signer, err = signing.NewSigner(opts.PrivateKey, opts.MainAccount)
		if err != nil {
			return nil, fmt.Errorf("create signer: %w", err)
		}
	}

	api := NewAPI(opts.BaseURL, signer, opts.Logger)
	info := NewInfo(api, opts.Logger)
	exchange := NewExchange(api, info, opts.Logger)

	return &Client{
		API:      api,
		Info:     info,
		Exchange: exchange,
	}, nil
}
