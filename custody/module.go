// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"fmt"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/custody/contract"
	"github.com/luxfi/custody/modules"
	"github.com/luxfi/custody/precompileconfig"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "custodyProxyConfig"

// CustodyPrecompile is the singleton instance. The proxy behind it is
// installed by Configure once the host wiring is in place.
var CustodyPrecompile = &CustodyContract{}

// Module is the precompile module.
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     CustodyPrecompile,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

// Wiring carries the host-side collaborators a proxy forwards through.
// The host installs it before the activation timestamp.
type Wiring struct {
	FactoryAPI Factory
	Tokens     TokenBackend
	Permit     PermitTransferor
	Vaults     VaultRegistry
	Bundler    Executor
	Caller     ExternalCaller
	Signatures SignatureVerifier
	Log        log.Logger
}

var wiring *Wiring

// SetWiring installs the collaborator set used when the precompile is
// configured.
func SetWiring(w *Wiring) {
	wiring = w
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

func (*configurator) Configure(
	chainConfig precompileconfig.ChainConfig,
	cfg precompileconfig.Config,
	state contract.StateDB,
	blockContext contract.ConfigurationBlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}
	if wiring == nil {
		return fmt.Errorf("custody wiring not installed")
	}

	proxy := NewProxy(ProxyConfig{
		Address:    ContractAddress,
		Executor:   config.Executor,
		Factory:    config.Factory,
		Treasury:   config.Treasury,
		FactoryAPI: wiring.FactoryAPI,
		Tokens:     wiring.Tokens,
		Permit:     wiring.Permit,
		Vaults:     wiring.Vaults,
		Bundler:    wiring.Bundler,
		Caller:     wiring.Caller,
		Signatures: wiring.Signatures,
		Log:        wiring.Log,
	})

	// A genesis config may bind the client up front; later binding goes
	// through the factory's initialize call.
	if config.Client != (common.Address{}) {
		if err := proxy.Initialize(config.Factory, config.Client, config.FeeBasisPoints); err != nil {
			return err
		}
	}

	CustodyPrecompile.SetProxy(proxy)
	return nil
}

// Config implements the precompileconfig.Config interface.
type Config struct {
	Upgrade  precompileconfig.Upgrade `json:"upgrade,omitempty"`
	Executor common.Address           `json:"executor,omitempty"`
	Factory  common.Address           `json:"factory,omitempty"`
	Treasury common.Address           `json:"treasury,omitempty"`

	// Optional genesis-time client binding.
	Client         common.Address `json:"client,omitempty"`
	FeeBasisPoints uint64         `json:"feeBasisPoints,omitempty"`
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade) &&
		c.Executor == other.Executor &&
		c.Factory == other.Factory &&
		c.Treasury == other.Treasury &&
		c.Client == other.Client &&
		c.FeeBasisPoints == other.FeeBasisPoints
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.Factory == (common.Address{}) {
		return fmt.Errorf("custody config requires a factory address")
	}
	if c.Treasury == (common.Address{}) {
		return fmt.Errorf("custody config requires a treasury address")
	}
	if c.Client != (common.Address{}) && !validFeeRate(c.FeeBasisPoints) {
		return fmt.Errorf("custody config fee must be in (0, %d], got %d", BasisPoints, c.FeeBasisPoints)
	}
	return nil
}
