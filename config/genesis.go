package config

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/ledger"
)

// Genesis is an initial state of the ledger.
type Genesis struct {
	Balances []Balance `yaml:"balances"`
	// Issued in order, so the i-th asset gets ID i.
	Assets []Asset `yaml:"assets"`
}

// Balance is an initial native balance.
type Balance struct {
	Account string      `yaml:"account"`
	Amount  uint256.Int `yaml:"amount"`
}

// Asset is an initially issued fungible asset.
type Asset struct {
	Issuer string      `yaml:"issuer"`
	Supply uint256.Int `yaml:"supply"`
}

func (g Genesis) validate(l codec.Layout) error {
	check := func(name, acc string, amount *uint256.Int) error {
		id, err := account.DecodeString(acc)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, err = codec.EncodeAccount(id, l.AccountWidth); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err = codec.FitAmount(amount, l.AmountWidth); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	for i := range g.Balances {
		if err := check(fmt.Sprintf("balance #%d", i), g.Balances[i].Account, &g.Balances[i].Amount); err != nil {
			return err
		}
	}

	for i := range g.Assets {
		if err := check(fmt.Sprintf("asset #%d", i), g.Assets[i].Issuer, &g.Assets[i].Supply); err != nil {
			return err
		}
	}

	return nil
}

// Apply deposits balances and issues assets if the ledger is empty. Returns
// false if the ledger already has state.
func (g Genesis) Apply(s *ledger.Store) (bool, error) {
	empty, err := s.Empty()
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}

	for i := range g.Balances {
		acc, err := account.DecodeString(g.Balances[i].Account)
		if err != nil {
			return false, err
		}

		if err = s.Deposit(acc, &g.Balances[i].Amount); err != nil {
			return false, fmt.Errorf("deposit to %s: %w", acc, err)
		}
	}

	for i := range g.Assets {
		issuer, err := account.DecodeString(g.Assets[i].Issuer)
		if err != nil {
			return false, err
		}

		if _, err = s.IssueAsset(issuer, &g.Assets[i].Supply); err != nil {
			return false, fmt.Errorf("issue asset #%d: %w", i, err)
		}
	}

	return true, nil
}
