// This file is part of VanillaTowns.
// Copyright (C) 2026.  VanillaTowns contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Йоу, чат! Тут гаманці гравців.
// Ванільний Minecraft не має грошей, тому тримаємо їх самі:
// один запис на гравця, баланс у монетах з двома знаками після коми.

package economy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"VanillaTowns/storage"
)

var (
	ErrInsufficientFunds = errors.New("not enough money")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountNotFound   = errors.New("account not found")
)

// Config - секція [economy]
type Config struct {
	// Скільки грошей отримує новий гравець
	StartingBalance float64 `toml:"starting-balance"`
	// Назва валюти в повідомленнях
	Currency string `toml:"currency"`
}

// Account - гаманець гравця
type Account struct {
	PlayerID string  `json:"playerId" gorm:"primaryKey;type:text"`
	Name     string  `json:"name" gorm:"type:text;index"`
	Balance  float64 `json:"balance"`
}

var (
	fieldAccountID      = storage.NewField("player_id", func(a *Account) string { return a.PlayerID })
	fieldAccountName    = storage.NewField("name", func(a *Account) string { return a.Name })
	fieldAccountBalance = storage.NewField("balance", func(a *Account) float64 { return a.Balance })

	AccountSchema = storage.Schema[Account]{Name: "accounts", ID: fieldAccountID}
)

// Bank керує гаманцями. Реалізує town.Wallet.
type Bank struct {
	log      *zap.Logger
	cfg      Config
	accounts storage.Repository[Account]
	mu       sync.Mutex
}

// NewBank створює банк поверх репозиторію
func NewBank(log *zap.Logger, cfg Config, accounts storage.Repository[Account]) *Bank {
	if cfg.Currency == "" {
		cfg.Currency = "coins"
	}
	return &Bank{log: log, cfg: cfg, accounts: accounts}
}

// Currency - назва валюти
func (b *Bank) Currency() string { return b.cfg.Currency }

// Format показує суму з валютою: "12.50 coins"
func (b *Bank) Format(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + " " + b.cfg.Currency
}

func round(v float64) float64 { return math.Round(v*100) / 100 }

func checkAmount(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	amount = round(amount)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// account дістає гаманець, якщо його нема - створює з початковим балансом
func (b *Bank) account(ctx context.Context, id uuid.UUID, name string) (*Account, error) {
	a, err := b.accounts.FindByID(ctx, id.String())
	if errors.Is(err, storage.ErrNotFound) {
		return &Account{PlayerID: id.String(), Name: name, Balance: round(b.cfg.StartingBalance)}, nil
	} else if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	if name != "" {
		a.Name = name
	}
	return a, nil
}

// Open створює гаманець при першому вході гравця
func (b *Bank) Open(ctx context.Context, id uuid.UUID, name string) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.account(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if err := b.accounts.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	return a, nil
}

// Balance повертає баланс гравця
func (b *Bank) Balance(ctx context.Context, id uuid.UUID) (float64, error) {
	a, err := b.account(ctx, id, "")
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (b *Bank) update(ctx context.Context, id uuid.UUID, name string, apply func(a *Account) error) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.account(ctx, id, name)
	if err != nil {
		return 0, err
	}
	if err := apply(a); err != nil {
		return a.Balance, err
	}
	a.Balance = round(a.Balance)
	if err := b.accounts.Save(ctx, a); err != nil {
		return 0, fmt.Errorf("save account: %w", err)
	}
	return a.Balance, nil
}

// Deposit додає гроші, повертає новий баланс
func (b *Bank) Deposit(ctx context.Context, id uuid.UUID, name string, amount float64) (float64, error) {
	amount, err := checkAmount(amount)
	if err != nil {
		return 0, err
	}
	return b.update(ctx, id, name, func(a *Account) error {
		a.Balance += amount
		return nil
	})
}

// Withdraw знімає гроші, повертає новий баланс
func (b *Bank) Withdraw(ctx context.Context, id uuid.UUID, name string, amount float64) (float64, error) {
	amount, err := checkAmount(amount)
	if err != nil {
		return 0, err
	}
	return b.update(ctx, id, name, func(a *Account) error {
		if a.Balance < amount {
			return ErrInsufficientFunds
		}
		a.Balance -= amount
		return nil
	})
}

// Set ставить баланс напряму (команда адміністрації)
func (b *Bank) Set(ctx context.Context, id uuid.UUID, name string, balance float64) (float64, error) {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		return 0, ErrInvalidAmount
	}
	return b.update(ctx, id, name, func(a *Account) error {
		a.Balance = balance
		return nil
	})
}

// FindByName шукає гаманець за ніком, для офлайн гравців
func (b *Bank) FindByName(ctx context.Context, name string) (*Account, error) {
	a, err := b.accounts.FindOne(ctx, storage.EqualFold(fieldAccountName, name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return a, err
}

// Top повертає найбагатших гравців
func (b *Bank) Top(ctx context.Context, n int) ([]Account, error) {
	all, err := b.accounts.FindAll(ctx, storage.Gt(fieldAccountBalance, 0),
		storage.Desc(fieldAccountBalance), storage.Asc(fieldAccountName))
	if err != nil {
		return nil, err
	}
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}
