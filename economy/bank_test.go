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

package economy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VanillaTowns/storage"
)

func newBank(t *testing.T, cfg Config) *Bank {
	t.Helper()
	b, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	accounts, err := storage.NewRepository(b, AccountSchema)
	require.NoError(t, err)
	return NewBank(zap.NewNop(), cfg, accounts)
}

func TestBankFlow(t *testing.T) {
	bank := newBank(t, Config{StartingBalance: 10})
	ctx := context.Background()
	steve := uuid.New()

	bal, err := bank.Balance(ctx, steve)
	require.NoError(t, err)
	assert.InDelta(t, 10, bal, 0.001, "unknown player starts with the starting balance")

	bal, err = bank.Deposit(ctx, steve, "Steve", 5.555)
	require.NoError(t, err)
	assert.InDelta(t, 15.56, bal, 0.001)

	_, err = bank.Withdraw(ctx, steve, "Steve", 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err = bank.Withdraw(ctx, steve, "Steve", 5.56)
	require.NoError(t, err)
	assert.InDelta(t, 10, bal, 0.001)

	_, err = bank.Deposit(ctx, steve, "Steve", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = bank.Set(ctx, steve, "Steve", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bal, err = bank.Set(ctx, steve, "Steve", 0)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestBankFindAndTop(t *testing.T) {
	bank := newBank(t, Config{})
	ctx := context.Background()
	for name, amount := range map[string]float64{"Steve": 30, "Alex": 50, "Notch": 30} {
		_, err := bank.Deposit(ctx, uuid.New(), name, amount)
		require.NoError(t, err)
	}
	_, err := bank.Open(ctx, uuid.New(), "Broke")
	require.NoError(t, err)

	a, err := bank.FindByName(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, "Alex", a.Name)

	_, err = bank.FindByName(ctx, "Herobrine")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	top, err := bank.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Alex", top[0].Name)
	assert.Equal(t, "Notch", top[1].Name)

	all, err := bank.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFormat(t *testing.T) {
	bank := newBank(t, Config{Currency: "emeralds"})
	assert.Equal(t, "12.50 emeralds", bank.Format(12.5))
	assert.Equal(t, "coins", newBank(t, Config{}).Currency())
}
