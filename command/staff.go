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

package command

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"github.com/sanity-io/litter"
	"go.uber.org/zap"

	"VanillaTowns/economy"
)

// staff - /vanillatowns для адміністрації
func (t *Towns) staff(ctx context.Context, s Sender, args []string) error {
	if len(args) == 0 {
		t.send(s, "staff.help")
		return nil
	}
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "delete":
		if len(rest) != 1 {
			return usage("/vt delete <town>")
		}
		tw, err := t.svc.ForceDelete(ctx, rest[0])
		if err != nil {
			return withArgs(err, "town", rest[0])
		}
		t.notify(tw, s.UUID(), "town.deleted-notice", "town", tw.Name)
		t.send(s, "staff.deleted", "town", tw.Name)
		t.log.Info("Town force-deleted", zap.String("town", tw.Name), zap.String("by", s.Name()))

	case "setbalance":
		if len(rest) != 2 {
			return usage("/vt setbalance <town> <amount>")
		}
		amount, err := parseAmount(rest[1])
		if err != nil {
			return err
		}
		tw, err := t.svc.SetBalance(ctx, rest[0], amount)
		if err != nil {
			return withArgs(err, "town", rest[0])
		}
		t.send(s, "staff.balance-set", "town", tw.Name, "balance", t.bank.Format(tw.Balance))

	case "setmayor":
		if len(rest) != 2 {
			return usage("/vt setmayor <town> <player>")
		}
		tw, m, err := t.svc.SetMayor(ctx, rest[0], rest[1])
		if err != nil {
			return withArgs(err, "town", rest[0], "player", rest[1])
		}
		t.send(s, "staff.mayor-set", "player", m.Name, "town", tw.Name)
		t.notify(tw, s.UUID(), "town.transferred", "player", m.Name, "town", tw.Name)

	case "dump":
		if len(rest) != 1 {
			return usage("/vt dump <town>")
		}
		tw, err := t.svc.Get(ctx, rest[0])
		if err != nil {
			return withArgs(err, "town", rest[0])
		}
		dump := litter.Options{HidePrivateFields: true, StripPackageNames: true}.Sdump(tw)
		t.log.Debug("Town dump", zap.String("town", tw.Name), zap.String("dump", dump))
		for _, line := range strings.Split(dump, "\n") {
			s.SendSystemChat(chat.Text(line).SetColor(chat.Gray), false)
		}

	case "eco":
		return t.eco(ctx, s, rest)

	case "reload":
		if err := t.msgs.Reload(); err != nil {
			return err
		}
		t.send(s, "staff.reloaded")

	default:
		t.send(s, "staff.help")
	}
	return nil
}

// account шукає гравця онлайн, а якщо нема - його гаманець за ніком
func (t *Towns) account(ctx context.Context, name string) (uuid.UUID, string, error) {
	if p, ok := t.players.ByName(name); ok {
		return p.UUID(), p.Name(), nil
	}
	a, err := t.bank.FindByName(ctx, name)
	if err != nil {
		return uuid.Nil, "", withArgs(err, "player", name)
	}
	id, err := uuid.Parse(a.PlayerID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, a.Name, nil
}

// eco - /vt eco <player> <give|take|set> <amount> і /vt eco top
func (t *Towns) eco(ctx context.Context, s Sender, args []string) error {
	const ecoUsage = "/vt eco <player> <give|take|set> <amount> | /vt eco top"
	if len(args) == 1 && strings.EqualFold(args[0], "top") {
		top, err := t.bank.Top(ctx, 10)
		if err != nil {
			return err
		}
		t.send(s, "eco.top.header")
		for i, a := range top {
			t.send(s, "eco.top.entry", "rank", strconv.Itoa(i+1), "player", a.Name, "balance", t.bank.Format(a.Balance))
		}
		return nil
	}
	if len(args) != 3 {
		return usage(ecoUsage)
	}
	id, name, err := t.account(ctx, args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}

	var balance float64
	switch strings.ToLower(args[1]) {
	case "give":
		balance, err = t.bank.Deposit(ctx, id, name, amount)
	case "take":
		balance, err = t.bank.Withdraw(ctx, id, name, amount)
	case "set":
		balance, err = t.bank.Set(ctx, id, name, amount)
	default:
		return usage(ecoUsage)
	}
	if err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			// показуємо скільки є насправді
			t.send(s, "eco.balance-other", "player", name, "balance", t.bank.Format(balance))
			return nil
		}
		return err
	}
	t.send(s, "eco.updated", "player", name, "balance", t.bank.Format(balance))
	t.log.Info("Balance changed", zap.String("player", name), zap.String("op", args[1]), zap.Float64("amount", amount), zap.String("by", s.Name()))
	return nil
}

// playerBalance - /balance [player]
func (t *Towns) playerBalance(ctx context.Context, s Sender, args []string) error {
	switch len(args) {
	case 0:
		bal, err := t.bank.Balance(ctx, s.UUID())
		if err != nil {
			return err
		}
		t.send(s, "eco.balance", "balance", t.bank.Format(bal))
	case 1:
		id, name, err := t.account(ctx, args[0])
		if err != nil {
			return err
		}
		bal, err := t.bank.Balance(ctx, id)
		if err != nil {
			return err
		}
		t.send(s, "eco.balance-other", "player", name, "balance", t.bank.Format(bal))
	default:
		return usage("/balance [player]")
	}
	return nil
}
