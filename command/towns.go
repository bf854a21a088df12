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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"VanillaTowns/economy"
	"VanillaTowns/text"
	"VanillaTowns/town"
)

// Towns - всі команди міст: /town, /townchat, /vanillatowns, /balance
type Towns struct {
	log       *zap.Logger
	svc       *town.Service
	bank      *economy.Bank
	msgs      *text.Store
	players   Players
	teleports *town.HomeTeleports
	chat      *TownChat

	sub map[string]subcommand
}

type subcommand struct {
	usage string
	run   func(ctx context.Context, s Sender, args []string) error
}

// NewTowns збирає команди
func NewTowns(log *zap.Logger, svc *town.Service, bank *economy.Bank, msgs *text.Store, players Players) *Towns {
	t := &Towns{
		log:       log,
		svc:       svc,
		bank:      bank,
		msgs:      msgs,
		players:   players,
		teleports: town.NewHomeTeleports(svc.Config().HomeDelay.Duration),
		chat:      NewTownChat(),
	}
	t.sub = map[string]subcommand{
		"help":       {"/town help", t.help},
		"create":     {"/town create <name>", t.create},
		"new":        {"/town create <name>", t.create},
		"delete":     {"/town delete", t.delete},
		"disband":    {"/town delete", t.delete},
		"info":       {"/town info [town]", t.info},
		"list":       {"/town list [balance|members|name|age] [page]", t.list},
		"invite":     {"/town invite <player>", t.invite},
		"add":        {"/town invite <player>", t.invite},
		"invites":    {"/town invites", t.invites},
		"join":       {"/town join <town>", t.join},
		"accept":     {"/town join <town>", t.join},
		"deny":       {"/town deny <town>", t.deny},
		"leave":      {"/town leave", t.leave},
		"kick":       {"/town kick <player>", t.kick},
		"promote":    {"/town promote <player>", t.promote},
		"demote":     {"/town demote <player>", t.demote},
		"transfer":   {"/town transfer <player>", t.transfer},
		"deposit":    {"/town deposit <amount>", t.deposit},
		"withdraw":   {"/town withdraw <amount>", t.withdraw},
		"balance":    {"/town balance", t.balance},
		"bank":       {"/town balance", t.balance},
		"sethome":    {"/town sethome", t.setHome},
		"delhome":    {"/town delhome", t.delHome},
		"home":       {"/town home", t.home},
		"spawn":      {"/town home", t.home},
		"rename":     {"/town rename <name>", t.rename},
		"permission": {"/town permission <player> <deposit|withdraw> <true|false>", t.permission},
		"perm":       {"/town permission <player> <deposit|withdraw> <true|false>", t.permission},
	}
	return t
}

// Chat повертає стан режиму міського чату
func (t *Towns) Chat() *TownChat { return t.chat }

// Teleports повертає відкладені телепорти додому
func (t *Towns) Teleports() *town.HomeTeleports { return t.teleports }

// Commands повертає всі команди для реєстрації
func (t *Towns) Commands() []*Command {
	return []*Command{
		{
			Name:       "town",
			Aliases:    []string{"t"},
			Permission: PermTown,
			Usage:      "/town <subcommand>",
			Run:        t.town,
		},
		{
			Name:       "townchat",
			Aliases:    []string{"tc"},
			Permission: PermTownChat,
			Usage:      "/townchat [message]",
			Run:        t.townChat,
		},
		{
			Name:       "vanillatowns",
			Aliases:    []string{"vt"},
			Permission: PermStaff,
			Usage:      "/vt <subcommand>",
			Run:        t.staff,
		},
		{
			Name:    "balance",
			Aliases: []string{"bal", "money"},
			Usage:   "/balance [player]",
			Run:     t.playerBalance,
		},
	}
}

func (t *Towns) send(to text.Audience, key string, kv ...string) {
	t.msgs.Get().Send(to, key, kv...)
}

func player(s Sender) town.Player { return town.Player{ID: s.UUID(), Name: s.Name()} }

// notify шле повідомлення всім онлайн жителям міста, крім except
func (t *Towns) notify(tw *town.Town, except uuid.UUID, key string, kv ...string) {
	for _, id := range tw.MemberIDs() {
		if id == except {
			continue
		}
		if p, ok := t.players.ByUUID(id); ok {
			t.send(p, key, kv...)
		}
	}
}

func (t *Towns) town(ctx context.Context, s Sender, args []string) error {
	if len(args) == 0 {
		return t.help(ctx, s, nil)
	}
	sub, ok := t.sub[strings.ToLower(args[0])]
	if !ok {
		return t.help(ctx, s, nil)
	}
	err := sub.run(ctx, s, args[1:])
	if _, bad := err.(usageError); bad {
		return usage(sub.usage)
	}
	return err
}

// errUsage - маркер, замість нього підставляється usage підкоманди
var errUsage = usageError{}

func (t *Towns) help(_ context.Context, s Sender, _ []string) error {
	t.send(s, "town.help")
	return nil
}

func (t *Towns) create(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, err := t.svc.Create(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "town", args[0])
	}
	t.send(s, "town.created", "town", tw.Name)
	for _, p := range t.players.All() {
		if p.UUID() != s.UUID() {
			t.send(p, "town.created-broadcast", "player", s.Name(), "town", tw.Name)
		}
	}
	return nil
}

func (t *Towns) delete(ctx context.Context, s Sender, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	tw, err := t.svc.Delete(ctx, player(s))
	if err != nil {
		return err
	}
	t.send(s, "town.deleted", "town", tw.Name)
	t.notify(tw, s.UUID(), "town.deleted-notice", "town", tw.Name)
	return nil
}

func formatLocation(l town.Location) string {
	return fmt.Sprintf("%s %d %d %d", l.World, int(math.Floor(l.X)), int(math.Floor(l.Y)), int(math.Floor(l.Z)))
}

func (t *Towns) info(ctx context.Context, s Sender, args []string) error {
	var (
		tw  *town.Town
		err error
	)
	switch len(args) {
	case 0:
		tw, err = t.svc.TownOf(ctx, s.UUID())
	case 1:
		tw, err = t.svc.Get(ctx, args[0])
		err = withArgs(err, "town", args[0])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	mayor := "-"
	if m := tw.Mayor(); m != nil {
		mayor = m.Name
	}
	names := lo.Map(tw.Members, func(m *town.Member, _ int) string {
		if m.Role == town.RoleCitizen {
			return m.Name
		}
		return m.Name + " (" + m.Role.Title() + ")"
	})

	t.send(s, "town.info.header", "town", tw.Name)
	t.send(s, "town.info.mayor", "mayor", mayor)
	t.send(s, "town.info.balance", "balance", t.bank.Format(tw.Balance))
	t.send(s, "town.info.members", "count", strconv.Itoa(len(tw.Members)), "members", strings.Join(names, ", "))
	if tw.HasHome() {
		t.send(s, "town.info.home", "home", formatLocation(tw.Home))
	}
	t.send(s, "town.info.founded", "date", tw.CreatedAt.Format("2006-01-02"))
	return nil
}

func (t *Towns) list(ctx context.Context, s Sender, args []string) error {
	order, page := town.OrderBalance, 1
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			page = n
			continue
		}
		switch o := town.ListOrder(strings.ToLower(a)); o {
		case town.OrderBalance, town.OrderMembers, town.OrderName, town.OrderAge:
			order = o
		default:
			return errUsage
		}
	}
	res, err := t.svc.List(ctx, order, page)
	if err != nil {
		return err
	}
	if len(res.Towns) == 0 {
		t.send(s, "town.list.empty")
		return nil
	}
	t.send(s, "town.list.header", "page", strconv.Itoa(res.Page), "pages", strconv.Itoa(res.Pages), "order", string(order))
	first := (res.Page-1)*t.svc.Config().ListPageSize + 1
	for i, tw := range res.Towns {
		t.send(s, "town.list.entry",
			"rank", strconv.Itoa(first+i),
			"town", tw.Name,
			"members", strconv.Itoa(len(tw.Members)),
			"balance", t.bank.Format(tw.Balance),
		)
	}
	return nil
}

func (t *Towns) online(name string) (Sender, error) {
	p, ok := t.players.ByName(name)
	if !ok {
		return nil, withArgs(errNoPlayer, "player", name)
	}
	return p, nil
}

func (t *Towns) invite(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	target, err := t.online(args[0])
	if err != nil {
		return err
	}
	tw, err := t.svc.Invite(ctx, player(s), player(target))
	if err != nil {
		return withArgs(err, "player", target.Name())
	}
	t.send(s, "town.invite.sent", "player", target.Name())
	t.send(target, "town.invite.received", "player", s.Name(), "town", tw.Name)
	return nil
}

func (t *Towns) invites(ctx context.Context, s Sender, _ []string) error {
	towns, err := t.svc.Invitations(ctx, s.UUID())
	if err != nil {
		return err
	}
	if len(towns) == 0 {
		t.send(s, "town.invite.none")
		return nil
	}
	names := lo.Map(towns, func(tw *town.Town, _ int) string { return tw.Name })
	t.send(s, "town.invite.list", "towns", strings.Join(names, ", "))
	return nil
}

func (t *Towns) join(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, err := t.svc.Join(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "town", args[0])
	}
	t.send(s, "town.joined", "town", tw.Name)
	t.notify(tw, s.UUID(), "town.member-joined", "player", s.Name())
	return nil
}

func (t *Towns) deny(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, err := t.svc.Deny(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "town", args[0])
	}
	t.send(s, "town.invite.denied", "town", tw.Name)
	return nil
}

func (t *Towns) leave(ctx context.Context, s Sender, _ []string) error {
	tw, err := t.svc.Leave(ctx, player(s))
	if err != nil {
		return err
	}
	t.chat.Disable(s.UUID())
	t.send(s, "town.left", "town", tw.Name)
	t.notify(tw, s.UUID(), "town.member-left", "player", s.Name())
	return nil
}

func (t *Towns) kick(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, kicked, err := t.svc.Kick(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "player", args[0])
	}
	t.send(s, "town.kicked", "player", kicked.Name)
	if p, ok := t.players.ByUUID(kicked.UUID()); ok {
		t.chat.Disable(p.UUID())
		t.send(p, "town.kicked-notice", "town", tw.Name)
	}
	return nil
}

func (t *Towns) promote(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, m, err := t.svc.Promote(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "player", args[0])
	}
	t.notify(tw, uuid.Nil, "town.promoted", "player", m.Name)
	return nil
}

func (t *Towns) demote(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, m, err := t.svc.Demote(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "player", args[0])
	}
	t.notify(tw, uuid.Nil, "town.demoted", "player", m.Name)
	return nil
}

func (t *Towns) transfer(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, m, err := t.svc.Transfer(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "player", args[0])
	}
	t.notify(tw, uuid.Nil, "town.transferred", "player", m.Name, "town", tw.Name)
	return nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, town.ErrInvalidAmount
	}
	return v, nil
}

func (t *Towns) deposit(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	tw, amount, err := t.svc.Deposit(ctx, player(s), amount)
	if err != nil {
		return err
	}
	t.send(s, "town.deposit", "amount", t.bank.Format(amount), "balance", t.bank.Format(tw.Balance))
	return nil
}

func (t *Towns) withdraw(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	tw, amount, err := t.svc.Withdraw(ctx, player(s), amount)
	if err != nil {
		return err
	}
	t.send(s, "town.withdraw", "amount", t.bank.Format(amount), "balance", t.bank.Format(tw.Balance))
	return nil
}

func (t *Towns) balance(ctx context.Context, s Sender, _ []string) error {
	tw, err := t.svc.TownOf(ctx, s.UUID())
	if err != nil {
		return err
	}
	t.send(s, "town.balance", "balance", t.bank.Format(tw.Balance))
	return nil
}

func (t *Towns) setHome(ctx context.Context, s Sender, _ []string) error {
	if _, err := t.svc.SetHome(ctx, player(s), s.Location()); err != nil {
		return err
	}
	t.send(s, "town.home.set")
	return nil
}

func (t *Towns) delHome(ctx context.Context, s Sender, _ []string) error {
	if _, err := t.svc.DelHome(ctx, player(s)); err != nil {
		return err
	}
	t.send(s, "town.home.deleted")
	return nil
}

func (t *Towns) home(ctx context.Context, s Sender, _ []string) error {
	_, loc, err := t.svc.Home(ctx, player(s))
	if err != nil {
		return err
	}
	if delay := t.teleports.Delay(); delay > 0 {
		t.send(s, "town.home.wait", "seconds", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
	}
	t.teleports.Schedule(s.UUID(), s, loc, func(err error) {
		if _, online := t.players.ByUUID(s.UUID()); !online {
			return
		}
		switch {
		case err == nil:
			t.send(s, "town.home.done")
		case errors.Is(err, town.ErrTeleportMoved):
			t.send(s, "town.home.moved")
		case errors.Is(err, town.ErrTeleportCancelled):
			t.send(s, "town.home.cancelled")
		default:
			t.log.Warn("Home teleport fail", zap.String("player", s.Name()), zap.Error(err))
			t.send(s, "error.world-not-loaded")
		}
	})
	return nil
}

func (t *Towns) rename(ctx context.Context, s Sender, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tw, old, err := t.svc.Rename(ctx, player(s), args[0])
	if err != nil {
		return withArgs(err, "town", args[0])
	}
	t.notify(tw, uuid.Nil, "town.renamed", "old", old, "town", tw.Name)
	return nil
}

func (t *Towns) permission(ctx context.Context, s Sender, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	perm := town.BankPermission(strings.ToLower(args[1]))
	if perm != town.PermDeposit && perm != town.PermWithdraw {
		return errUsage
	}
	value, err := strconv.ParseBool(args[2])
	if err != nil {
		return errUsage
	}
	_, m, err := t.svc.SetPermission(ctx, player(s), args[0], perm, value)
	if err != nil {
		return withArgs(err, "player", args[0])
	}
	t.send(s, "town.permission-set", "permission", string(perm), "player", m.Name, "value", strconv.FormatBool(value))
	return nil
}

// PlayerJoined - гравець зайшов на сервер
func (t *Towns) PlayerJoined(ctx context.Context, s Sender) {
	if _, err := t.bank.Open(ctx, s.UUID(), s.Name()); err != nil {
		t.log.Error("Open account fail", zap.String("player", s.Name()), zap.Error(err))
	}
	if _, err := t.svc.PlayerJoined(ctx, player(s)); err != nil {
		t.log.Error("Load town fail", zap.String("player", s.Name()), zap.Error(err))
	}
}

// PlayerQuit - гравець вийшов, прибираємо все що з ним пов'язано
func (t *Towns) PlayerQuit(id uuid.UUID) {
	t.teleports.Cancel(id)
	t.chat.Disable(id)
	t.svc.PlayerQuit(id)
}
