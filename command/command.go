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

// Йоу, чат! Тут роутер команд.
// Клієнт шле "/town invite Steve" як пакет ChatCommand без слеша.
// Ми розбиваємо рядок на слова, шукаємо команду за назвою або аліасом,
// перевіряємо право і запускаємо її. Помилки сервісів перетворюються
// на повідомлення з messages.yml.

package command

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"VanillaTowns/economy"
	"VanillaTowns/text"
	"VanillaTowns/town"
)

// Sender - гравець, який виконує команду
type Sender interface {
	text.Audience
	town.Teleportable
	UUID() uuid.UUID
	Name() string
	HasPermission(node string) bool
}

// Players - онлайн гравці
type Players interface {
	ByName(name string) (Sender, bool)
	ByUUID(id uuid.UUID) (Sender, bool)
	All() []Sender
}

// Command - одна команда з аліасами
type Command struct {
	Name       string
	Aliases    []string
	Permission string
	Usage      string
	Run        func(ctx context.Context, s Sender, args []string) error
}

// Права
const (
	PermTown     = "vanillatowns.command.town"
	PermTownChat = "vanillatowns.command.townchat"
	PermStaff    = "vanillatowns.staff"
)

var errNoPlayer = errors.New("player not found")

// usageError - неправильні аргументи
type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

func usage(u string) error { return usageError{usage: u} }

// argsError додає плейсхолдери до помилки, наприклад {player}
type argsError struct {
	err error
	kv  []string
}

func (e argsError) Error() string { return e.err.Error() }
func (e argsError) Unwrap() error { return e.err }

// withArgs приймає те, що ввів гравець, тому коди кольорів у значеннях екрануються
func withArgs(err error, kv ...string) error {
	if err == nil {
		return nil
	}
	escaped := make([]string, len(kv))
	for i, v := range kv {
		if i%2 == 1 {
			v = text.Escape(v)
		}
		escaped[i] = v
	}
	return argsError{err: err, kv: escaped}
}

// errorKeys - яка помилка яким повідомленням показується
var errorKeys = []struct {
	err error
	key string
}{
	{errNoPlayer, "error.player-not-found"},
	{town.ErrNotInTown, "error.not-in-town"},
	{town.ErrAlreadyInTown, "error.already-in-town"},
	{town.ErrTownNotFound, "error.town-not-found"},
	{town.ErrNameTaken, "error.name-taken"},
	{town.ErrInvalidName, "error.invalid-name"},
	{town.ErrNoPermission, "error.not-allowed"},
	{town.ErrMayorCannotLeave, "error.mayor-leave"},
	{town.ErrSelfTarget, "error.self"},
	{town.ErrNotMember, "error.not-member"},
	{town.ErrTargetInTown, "error.target-in-town"},
	{town.ErrAlreadyInvited, "error.already-invited"},
	{town.ErrNoInvite, "error.no-invite"},
	{town.ErrTownFull, "error.town-full"},
	{town.ErrInvalidAmount, "error.invalid-amount"},
	{town.ErrInsufficientFunds, "error.town-funds"},
	{town.ErrNoHome, "error.no-home"},
	{town.ErrAlreadyOfficer, "error.already-officer"},
	{town.ErrNotOfficer, "error.not-officer"},
	{town.ErrWorldNotLoaded, "error.world-not-loaded"},
	{economy.ErrInsufficientFunds, "error.player-funds"},
	{economy.ErrInvalidAmount, "error.invalid-amount"},
	{economy.ErrAccountNotFound, "error.player-not-found"},
}

// Dispatcher шукає і запускає команди
type Dispatcher struct {
	log      *zap.Logger
	msgs     *text.Store
	commands map[string]*Command

	limit    func() *rate.Limiter
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
}

// NewDispatcher створює роутер. limit може бути nil - тоді без обмежень.
func NewDispatcher(log *zap.Logger, msgs *text.Store, limit func() *rate.Limiter) *Dispatcher {
	return &Dispatcher{
		log:      log,
		msgs:     msgs,
		commands: make(map[string]*Command),
		limit:    limit,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

// Register додає команди під назвою і всіма аліасами
func (d *Dispatcher) Register(cmds ...*Command) {
	for _, c := range cmds {
		d.commands[c.Name] = c
		for _, a := range c.Aliases {
			d.commands[a] = c
		}
	}
}

// Lookup шукає команду за назвою або аліасом
func (d *Dispatcher) Lookup(label string) (*Command, bool) {
	c, ok := d.commands[strings.ToLower(label)]
	return c, ok
}

func (d *Dispatcher) allow(id uuid.UUID) bool {
	if d.limit == nil {
		return true
	}
	d.mu.Lock()
	l, ok := d.limiters[id]
	if !ok {
		l = d.limit()
		d.limiters[id] = l
	}
	d.mu.Unlock()
	return l.Allow()
}

// Forget прибирає ліміт гравця, коли він виходить
func (d *Dispatcher) Forget(id uuid.UUID) {
	d.mu.Lock()
	delete(d.limiters, id)
	d.mu.Unlock()
}

// Execute виконує рядок команди. Повертає false якщо такої команди нема.
func (d *Dispatcher) Execute(ctx context.Context, s Sender, line string) bool {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return false
	}
	cmd, ok := d.Lookup(fields[0])
	if !ok {
		s.SendSystemChat(chat.TranslateMsg("command.unknown.command").SetColor(chat.Red), false)
		return false
	}
	msgs := d.msgs.Get()
	if cmd.Permission != "" && !s.HasPermission(cmd.Permission) {
		msgs.Send(s, "error.no-permission")
		return true
	}
	if !d.allow(s.UUID()) {
		msgs.Send(s, "error.rate-limited")
		return true
	}

	d.log.Debug("Command", zap.String("player", s.Name()), zap.String("line", line))
	if err := cmd.Run(ctx, s, fields[1:]); err != nil {
		d.report(s, cmd, err)
	}
	return true
}

func (d *Dispatcher) report(s Sender, cmd *Command, err error) {
	msgs := d.msgs.Get()
	var kv []string
	var ae argsError
	if errors.As(err, &ae) {
		kv = ae.kv
	}

	var ue usageError
	if errors.As(err, &ue) {
		msgs.Send(s, "error.usage", "usage", ue.usage)
		return
	}
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			msgs.Send(s, e.key, kv...)
			return
		}
	}
	d.log.Error("Command fail", zap.String("command", cmd.Name), zap.String("player", s.Name()), zap.Error(err))
	msgs.Send(s, "error.generic")
}
