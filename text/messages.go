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

package text

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Tnze/go-mc/chat"
	"github.com/go-yaml/yaml"
)

// Audience - той, кому можна надіслати повідомлення (гравець, консоль)
type Audience interface {
	SendSystemChat(msg chat.Message, overlay bool)
}

// Defaults - повідомлення за замовчуванням.
// Файл messages.yml перекриває тільки ті ключі, які в ньому є.
var Defaults = map[string]string{
	"prefix": "&8[&6Towns&8]&r ",

	"error.generic":          "{prefix}&cSomething went wrong, try again later.",
	"error.no-permission":    "{prefix}&cYou don't have permission to do that.",
	"error.player-only":      "{prefix}&cOnly players can use this command.",
	"error.rate-limited":     "{prefix}&cSlow down!",
	"error.not-in-town":      "{prefix}&cYou are not in a town.",
	"error.already-in-town":  "{prefix}&cYou are already in a town.",
	"error.town-not-found":   "{prefix}&cTown &e{town}&c not found.",
	"error.name-taken":       "{prefix}&cA town with that name already exists.",
	"error.invalid-name":     "{prefix}&cInvalid town name.",
	"error.not-allowed":      "{prefix}&cYour town role doesn't allow that.",
	"error.mayor-leave":      "{prefix}&cThe mayor can't leave. Transfer the town or delete it.",
	"error.self":             "{prefix}&cYou can't do that to yourself.",
	"error.not-member":       "{prefix}&e{player}&c is not a member of your town.",
	"error.target-in-town":   "{prefix}&e{player}&c is already in a town.",
	"error.already-invited":  "{prefix}&e{player}&c is already invited.",
	"error.no-invite":        "{prefix}&cYou have no invite from that town.",
	"error.town-full":        "{prefix}&cThe town is full.",
	"error.invalid-amount":   "{prefix}&cInvalid amount.",
	"error.town-funds":       "{prefix}&cThe town bank doesn't have that much.",
	"error.player-funds":     "{prefix}&cYou don't have that much.",
	"error.no-home":          "{prefix}&cYour town has no home.",
	"error.already-officer":  "{prefix}&e{player}&c is already an officer.",
	"error.not-officer":      "{prefix}&e{player}&c is not an officer.",
	"error.player-not-found": "{prefix}&cPlayer &e{player}&c not found.",
	"error.world-not-loaded": "{prefix}&cThat world is not loaded.",
	"error.usage":            "{prefix}&cUsage: &e{usage}",

	"town.created":           "{prefix}&aTown &e{town}&a created!",
	"town.created-broadcast": "{prefix}&e{player}&a founded the town &e{town}&a.",
	"town.deleted":           "{prefix}&aTown &e{town}&a deleted.",
	"town.deleted-notice":    "{prefix}&cYour town &e{town}&c was disbanded.",
	"town.info.header":       "&8&m----&r &6{town} &8&m----",
	"town.info.mayor":        "&7Mayor: &f{mayor}",
	"town.info.balance":      "&7Bank: &f{balance}",
	"town.info.members":      "&7Members ({count}): &f{members}",
	"town.info.home":         "&7Home: &f{home}",
	"town.info.founded":      "&7Founded: &f{date}",
	"town.list.header":       "&6Towns &7(page {page}/{pages}, by {order})",
	"town.list.entry":        "&7{rank}. &e{town} &7- {members} members, {balance}",
	"town.list.empty":        "{prefix}&7There are no towns yet.",
	"town.invite.sent":       "{prefix}&aInvited &e{player}&a to the town.",
	"town.invite.received":   "{prefix}&e{player}&a invited you to &e{town}&a. Use &e/town join {town}&a or &e/town deny {town}&a.",
	"town.invite.denied":     "{prefix}&7You denied the invite from &e{town}&7.",
	"town.invite.none":       "{prefix}&7You have no invites.",
	"town.invite.list":       "{prefix}&7Invites: &e{towns}",
	"town.joined":            "{prefix}&aYou joined &e{town}&a!",
	"town.member-joined":     "{prefix}&e{player}&a joined the town.",
	"town.left":              "{prefix}&7You left &e{town}&7.",
	"town.member-left":       "{prefix}&e{player}&7 left the town.",
	"town.kicked":            "{prefix}&aKicked &e{player}&a from the town.",
	"town.kicked-notice":     "{prefix}&cYou were kicked from &e{town}&c.",
	"town.promoted":          "{prefix}&e{player}&a is now an officer.",
	"town.demoted":           "{prefix}&e{player}&7 is now a citizen.",
	"town.transferred":       "{prefix}&e{player}&a is the new mayor of &e{town}&a.",
	"town.permission-set":    "{prefix}&7{permission} for &e{player}&7: &f{value}",
	"town.deposit":           "{prefix}&aDeposited &e{amount}&a. Town bank: &e{balance}",
	"town.withdraw":          "{prefix}&aWithdrew &e{amount}&a. Town bank: &e{balance}",
	"town.balance":           "{prefix}&7Town bank: &e{balance}",
	"town.home.set":          "{prefix}&aTown home set.",
	"town.home.deleted":      "{prefix}&7Town home removed.",
	"town.home.wait":         "{prefix}&7Teleporting in &e{seconds}&7 seconds, don't move...",
	"town.home.done":         "{prefix}&aWelcome home.",
	"town.home.moved":        "{prefix}&cTeleport cancelled, you moved.",
	"town.home.cancelled":    "{prefix}&cTeleport cancelled.",
	"town.renamed":           "{prefix}&aTown renamed from &e{old}&a to &e{town}&a.",
	"town.help":              "&6/town &7create|delete|info|list|invite|invites|join|deny|leave|kick|promote|demote|transfer|deposit|withdraw|balance|sethome|delhome|home|rename|permission",

	"chat.town-format": "&8[&a{town}&8] &f{player}&7: &f{message}",
	"chat.tag":         "&8[&a{town}&8]&r ",
	"chat.toggled-on":  "{prefix}&aTown chat mode on. Your messages go to the town.",
	"chat.toggled-off": "{prefix}&7Town chat mode off.",
	"chat.spy":         "&8[&7spy&8] &8[{town}] {player}: {message}",

	"eco.balance":       "{prefix}&7Balance: &e{balance}",
	"eco.balance-other": "{prefix}&7{player}'s balance: &e{balance}",
	"eco.updated":       "{prefix}&7{player}'s balance is now &e{balance}",
	"eco.top.header":    "&6Richest players",
	"eco.top.entry":     "&7{rank}. &e{player} &7- {balance}",

	"staff.deleted":     "{prefix}&aTown &e{town}&a force-deleted.",
	"staff.balance-set": "{prefix}&aTown &e{town}&a bank set to &e{balance}&a.",
	"staff.mayor-set":   "{prefix}&e{player}&a is now the mayor of &e{town}&a.",
	"staff.reloaded":    "{prefix}&aMessages reloaded.",
	"staff.help":        "&6/vt &7delete|setbalance|setmayor|dump|eco|reload",
}

// Messages - шаблони повідомлень за ключами
type Messages struct {
	templates map[string]string
}

// New повертає повідомлення за замовчуванням
func New() *Messages {
	m := &Messages{templates: make(map[string]string, len(Defaults))}
	for k, v := range Defaults {
		m.templates[k] = v
	}
	return m
}

// Load читає messages.yml поверх стандартних повідомлень.
// Якщо файла нема - просто повертає стандартні.
func Load(path string) (*Messages, error) {
	m := New()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string]any
	if err := yaml.NewDecoder(f).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	flatten("", raw, m.templates)
	return m, nil
}

// flatten перетворює вкладений YAML у ключі через крапку:
// town: {created: ...} -> "town.created"
func flatten(prefix string, v any, out map[string]string) {
	join := func(k any) string {
		key := fmt.Sprint(k)
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			flatten(join(k), child, out)
		}
	case []any:
		lines := make([]string, 0, len(v))
		for _, l := range v {
			lines = append(lines, fmt.Sprint(l))
		}
		out[prefix] = strings.Join(lines, "\n")
	case nil:
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// Keys повертає всі відомі ключі, відсортовані
func (m *Messages) Keys() []string {
	keys := make([]string, 0, len(m.templates))
	for k := range m.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw повертає шаблон без підстановок
func (m *Messages) Raw(key string) (string, bool) {
	s, ok := m.templates[key]
	return s, ok
}

// Format підставляє {prefix} і пари ключ-значення: Format("town.joined", "town", "Oak").
// Невідомий ключ повертається як є, щоб його було видно в чаті.
func (m *Messages) Format(key string, kv ...string) string {
	tmpl, ok := m.templates[key]
	if !ok {
		return key
	}
	pairs := make([]string, 0, len(kv)+2)
	pairs = append(pairs, "{prefix}", m.templates["prefix"])
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Component - Format перетворений у chat.Message
func (m *Messages) Component(key string, kv ...string) chat.Message {
	return Legacy(m.Format(key, kv...))
}

// Send відправляє повідомлення одному отримувачу.
// Багаторядкові шаблони йдуть окремими повідомленнями.
func (m *Messages) Send(to Audience, key string, kv ...string) {
	for _, line := range strings.Split(m.Format(key, kv...), "\n") {
		to.SendSystemChat(Legacy(line), false)
	}
}

// Broadcast відправляє повідомлення всім
func Broadcast[A Audience](m *Messages, to []A, key string, kv ...string) {
	msg := m.Component(key, kv...)
	for _, a := range to {
		a.SendSystemChat(msg, false)
	}
}

// Store тримає поточні повідомлення і вміє перечитати файл на льоту
type Store struct {
	path string
	cur  atomic.Pointer[Messages]
}

// NewStore читає файл і повертає сховище
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Static - сховище без файлу, для тестів і дефолтів
func Static(m *Messages) *Store {
	s := &Store{}
	s.cur.Store(m)
	return s
}

// Get повертає поточні повідомлення
func (s *Store) Get() *Messages { return s.cur.Load() }

// Reload перечитує файл. При помилці старі повідомлення лишаються.
func (s *Store) Reload() error {
	if s.path == "" {
		if s.cur.Load() == nil {
			s.cur.Store(New())
		}
		return nil
	}
	m, err := Load(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(m)
	return nil
}
