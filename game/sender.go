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

package game

import (
	"strings"
	"sync"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"

	"VanillaTowns/client"
	"VanillaTowns/command"
	"VanillaTowns/town"
	"VanillaTowns/world"
)

// sender - онлайн гравець очима команд
type sender struct {
	c     *client.Client
	p     *world.Player
	w     *world.World
	perms *Permissions
}

func (s *sender) SendSystemChat(msg chat.Message, overlay bool) { s.c.SendSystemChat(msg, overlay) }

func (s *sender) UUID() uuid.UUID { return s.p.UUID }
func (s *sender) Name() string    { return s.p.Name }

func (s *sender) HasPermission(node string) bool {
	return s.perms.Has(s.p.Name, s.p.UUID, node)
}

// Location - де гравець зараз стоїть
func (s *sender) Location() town.Location {
	pos, rot, ok := s.w.Locate(s.c)
	if !ok {
		return town.Location{}
	}
	return town.Location{
		World: s.w.Name(),
		X:     pos[0], Y: pos[1], Z: pos[2],
		Yaw: rot[0], Pitch: rot[1],
	}
}

// Teleport - телепорт в межах світу гравця
func (s *sender) Teleport(l town.Location) error {
	if l.World != s.w.Name() {
		return town.ErrWorldNotLoaded
	}
	return s.w.Teleport(s.c, world.Position{l.X, l.Y, l.Z}, world.Rotation{l.Yaw, l.Pitch})
}

// onlinePlayers - реєстр онлайн гравців для команд і кешу міст
type onlinePlayers struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*sender
}

func newOnlinePlayers() *onlinePlayers {
	return &onlinePlayers{players: make(map[uuid.UUID]*sender)}
}

func (o *onlinePlayers) add(s *sender) {
	o.mu.Lock()
	o.players[s.UUID()] = s
	o.mu.Unlock()
}

func (o *onlinePlayers) remove(id uuid.UUID) {
	o.mu.Lock()
	delete(o.players, id)
	o.mu.Unlock()
}

func (o *onlinePlayers) ByName(name string) (command.Sender, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, s := range o.players {
		if strings.EqualFold(s.Name(), name) {
			return s, true
		}
	}
	return nil, false
}

func (o *onlinePlayers) ByUUID(id uuid.UUID) (command.Sender, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.players[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (o *onlinePlayers) All() []command.Sender {
	o.mu.RLock()
	defer o.mu.RUnlock()
	all := make([]command.Sender, 0, len(o.players))
	for _, s := range o.players {
		all = append(all, s)
	}
	return all
}

// IsOnline потрібен кешу міст
func (o *onlinePlayers) IsOnline(id uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.players[id]
	return ok
}
