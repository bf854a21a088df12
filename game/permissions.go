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

	"github.com/google/uuid"

	"VanillaTowns/command"
)

// Permissions - хто які команди може виконувати.
// Вузли пишуться через крапку, "*" в кінці означає всі дочірні вузли.
type Permissions struct {
	// Default - вузли для всіх гравців
	Default []string `toml:"default"`
	// Staff - ніки або UUID адмінів, їм можна все
	Staff []string `toml:"staff"`
	// Players - додаткові вузли для окремих гравців (нік або UUID)
	Players map[string][]string `toml:"players"`
}

// DefaultNodes - що отримує звичайний гравець якщо в конфігу нічого не вказано
var DefaultNodes = []string{command.PermTown, command.PermTownChat}

// Has перевіряє чи є в гравця право node
func (p *Permissions) Has(name string, id uuid.UUID, node string) bool {
	for _, s := range p.Staff {
		if matchPlayer(s, name, id) {
			return true
		}
	}
	nodes := p.Default
	if nodes == nil {
		nodes = DefaultNodes
	}
	if anyMatch(nodes, node) {
		return true
	}
	for who, nodes := range p.Players {
		if matchPlayer(who, name, id) && anyMatch(nodes, node) {
			return true
		}
	}
	return false
}

func matchPlayer(who, name string, id uuid.UUID) bool {
	if u, err := uuid.Parse(who); err == nil {
		return u == id
	}
	return strings.EqualFold(who, name)
}

func anyMatch(patterns []string, node string) bool {
	for _, p := range patterns {
		if matchNode(p, node) {
			return true
		}
	}
	return false
}

// matchNode: "a.b" підходить тільки до "a.b", "a.*" - до "a.b" і "a.b.c", "*" - до всього
func matchNode(pattern, node string) bool {
	pattern = strings.ToLower(pattern)
	node = strings.ToLower(node)
	if pattern == "*" || pattern == node {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(node, prefix)
	}
	return false
}
