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

package town

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Invites - запрошення в міста. Живуть тільки в пам'яті і протухають самі.
// Ключ "<гравець>|<місто>", тому гравець може мати кілька запрошень.
type Invites struct {
	c *cache.Cache
}

// NewInvites створює сховище запрошень з часом життя ttl
func NewInvites(ttl time.Duration) *Invites {
	return &Invites{c: cache.New(ttl, 2*ttl)}
}

func inviteKey(player uuid.UUID, townID string) string {
	return player.String() + "|" + townID
}

// Add запрошує гравця, повертає false якщо запрошення вже є
func (i *Invites) Add(player uuid.UUID, townID string) bool {
	return i.c.Add(inviteKey(player, townID), townID, cache.DefaultExpiration) == nil
}

// Has перевіряє чи є живе запрошення
func (i *Invites) Has(player uuid.UUID, townID string) bool {
	_, ok := i.c.Get(inviteKey(player, townID))
	return ok
}

// Consume забирає запрошення, повертає false якщо його не було
func (i *Invites) Consume(player uuid.UUID, townID string) bool {
	key := inviteKey(player, townID)
	if _, ok := i.c.Get(key); !ok {
		return false
	}
	i.c.Delete(key)
	return true
}

// For повертає ID міст, які запросили гравця
func (i *Invites) For(player uuid.UUID) []string {
	prefix := player.String() + "|"
	var towns []string
	for k, item := range i.c.Items() {
		if strings.HasPrefix(k, prefix) {
			towns = append(towns, item.Object.(string))
		}
	}
	return towns
}

// RemovePlayer видаляє всі запрошення гравця (він вступив у місто)
func (i *Invites) RemovePlayer(player uuid.UUID) {
	prefix := player.String() + "|"
	for k := range i.c.Items() {
		if strings.HasPrefix(k, prefix) {
			i.c.Delete(k)
		}
	}
}

// RemoveTown видаляє всі запрошення від міста (його видалили)
func (i *Invites) RemoveTown(townID string) {
	suffix := "|" + townID
	for k := range i.c.Items() {
		if strings.HasSuffix(k, suffix) {
			i.c.Delete(k)
		}
	}
}
