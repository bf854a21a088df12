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

// Йоу, чат! Кеш міст, в яких зараз хтось онлайн.
// Читають його часто (чат, табличка, HTTP), а пишуть рідко (вхід/вихід,
// команди). Тому список копіюється при кожному записі, а читачі
// просто беруть поточний знімок без блокувань.

package town

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Cache - потокобезпечний список завантажених міст
type Cache struct {
	mu    sync.Mutex // тільки для записувачів
	towns atomic.Pointer[[]*Town]
}

// NewCache створює пустий кеш
func NewCache() *Cache {
	c := &Cache{}
	c.towns.Store(&[]*Town{})
	return c
}

func (c *Cache) snapshot() []*Town { return *c.towns.Load() }

// Put додає місто або замінює його за ID.
// Місто після Put не можна змінювати, тільки Clone і знову Put.
func (c *Cache) Put(t *Town) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.snapshot()
	next := make([]*Town, 0, len(old)+1)
	for _, o := range old {
		if o.ID != t.ID {
			next = append(next, o)
		}
	}
	next = append(next, t)
	c.towns.Store(&next)
}

// Remove прибирає місто з кешу, повертає true якщо воно там було
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.snapshot()
	i := slices.IndexFunc(old, func(t *Town) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(old), i, i+1)
	c.towns.Store(&next)
	return true
}

// Get шукає місто за ID
func (c *Cache) Get(id string) (*Town, bool) {
	for _, t := range c.snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// ByName шукає місто за назвою без урахування регістру
func (c *Cache) ByName(name string) (*Town, bool) {
	for _, t := range c.snapshot() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// ByMember шукає місто гравця
func (c *Cache) ByMember(id uuid.UUID) (*Town, bool) {
	for _, t := range c.snapshot() {
		if t.Member(id) != nil {
			return t, true
		}
	}
	return nil, false
}

// All повертає знімок усіх міст
func (c *Cache) All() []*Town {
	return slices.Clone(c.snapshot())
}

// Len - кількість міст у кеші
func (c *Cache) Len() int { return len(c.snapshot()) }
