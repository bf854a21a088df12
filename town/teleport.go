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
	"sync"
	"time"

	"github.com/google/uuid"
)

// MoveTolerance - на скільки блоків можна зрушити поки чекаєш телепорт
const MoveTolerance = 0.5

// Teleportable - гравець, якого можна перенести
type Teleportable interface {
	Location() Location
	Teleport(to Location) error
}

// HomeTeleportRequest - відкладений телепорт додому
type HomeTeleportRequest struct {
	player uuid.UUID
	target Teleportable
	from   Location
	to     Location
	timer  *time.Timer
	done   func(error)
}

// HomeTeleports тримає всі відкладені телепорти, по одному на гравця
type HomeTeleports struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[uuid.UUID]*HomeTeleportRequest
}

// NewHomeTeleports створює планувальник з затримкою delay
func NewHomeTeleports(delay time.Duration) *HomeTeleports {
	return &HomeTeleports{
		delay:   delay,
		pending: make(map[uuid.UUID]*HomeTeleportRequest),
	}
}

// Delay повертає затримку телепорту
func (h *HomeTeleports) Delay() time.Duration { return h.delay }

// Schedule ставить телепорт в чергу. Старий запит гравця скасовується.
// done викликається один раз: nil після телепорту або помилка.
func (h *HomeTeleports) Schedule(id uuid.UUID, target Teleportable, to Location, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	req := &HomeTeleportRequest{
		player: id,
		target: target,
		from:   target.Location(),
		to:     to,
		done:   done,
	}

	h.mu.Lock()
	prev := h.pending[id]
	h.pending[id] = req
	if prev != nil {
		prev.timer.Stop()
	}
	req.timer = time.AfterFunc(h.delay, func() { h.fire(req) })
	h.mu.Unlock()

	if prev != nil {
		prev.done(ErrTeleportCancelled)
	}
}

func (h *HomeTeleports) fire(req *HomeTeleportRequest) {
	h.mu.Lock()
	if h.pending[req.player] != req {
		h.mu.Unlock()
		return
	}
	delete(h.pending, req.player)
	h.mu.Unlock()

	if req.target.Location().Distance(req.from) > MoveTolerance {
		req.done(ErrTeleportMoved)
		return
	}
	req.done(req.target.Teleport(req.to))
}

// Moved - гравець зрушив з місця. Скасовує телепорт, якщо він відійшов
// далі ніж MoveTolerance від точки, де попросив телепорт.
func (h *HomeTeleports) Moved(id uuid.UUID, at Location) bool {
	h.mu.Lock()
	req, ok := h.pending[id]
	if !ok || at.Distance(req.from) <= MoveTolerance {
		h.mu.Unlock()
		return false
	}
	delete(h.pending, id)
	req.timer.Stop()
	h.mu.Unlock()

	req.done(ErrTeleportMoved)
	return true
}

// Cancel скасовує телепорт гравця (вихід з сервера, нова команда)
func (h *HomeTeleports) Cancel(id uuid.UUID) bool {
	h.mu.Lock()
	req, ok := h.pending[id]
	if ok {
		delete(h.pending, id)
		req.timer.Stop()
	}
	h.mu.Unlock()

	if ok {
		req.done(ErrTeleportCancelled)
	}
	return ok
}

// Pending - чи чекає гравець телепорт
func (h *HomeTeleports) Pending(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.pending[id]
	return ok
}
