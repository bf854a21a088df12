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

package world

import "errors"

var (
	ErrPlayerNotInWorld = errors.New("player is not in this world")
	ErrInvalidPosition  = errors.New("invalid position")
)

// Teleport переносить гравця в іншу точку світу.
// Позиція оновиться коли клієнт підтвердить телепортацію (див. subtickUpdatePlayers).
func (w *World) Teleport(c Client, pos Position, rot Rotation) error {
	if !pos.IsValid() {
		return ErrInvalidPosition
	}
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	p, ok := w.players[c]
	if !ok {
		return ErrPlayerNotInWorld
	}
	id := c.SendPlayerPosition(pos, rot)
	p.teleport = &TeleportRequest{
		ID:       id,
		Position: pos,
		Rotation: rot,
	}
	return nil
}

// Locate повертає поточну позицію гравця
func (w *World) Locate(c Client) (Position, Rotation, bool) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	p, ok := w.players[c]
	if !ok {
		return Position{}, Rotation{}, false
	}
	return p.Position, p.Rotation, true
}
