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

import "errors"

// Помилки які бачить гравець. Шар команд перетворює їх на повідомлення.
var (
	ErrNotInTown         = errors.New("player is not in a town")
	ErrAlreadyInTown     = errors.New("player is already in a town")
	ErrTownNotFound      = errors.New("town not found")
	ErrNameTaken         = errors.New("town name is taken")
	ErrInvalidName       = errors.New("town name is invalid")
	ErrNoPermission      = errors.New("not allowed in this town")
	ErrMayorCannotLeave  = errors.New("mayor cannot leave the town")
	ErrSelfTarget        = errors.New("cannot target yourself")
	ErrNotMember         = errors.New("player is not a member of this town")
	ErrTargetInTown      = errors.New("target is already in a town")
	ErrAlreadyInvited    = errors.New("target is already invited")
	ErrNoInvite          = errors.New("no invite from this town")
	ErrTownFull          = errors.New("town is full")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("town balance is too low")
	ErrNoHome            = errors.New("town has no home")
	ErrAlreadyOfficer    = errors.New("member is already an officer")
	ErrNotOfficer        = errors.New("member is not an officer")
	ErrTeleportMoved     = errors.New("teleport cancelled because the player moved")
	ErrTeleportCancelled = errors.New("teleport cancelled")
	ErrWorldNotLoaded    = errors.New("world is not loaded")
)
