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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"VanillaTowns/command"
)

func TestMatchNode(t *testing.T) {
	for _, tc := range []struct {
		pattern, node string
		want          bool
	}{
		{"*", "vanillatowns.staff", true},
		{"vanillatowns.*", "vanillatowns.command.town", true},
		{"vanillatowns.command.*", "vanillatowns.staff", false},
		{"vanillatowns.staff", "vanillatowns.staff", true},
		{"VanillaTowns.Staff", "vanillatowns.staff", true},
		{"vanillatowns.staff", "vanillatowns.staff.extra", false},
	} {
		assert.Equal(t, tc.want, matchNode(tc.pattern, tc.node), "%s ~ %s", tc.pattern, tc.node)
	}
}

func TestPermissions(t *testing.T) {
	admin := uuid.New()
	perms := Permissions{
		Staff:   []string{admin.String()},
		Players: map[string][]string{"Builder": {"vanillatowns.staff"}},
	}

	steve := uuid.New()
	assert.True(t, perms.Has("Steve", steve, command.PermTown))
	assert.True(t, perms.Has("Steve", steve, command.PermTownChat))
	assert.False(t, perms.Has("Steve", steve, command.PermStaff))

	assert.True(t, perms.Has("Admin", admin, command.PermStaff))
	assert.True(t, perms.Has("builder", uuid.New(), command.PermStaff))

	// явний пустий список забирає команди в усіх
	none := Permissions{Default: []string{}}
	assert.False(t, none.Has("Steve", steve, command.PermTown))
}
