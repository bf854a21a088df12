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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTown(id, name string, members ...Player) *Town {
	t := &Town{ID: id, Name: name}
	for i, p := range members {
		role := RoleCitizen
		if i == 0 {
			role = RoleMayor
		}
		t.Members = append(t.Members, &Member{PlayerID: p.ID.String(), TownID: id, Name: p.Name, Role: role})
	}
	return t
}

func TestCache(t *testing.T) {
	c := NewCache()
	steve, alex := player("Steve"), player("Alex")
	oak := testTown("1", "Oakvale", steve)
	birch := testTown("2", "Birchwood", alex)
	c.Put(oak)
	c.Put(birch)
	assert.Equal(t, 2, c.Len())

	got, ok := c.ByName("OAKVALE")
	require.True(t, ok)
	assert.Same(t, oak, got)

	got, ok = c.ByMember(alex.ID)
	require.True(t, ok)
	assert.Same(t, birch, got)

	_, ok = c.ByMember(uuid.New())
	assert.False(t, ok)

	// replacing keeps one entry per id
	renamed := oak.Clone()
	renamed.Name = "Oakhill"
	c.Put(renamed)
	assert.Equal(t, 2, c.Len())
	_, ok = c.ByName("Oakvale")
	assert.False(t, ok)
	got, ok = c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Oakhill", got.Name)

	assert.True(t, c.Remove("1"))
	assert.False(t, c.Remove("1"))
	assert.Equal(t, 1, c.Len())
}

func TestCacheSnapshotIsStable(t *testing.T) {
	c := NewCache()
	c.Put(testTown("1", "Oakvale", player("Steve")))
	snap := c.All()
	c.Put(testTown("2", "Birchwood", player("Alex")))
	c.Remove("1")
	assert.Len(t, snap, 1)
	assert.Equal(t, "Oakvale", snap[0].Name)
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		id := uuid.NewString()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(&Town{ID: id, Name: id})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.All()
				_, _ = c.ByName(id)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, c.Len())
}

func TestTownClone(t *testing.T) {
	orig := testTown("1", "Oakvale", player("Steve"), player("Alex"))
	c := orig.Clone()
	c.Members[1].Role = RoleOfficer
	c.removeMember(c.Members[0].PlayerID)

	assert.Len(t, orig.Members, 2)
	assert.Equal(t, RoleCitizen, orig.Members[1].Role)
	assert.Len(t, c.Members, 1)
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleMayor.Outranks(RoleOfficer))
	assert.True(t, RoleOfficer.Outranks(RoleCitizen))
	assert.False(t, RoleOfficer.Outranks(RoleOfficer))
	assert.False(t, RoleCitizen.CanInvite())
	assert.True(t, RoleOfficer.CanSetHome())
	assert.Equal(t, "Mayor", RoleMayor.Title())
	assert.Equal(t, "", Role("").Title())

	m := &Member{Role: RoleCitizen}
	assert.False(t, m.MayDeposit())
	assert.False(t, m.MayWithdraw())
	m.CanWithdraw = true
	assert.True(t, m.MayWithdraw())
	assert.True(t, (&Member{Role: RoleOfficer}).MayDeposit())
	assert.False(t, (&Member{Role: RoleOfficer}).MayWithdraw())
}

func TestInvites(t *testing.T) {
	inv := NewInvites(time.Minute)
	steve := player("Steve").ID

	assert.True(t, inv.Add(steve, "oak"))
	assert.False(t, inv.Add(steve, "oak"))
	assert.True(t, inv.Add(steve, "birch"))
	assert.ElementsMatch(t, []string{"oak", "birch"}, inv.For(steve))

	assert.True(t, inv.Consume(steve, "oak"))
	assert.False(t, inv.Consume(steve, "oak"))
	assert.False(t, inv.Has(steve, "oak"))

	inv.Add(player("Alex").ID, "birch")
	inv.RemoveTown("birch")
	assert.Empty(t, inv.For(steve))

	inv.Add(steve, "spruce")
	inv.RemovePlayer(steve)
	assert.False(t, inv.Has(steve, "spruce"))
}

func TestInvitesExpire(t *testing.T) {
	inv := NewInvites(20 * time.Millisecond)
	steve := player("Steve").ID
	inv.Add(steve, "oak")
	assert.Eventually(t, func() bool { return !inv.Has(steve, "oak") }, time.Second, 10*time.Millisecond)
	assert.True(t, inv.Add(steve, "oak"), "expired invite can be sent again")
}

func TestLocationDistance(t *testing.T) {
	a := Location{World: "overworld", X: 0, Y: 64, Z: 0}
	assert.InDelta(t, 5, a.Distance(Location{World: "overworld", X: 3, Y: 64, Z: 4}), 1e-9)
	assert.True(t, a.Distance(Location{World: "nether"}) > 1e9)
	assert.True(t, Location{}.IsZero())
}
