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

import (
	"math"
	"testing"

	"github.com/Tnze/go-mc/chat"
	"github.com/Tnze/go-mc/level"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// fakeClient записує все, що світ відправляє гравцю
type fakeClient struct {
	nextTeleport int32
	positions    []Position
	disconnected []chat.Message
	added        []int32
	moved        []int32
	teleported   map[int32]Position
}

func newFakeClient() *fakeClient {
	return &fakeClient{teleported: make(map[int32]Position)}
}

func (c *fakeClient) ViewChunkLoad(level.ChunkPos, *level.Chunk) {}
func (c *fakeClient) ViewChunkUnload(level.ChunkPos)             {}
func (c *fakeClient) ViewAddPlayer(p *Player)                    { c.added = append(c.added, p.EntityID) }
func (c *fakeClient) ViewRemoveEntities([]int32)                 {}
func (c *fakeClient) ViewMoveEntityPos(id int32, _ [3]int16, _ bool) {
	c.moved = append(c.moved, id)
}
func (c *fakeClient) ViewMoveEntityPosAndRot(id int32, _ [3]int16, _ [2]int8, _ bool) {
	c.moved = append(c.moved, id)
}
func (c *fakeClient) ViewMoveEntityRot(int32, [2]int8, bool) {}
func (c *fakeClient) ViewRotateHead(int32, int8)             {}
func (c *fakeClient) ViewTeleportEntity(id int32, pos [3]float64, _ [2]int8, _ bool) {
	c.teleported[id] = pos
}
func (c *fakeClient) SendDisconnect(reason chat.Message) {
	c.disconnected = append(c.disconnected, reason)
}
func (c *fakeClient) SendPlayerPosition(pos [3]float64, _ [2]float32) int32 {
	c.nextTeleport++
	c.positions = append(c.positions, pos)
	return c.nextTeleport
}
func (c *fakeClient) SendSetChunkCacheCenter([2]int32) {}

// testWorld - світ без циклу тіків, тіки викликаємо руками
func testWorld() *World {
	return &World{
		log:     zap.NewNop(),
		chunks:  make(map[[2]int32]*LoadedChunk),
		loaders: make(map[ChunkViewer]*loader),
		players: make(map[Client]*Player),
	}
}

func spawn(t *testing.T, w *World, name string, pos Position) (*fakeClient, *Player) {
	t.Helper()
	p := &Player{
		Entity:         Entity{EntityID: NewEntityID(), Position: pos, pos0: pos},
		Name:           name,
		UUID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		ViewDistance:   2,
		EntitiesInView: make(map[int32]*Entity),
	}
	p.Inputs.ViewDistance = 2
	p.Inputs.Position = pos
	c := newFakeClient()
	w.AddPlayer(c, p, rate.NewLimiter(rate.Inf, 1))
	return c, p
}

func TestOnPlayerMove(t *testing.T) {
	w := testWorld()
	_, p := spawn(t, w, "Steve", Position{0, 64, 0})

	var moves []Position
	w.OnPlayerMove(func(mp *Player, pos Position) {
		assert.Same(t, p, mp)
		moves = append(moves, pos)
	})

	p.Inputs.Position = Position{1.5, 64, 0}
	w.subtickUpdatePlayers()
	assert.Equal(t, []Position{{1.5, 64, 0}}, moves)
	assert.Equal(t, Position{1.5, 64, 0}, p.pos0)

	// позиція не змінилась - слухача не кличемо
	w.subtickUpdatePlayers()
	assert.Len(t, moves, 1)

	// занадто швидкий рух повертає гравця назад, це не рух
	p.Inputs.Position = Position{500, 64, 0}
	w.subtickUpdatePlayers()
	assert.Len(t, moves, 1)
	assert.NotNil(t, p.teleport)
}

func TestInvalidMoveDisconnects(t *testing.T) {
	w := testWorld()
	c, p := spawn(t, w, "Steve", Position{0, 64, 0})
	moved := false
	w.OnPlayerMove(func(*Player, Position) { moved = true })

	p.Inputs.Position = Position{math.NaN(), 64, 0}
	w.subtickUpdatePlayers()
	assert.False(t, moved)
	require.Len(t, c.disconnected, 1)
	assert.Equal(t, "multiplayer.disconnect.invalid_player_movement", c.disconnected[0].Translate)
}

func TestFarMoveSentAsTeleport(t *testing.T) {
	w := testWorld()
	_, steve := spawn(t, w, "Steve", Position{0, 64, 0})
	viewer, _ := spawn(t, w, "Alex", Position{4, 64, 4})

	// перший тік - гравці бачать один одного
	w.subtickUpdateEntities()
	require.Contains(t, viewer.added, steve.EntityID)

	steve.pos0 = Position{3, 64, 0}
	w.subtickUpdateEntities()
	assert.Equal(t, []int32{steve.EntityID}, viewer.moved)
	assert.Empty(t, viewer.teleported)

	// рівно 8 блоків вже не влазить у відносний рух
	steve.pos0 = Position{11, 64, 0}
	w.subtickUpdateEntities()
	assert.Len(t, viewer.moved, 1)
	assert.Equal(t, Position{11, 64, 0}, Position(viewer.teleported[steve.EntityID]))
	assert.Equal(t, Position{11, 64, 0}, steve.Position)
}

func TestIsFarMove(t *testing.T) {
	origin := Position{0, 0, 0}
	assert.False(t, isFarMove(origin, Position{7.9, -7.9, 7.9}))
	assert.True(t, isFarMove(origin, Position{8, 0, 0}))
	assert.True(t, isFarMove(origin, Position{0, 0, -8}))
	assert.True(t, isFarMove(origin, Position{0, 100, 0}))
}

func TestTeleportAndLocate(t *testing.T) {
	w := testWorld()
	c, p := spawn(t, w, "Steve", Position{0, 64, 0})

	assert.ErrorIs(t, w.Teleport(c, Position{math.Inf(1), 0, 0}, Rotation{}), ErrInvalidPosition)
	assert.ErrorIs(t, w.Teleport(newFakeClient(), Position{1, 2, 3}, Rotation{}), ErrPlayerNotInWorld)
	_, _, ok := w.Locate(newFakeClient())
	assert.False(t, ok)

	home := Position{100, 70, -20}
	require.NoError(t, w.Teleport(c, home, Rotation{90, 0}))
	assert.Equal(t, []Position{home}, c.positions)

	// поки клієнт не підтвердив, гравець стоїть на старому місці
	pos, _, ok := w.Locate(c)
	require.True(t, ok)
	assert.Equal(t, Position{0, 64, 0}, pos)

	p.Inputs.TeleportID = c.nextTeleport
	w.subtickUpdatePlayers()
	w.subtickUpdateEntities()

	pos, rot, ok := w.Locate(c)
	require.True(t, ok)
	assert.Equal(t, home, pos)
	assert.Equal(t, Rotation{90, 0}, rot)
	assert.Nil(t, p.teleport)
}
