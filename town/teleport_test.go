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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBody struct {
	mu  sync.Mutex
	loc Location
	tp  []Location
}

func (b *fakeBody) Location() Location {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loc
}

func (b *fakeBody) Teleport(to Location) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tp = append(b.tp, to)
	b.loc = to
	return nil
}

func (b *fakeBody) move(x float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loc.X += x
}

func waitResult(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "teleport did not finish")
		return nil
	}
}

var home = Location{World: "overworld", X: 100, Y: 70, Z: 100}

func TestHomeTeleport(t *testing.T) {
	h := NewHomeTeleports(10 * time.Millisecond)
	body := &fakeBody{loc: Location{World: "overworld"}}
	id := player("Steve").ID
	done := make(chan error, 1)

	h.Schedule(id, body, home, func(err error) { done <- err })
	assert.True(t, h.Pending(id))
	body.move(0.3) // small steps are fine

	require.NoError(t, waitResult(t, done))
	assert.Equal(t, []Location{home}, body.tp)
	assert.False(t, h.Pending(id))
}

func TestHomeTeleportMoved(t *testing.T) {
	h := NewHomeTeleports(20 * time.Millisecond)
	body := &fakeBody{loc: Location{World: "overworld"}}
	done := make(chan error, 1)

	h.Schedule(player("Steve").ID, body, home, func(err error) { done <- err })
	body.move(2)

	assert.ErrorIs(t, waitResult(t, done), ErrTeleportMoved)
	assert.Empty(t, body.tp)
}

func TestHomeTeleportMovedEvent(t *testing.T) {
	h := NewHomeTeleports(time.Hour)
	body := &fakeBody{loc: Location{World: "overworld"}}
	id := player("Steve").ID
	done := make(chan error, 1)

	h.Schedule(id, body, home, func(err error) { done <- err })
	assert.False(t, h.Moved(id, Location{World: "overworld", X: 0.4}))
	assert.True(t, h.Pending(id))

	assert.True(t, h.Moved(id, Location{World: "overworld", X: 1}))
	assert.ErrorIs(t, waitResult(t, done), ErrTeleportMoved)
	assert.False(t, h.Pending(id))
	assert.False(t, h.Moved(id, Location{World: "overworld", X: 5}))
}

func TestHomeTeleportCancel(t *testing.T) {
	h := NewHomeTeleports(time.Hour)
	body := &fakeBody{loc: Location{World: "overworld"}}
	id := player("Steve").ID
	done := make(chan error, 1)

	h.Schedule(id, body, home, func(err error) { done <- err })
	assert.True(t, h.Cancel(id))
	assert.ErrorIs(t, waitResult(t, done), ErrTeleportCancelled)
	assert.False(t, h.Cancel(id))
	assert.Empty(t, body.tp)
}

func TestHomeTeleportReplaces(t *testing.T) {
	h := NewHomeTeleports(10 * time.Millisecond)
	body := &fakeBody{loc: Location{World: "overworld"}}
	id := player("Steve").ID
	first, second := make(chan error, 1), make(chan error, 1)

	h.Schedule(id, body, home, func(err error) { first <- err })
	h.Schedule(id, body, home, func(err error) { second <- err })

	assert.ErrorIs(t, waitResult(t, first), ErrTeleportCancelled)
	require.NoError(t, waitResult(t, second))
	assert.Len(t, body.tp, 1)
}
