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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VanillaTowns/town"
)

type fakeTowns struct {
	towns     []*town.Town
	lastOrder town.ListOrder
	lastPage  int
}

func (f *fakeTowns) List(_ context.Context, order town.ListOrder, page int) (town.Page, error) {
	f.lastOrder, f.lastPage = order, page
	return town.Page{Towns: f.towns, Page: page, Pages: 1}, nil
}

func (f *fakeTowns) Get(_ context.Context, name string) (*town.Town, error) {
	for _, t := range f.towns {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, town.ErrTownNotFound
}

func (f *fakeTowns) TownOf(_ context.Context, id uuid.UUID) (*town.Town, error) {
	for _, t := range f.towns {
		if t.Member(id) != nil {
			return t, nil
		}
	}
	return nil, town.ErrNotInTown
}

var steve = uuid.MustParse("8667ba71-b85a-4004-af54-457a9734eed7")

func newTestServer() (*fakeTowns, http.Handler) {
	towns := &fakeTowns{towns: []*town.Town{{
		ID:      "t1",
		Name:    "Oakvale",
		Balance: 12.5,
		Home:    town.Location{World: "minecraft:overworld", X: 1, Y: 64, Z: 2},
		Members: []*town.Member{
			{PlayerID: steve.String(), TownID: "t1", Name: "Steve", Role: town.RoleMayor},
			{PlayerID: uuid.NewString(), TownID: "t1", Name: "Alex", Role: town.RoleCitizen},
		},
	}}}
	return towns, New(zap.NewNop(), towns)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestListTowns(t *testing.T) {
	towns, h := newTestServer()
	res := get(t, h, "/towns?order=members&page=2")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, town.OrderMembers, towns.lastOrder)
	assert.Equal(t, 2, towns.lastPage)

	var body ListView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Towns, 1)
	assert.Equal(t, "Steve", body.Towns[0].Mayor)
	assert.Len(t, body.Towns[0].Members, 2)
}

func TestListTownsBadQuery(t *testing.T) {
	_, h := newTestServer()
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/towns?order=size").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/towns?page=zero").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/towns?page=0").Code)
}

func TestGetTown(t *testing.T) {
	_, h := newTestServer()
	res := get(t, h, "/towns/oakvale")
	require.Equal(t, http.StatusOK, res.Code)

	var body TownView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Oakvale", body.Name)
	assert.InDelta(t, 12.5, body.Balance, 1e-9)
	require.NotNil(t, body.Home)
	assert.Equal(t, "minecraft:overworld", body.Home.World)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/towns/nowhere").Code)
}

func TestPlayerTown(t *testing.T) {
	_, h := newTestServer()
	res := get(t, h, "/players/"+steve.String()+"/town")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"name":"Oakvale"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/players/"+uuid.NewString()+"/town").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/players/notauuid/town").Code)
}

func TestServeDisabled(t *testing.T) {
	assert.NoError(t, Serve(context.Background(), zap.NewNop(), Config{}, &fakeTowns{}))
}
