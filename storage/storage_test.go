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

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID     string `gorm:"primaryKey"`
	Name   string
	Weight int
}

var (
	widgetID     = NewField("id", func(w *widget) string { return w.ID })
	widgetName   = NewField("name", func(w *widget) string { return w.Name })
	widgetWeight = NewField("weight", func(w *widget) int { return w.Weight })
	widgetSchema = Schema[widget]{Name: "widgets", ID: widgetID}
)

func newWidgets(t *testing.T) Repository[widget] {
	t.Helper()
	b, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	repo, err := NewRepository(b, widgetSchema)
	require.NoError(t, err)

	ctx := context.Background()
	for _, w := range []widget{
		{ID: "a", Name: "Anvil", Weight: 30},
		{ID: "b", Name: "bucket", Weight: 2},
		{ID: "c", Name: "Cauldron", Weight: 12},
		{ID: "d", Name: "Bell", Weight: 12},
	} {
		require.NoError(t, repo.Save(ctx, &w))
	}
	return repo
}

func TestBadgerFindByID(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	w, err := repo.FindByID(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Cauldron", w.Name)

	_, err = repo.FindByID(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerSaveOverwrites(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &widget{ID: "a", Name: "Anvil", Weight: 31}))
	w, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 31, w.Weight)

	n, err := repo.Count(ctx, All[widget]())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBadgerSaveRejectsEmptyID(t *testing.T) {
	repo := newWidgets(t)
	assert.Error(t, repo.Save(context.Background(), &widget{Name: "ghost"}))
}

func TestBadgerSaveAllIsAtomic(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	err := repo.SaveAll(ctx, &widget{ID: "a", Name: "Anvil", Weight: 99}, &widget{Name: "no id"})
	require.Error(t, err)
	w, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 30, w.Weight, "first write rolled back")

	require.NoError(t, repo.SaveAll(ctx, &widget{ID: "a", Weight: 1}, &widget{ID: "e", Name: "Egg"}))
	w, err = repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Weight)
	n, err := repo.Count(ctx, All[widget]())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestBadgerFindAllSorted(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	all, err := repo.FindAll(ctx, All[widget](), Desc(widgetWeight), Asc(widgetName))
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, w := range all {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"Anvil", "Bell", "Cauldron", "bucket"}, names)
}

func TestBadgerSpecifications(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	cases := []struct {
		name string
		spec Specification[widget]
		want []string
	}{
		{"eq", Eq(widgetWeight, 12), []string{"c", "d"}},
		{"equal fold", EqualFold(widgetName, "BUCKET"), []string{"b"}},
		{"gt", Gt(widgetWeight, 12), []string{"a"}},
		{"lt", Lt(widgetWeight, 12), []string{"b"}},
		{"in", In(widgetID, "a", "d", "x"), []string{"a", "d"}},
		{"in empty", In[widget, string](widgetID), nil},
		{"and", And(Eq(widgetWeight, 12), EqualFold(widgetName, "bell")), []string{"d"}},
		{"or", Or(Eq(widgetID, "a"), Lt(widgetWeight, 5)), []string{"a", "b"}},
		{"not", Not(Eq(widgetWeight, 12)), []string{"a", "b"}},
		{"not all", Not(All[widget]()), nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := repo.FindAll(ctx, c.spec, Asc(widgetID))
			require.NoError(t, err)
			var ids []string
			for _, w := range got {
				ids = append(ids, w.ID)
			}
			assert.Equal(t, c.want, ids)
		})
	}
}

func TestBadgerFindOneAndExists(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	w, err := repo.FindOne(ctx, EqualFold(widgetName, "anvil"))
	require.NoError(t, err)
	assert.Equal(t, "a", w.ID)

	_, err = repo.FindOne(ctx, Gt(widgetWeight, 100))
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.Exists(ctx, Eq(widgetName, "Bell"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, Eq(widgetName, "bell"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerDelete(t *testing.T) {
	repo := newWidgets(t)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), ErrNotFound)

	n, err := repo.DeleteAll(ctx, Eq(widgetWeight, 12))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := repo.FindAll(ctx, All[widget]())
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "b", left[0].ID)
}

func TestBadgerSchemasDoNotOverlap(t *testing.T) {
	b, err := OpenInMemory()
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	a, err := NewRepository(b, widgetSchema)
	require.NoError(t, err)
	other, err := NewRepository(b, Schema[widget]{Name: "widgets2", ID: widgetID})
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, &widget{ID: "1"}))
	require.NoError(t, other.Save(ctx, &widget{ID: "2"}))

	n, err := a.Count(ctx, All[widget]())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRepositoryRequiresSchema(t *testing.T) {
	b, err := OpenInMemory()
	require.NoError(t, err)
	defer b.Close()

	_, err = NewRepository(b, Schema[widget]{})
	assert.Error(t, err)
}
