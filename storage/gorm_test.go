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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunRepo будує SQL без підключення до бази
func dryRunRepo(t *testing.T) *gormRepository[widget] {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=towns dbname=towns sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return &gormRepository[widget]{db: db, schema: widgetSchema}
}

func TestGormSpecificationToSQL(t *testing.T) {
	repo := dryRunRepo(t)

	var out []widget
	spec := And(Eq(widgetWeight, 12), EqualFold(widgetName, "Bell"))
	stmt := repo.query(context.Background(), spec).
		Order(Desc(widgetWeight).orderBy()).
		Find(&out).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "widgets"`)
	assert.Contains(t, sql, `"weight" = $1`)
	assert.Contains(t, sql, `LOWER("name") = $2`)
	assert.Contains(t, sql, `ORDER BY "weight" DESC`)
	assert.Equal(t, []any{12, "bell"}, stmt.Vars)
}

func TestGormOrAndNot(t *testing.T) {
	repo := dryRunRepo(t)

	var out []widget
	spec := Or(Eq(widgetID, "a"), Not(Gt(widgetWeight, 5)))
	sql := repo.query(context.Background(), spec).Find(&out).Statement.SQL.String()
	assert.Contains(t, sql, `"id" = $1 OR`)
	assert.Contains(t, sql, `"weight" <= $2`)
}

func TestGormAllHasNoWhere(t *testing.T) {
	repo := dryRunRepo(t)

	var out []widget
	sql := repo.query(context.Background(), All[widget]()).Find(&out).Statement.SQL.String()
	assert.NotContains(t, sql, "WHERE")
}

func TestGormDeleteAllWithoutCondition(t *testing.T) {
	repo := dryRunRepo(t)

	_, err := repo.DeleteAll(context.Background(), All[widget]())
	assert.NoError(t, err)
}
