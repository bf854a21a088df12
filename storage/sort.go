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
	"golang.org/x/exp/constraints"
	"gorm.io/gorm/clause"
)

// Sort - правило сортування за однією колонкою.
// Кілька правил застосовуються по черзі, як ORDER BY a, b.
type Sort[T any] struct {
	Column  string
	Desc    bool
	compare func(a, b *T) int
}

// Asc сортує за зростанням
func Asc[T any, V constraints.Ordered](f Field[T, V]) Sort[T] {
	return Sort[T]{
		Column:  f.Column,
		compare: func(a, b *T) int { return compareOrdered(f.Get(a), f.Get(b)) },
	}
}

// Desc сортує за спаданням
func Desc[T any, V constraints.Ordered](f Field[T, V]) Sort[T] {
	s := Asc(f)
	s.Desc = true
	return s
}

func compareOrdered[V constraints.Ordered](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s Sort[T]) orderBy() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc}
}

// comparator складає всі правила в одну функцію для slices.SortStableFunc
func comparator[T any](sorts []Sort[T]) func(a, b T) int {
	return func(a, b T) int {
		for _, s := range sorts {
			c := s.compare(&a, &b)
			if s.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}
