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

// Специфікації - це умови вибірки, які однаково працюють і в пам'яті
// (для badger, де ми просто перебираємо значення), і в SQL (для gorm).
// Кожна специфікація вміє дві речі: перевірити значення і побудувати
// clause.Expression для WHERE.

package storage

import (
	"strings"

	"golang.org/x/exp/constraints"
	"gorm.io/gorm/clause"
)

// Field описує колонку сутності: назву в базі та функцію доступу до значення
type Field[T any, V any] struct {
	Column string
	Get    func(*T) V
}

// NewField створює опис колонки
func NewField[T any, V any](column string, get func(*T) V) Field[T, V] {
	return Field[T, V]{Column: column, Get: get}
}

// Schema описує де живе сутність і як знайти її ID
type Schema[T any] struct {
	// Name - префікс ключів у badger і назва таблиці в SQL
	Name string
	ID   Field[T, string]
}

// Specification - умова вибірки сутностей
type Specification[T any] interface {
	// Match перевіряє значення в пам'яті
	Match(v *T) bool
	// Expression повертає умову для WHERE, nil означає "без умови"
	Expression() clause.Expression
}

type spec[T any] struct {
	match func(*T) bool
	expr  clause.Expression
}

func (s spec[T]) Match(v *T) bool              { return s.match(v) }
func (s spec[T]) Expression() clause.Expression { return s.expr }

func column(name string) clause.Column { return clause.Column{Name: name} }

// All пропускає всі сутності
func All[T any]() Specification[T] {
	return spec[T]{match: func(*T) bool { return true }}
}

// Eq - значення колонки дорівнює v
func Eq[T any, V comparable](f Field[T, V], v V) Specification[T] {
	return spec[T]{
		match: func(t *T) bool { return f.Get(t) == v },
		expr:  clause.Eq{Column: column(f.Column), Value: v},
	}
}

// EqualFold порівнює рядки без урахування регістру.
// Назви міст і ніки гравців шукаємо саме так.
func EqualFold[T any](f Field[T, string], v string) Specification[T] {
	return spec[T]{
		match: func(t *T) bool { return strings.EqualFold(f.Get(t), v) },
		expr: clause.Expr{
			SQL:  "LOWER(?) = ?",
			Vars: []any{column(f.Column), strings.ToLower(v)},
		},
	}
}

// Gt - значення колонки більше за v
func Gt[T any, V constraints.Ordered](f Field[T, V], v V) Specification[T] {
	return spec[T]{
		match: func(t *T) bool { return f.Get(t) > v },
		expr:  clause.Gt{Column: column(f.Column), Value: v},
	}
}

// Lt - значення колонки менше за v
func Lt[T any, V constraints.Ordered](f Field[T, V], v V) Specification[T] {
	return spec[T]{
		match: func(t *T) bool { return f.Get(t) < v },
		expr:  clause.Lt{Column: column(f.Column), Value: v},
	}
}

// In - значення колонки входить у список
func In[T any, V comparable](f Field[T, V], values ...V) Specification[T] {
	set := make(map[V]struct{}, len(values))
	vars := make([]any, 0, len(values))
	for _, v := range values {
		set[v] = struct{}{}
		vars = append(vars, v)
	}
	if len(values) == 0 {
		return none[T]()
	}
	return spec[T]{
		match: func(t *T) bool {
			_, ok := set[f.Get(t)]
			return ok
		},
		expr: clause.IN{Column: column(f.Column), Values: vars},
	}
}

// none не пропускає нічого
func none[T any]() Specification[T] {
	return spec[T]{
		match: func(*T) bool { return false },
		expr:  clause.Expr{SQL: "1 = 0"},
	}
}

// And - всі умови виконуються
func And[T any](specs ...Specification[T]) Specification[T] {
	var exprs []clause.Expression
	for _, s := range specs {
		if e := s.Expression(); e != nil {
			exprs = append(exprs, e)
		}
	}
	s := spec[T]{match: func(t *T) bool {
		for _, s := range specs {
			if !s.Match(t) {
				return false
			}
		}
		return true
	}}
	if len(exprs) > 0 {
		s.expr = clause.And(exprs...)
	}
	return s
}

// Or - хоча б одна умова виконується
func Or[T any](specs ...Specification[T]) Specification[T] {
	if len(specs) == 0 {
		return none[T]()
	}
	exprs := make([]clause.Expression, 0, len(specs))
	all := false
	for _, s := range specs {
		e := s.Expression()
		if e == nil {
			// одна з гілок пропускає все, отже і вся умова теж
			all = true
			break
		}
		exprs = append(exprs, e)
	}
	s := spec[T]{match: func(t *T) bool {
		for _, s := range specs {
			if s.Match(t) {
				return true
			}
		}
		return false
	}}
	if !all {
		s.expr = clause.Or(exprs...)
	}
	return s
}

// Not заперечує умову
func Not[T any](inner Specification[T]) Specification[T] {
	e := inner.Expression()
	if e == nil {
		return none[T]()
	}
	return spec[T]{
		match: func(t *T) bool { return !inner.Match(t) },
		expr:  clause.Not(e),
	}
}
