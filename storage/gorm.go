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
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository перекладає специфікації в WHERE, а сортування в ORDER BY
type gormRepository[T any] struct {
	db     *gorm.DB
	schema Schema[T]
}

// query готує запит до таблиці схеми з умовою spec
func (r *gormRepository[T]) query(ctx context.Context, spec Specification[T]) *gorm.DB {
	q := r.db.WithContext(ctx).Table(r.schema.Name)
	if spec == nil {
		return q
	}
	if e := spec.Expression(); e != nil {
		q = q.Clauses(clause.Where{Exprs: []clause.Expression{e}})
	}
	return q
}

func (r *gormRepository[T]) byID(id string) Specification[T] {
	return Eq(r.schema.ID, id)
}

func (r *gormRepository[T]) Save(ctx context.Context, v *T) error {
	if r.schema.ID.Get(v) == "" {
		return errors.New("save " + r.schema.Name + ": empty id")
	}
	return r.db.WithContext(ctx).Table(r.schema.Name).Save(v).Error
}

func (r *gormRepository[T]) SaveAll(ctx context.Context, vs ...*T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range vs {
			if r.schema.ID.Get(v) == "" {
				return errors.New("save " + r.schema.Name + ": empty id")
			}
			if err := tx.Table(r.schema.Name).Save(v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return r.FindOne(ctx, r.byID(id))
}

func (r *gormRepository[T]) FindOne(ctx context.Context, spec Specification[T]) (*T, error) {
	out := new(T)
	err := r.query(ctx, spec).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository[T]) FindAll(ctx context.Context, spec Specification[T], sorts ...Sort[T]) ([]T, error) {
	q := r.query(ctx, spec)
	for _, s := range sorts {
		q = q.Order(s.orderBy())
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository[T]) Count(ctx context.Context, spec Specification[T]) (int, error) {
	var n int64
	err := r.query(ctx, spec).Model(new(T)).Count(&n).Error
	return int(n), err
}

func (r *gormRepository[T]) Exists(ctx context.Context, spec Specification[T]) (bool, error) {
	n, err := r.Count(ctx, spec)
	return n > 0, err
}

func (r *gormRepository[T]) Delete(ctx context.Context, id string) error {
	res := r.query(ctx, r.byID(id)).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository[T]) DeleteAll(ctx context.Context, spec Specification[T]) (int, error) {
	q := r.query(ctx, spec)
	if spec == nil || spec.Expression() == nil {
		// gorm не дає видаляти без WHERE, тут це свідомо
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := q.Delete(new(T))
	return int(res.RowsAffected), res.Error
}
