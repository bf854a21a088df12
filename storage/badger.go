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
	"encoding/json"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

// badgerRepository зберігає сутності як JSON під ключами "<schema>/<id>".
// Умови перевіряються в пам'яті під час проходу по префіксу.
type badgerRepository[T any] struct {
	db     *badger.DB
	schema Schema[T]
}

func (r *badgerRepository[T]) prefix() []byte {
	return []byte(r.schema.Name + "/")
}

func (r *badgerRepository[T]) key(id string) []byte {
	return append(r.prefix(), id...)
}

func (r *badgerRepository[T]) Save(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := r.schema.ID.Get(v)
	if id == "" {
		return errors.New("save " + r.schema.Name + ": empty id")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(id), data)
	})
}

func (r *badgerRepository[T]) SaveAll(ctx context.Context, vs ...*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// одна транзакція, помилка посередині відкидає всі записи
	return r.db.Update(func(txn *badger.Txn) error {
		for _, v := range vs {
			id := r.schema.ID.Get(v)
			if id == "" {
				return errors.New("save " + r.schema.Name + ": empty id")
			}
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if err := txn.Set(r.key(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *badgerRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := new(T)
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan проходить по всіх сутностях схеми і викликає fn для тих, що підходять.
// Якщо fn повертає false - зупиняємось.
func (r *badgerRepository[T]) scan(ctx context.Context, txn *badger.Txn, spec Specification[T], fn func(key []byte, v *T) bool) error {
	prefix := r.prefix()
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		v := new(T)
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		}); err != nil {
			return err
		}
		if spec != nil && !spec.Match(v) {
			continue
		}
		if !fn(item.KeyCopy(nil), v) {
			break
		}
	}
	return nil
}

func (r *badgerRepository[T]) FindOne(ctx context.Context, spec Specification[T]) (*T, error) {
	var found *T
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(ctx, txn, spec, func(_ []byte, v *T) bool {
			found = v
			return false
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *badgerRepository[T]) FindAll(ctx context.Context, spec Specification[T], sorts ...Sort[T]) ([]T, error) {
	var out []T
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(ctx, txn, spec, func(_ []byte, v *T) bool {
			out = append(out, *v)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	if len(sorts) > 0 {
		slices.SortStableFunc(out, comparator(sorts))
	}
	return out, nil
}

func (r *badgerRepository[T]) Count(ctx context.Context, spec Specification[T]) (n int, err error) {
	err = r.db.View(func(txn *badger.Txn) error {
		return r.scan(ctx, txn, spec, func([]byte, *T) bool {
			n++
			return true
		})
	})
	return
}

func (r *badgerRepository[T]) Exists(ctx context.Context, spec Specification[T]) (bool, error) {
	_, err := r.FindOne(ctx, spec)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *badgerRepository[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(r.key(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(r.key(id))
	})
}

func (r *badgerRepository[T]) DeleteAll(ctx context.Context, spec Specification[T]) (int, error) {
	var keys [][]byte
	err := r.db.Update(func(txn *badger.Txn) error {
		err := r.scan(ctx, txn, spec, func(key []byte, _ *T) bool {
			keys = append(keys, key)
			return true
		})
		if err != nil {
			return err
		}
		// ітератор вже закритий, можна видаляти
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
