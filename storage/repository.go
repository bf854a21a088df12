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

// Йоу, чат! Тут у нас сховище для міст, жителів і гаманців.
// Один інтерфейс Repository, дві реалізації:
// - badger: вбудована key-value база, нічого не треба налаштовувати
// - postgres через gorm: коли кілька серверів ділять одну базу

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound повертається коли сутності з таким ID або умовою немає
var ErrNotFound = errors.New("entity not found")

// Repository - базові CRUD операції над сутностями одного типу
type Repository[T any] interface {
	// Save створює або перезаписує сутність (перемагає останній запис)
	Save(ctx context.Context, v *T) error
	// SaveAll зберігає всі сутності разом: або всі, або жодної
	SaveAll(ctx context.Context, vs ...*T) error
	FindByID(ctx context.Context, id string) (*T, error)
	// FindOne повертає першу сутність що підходить під умову
	FindOne(ctx context.Context, spec Specification[T]) (*T, error)
	FindAll(ctx context.Context, spec Specification[T], sorts ...Sort[T]) ([]T, error)
	Count(ctx context.Context, spec Specification[T]) (int, error)
	Exists(ctx context.Context, spec Specification[T]) (bool, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll видаляє всі сутності що підходять і повертає їх кількість
	DeleteAll(ctx context.Context, spec Specification[T]) (int, error)
}

// Config - налаштування сховища з секції [storage]
type Config struct {
	// Driver: "badger" (за замовчуванням) або "postgres"
	Driver string `toml:"driver"`
	// Path - папка бази badger
	Path string `toml:"path"`
	// DSN - рядок підключення до postgres
	DSN string `toml:"dsn"`
}

// Backend тримає відкрите з'єднання з однією з баз
type Backend struct {
	kv  *badger.DB
	sql *gorm.DB
}

// Open відкриває базу за налаштуваннями
func Open(cfg Config, log *zap.Logger) (*Backend, error) {
	switch cfg.Driver {
	case "", "badger":
		path := cfg.Path
		if path == "" {
			path = "towns-db"
		}
		opts := badger.DefaultOptions(path).
			WithLogger(badgerLogger{log.Named("badger").Sugar()}).
			WithNumVersionsToKeep(1).
			WithCompactL0OnClose(true)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger at %s: %w", path, err)
		}
		return &Backend{kv: db}, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, errors.New("postgres driver requires a dsn")
		}
		db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
			TranslateError: true,
			Logger:         newGormLogger(log.Named("sql")),
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Backend{sql: db}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenInMemory відкриває badger без диску, для тестів
func OpenInMemory() (*Backend, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Backend{kv: db}, nil
}

// NewGormBackend обгортає вже відкритий gorm.DB
func NewGormBackend(db *gorm.DB) *Backend {
	return &Backend{sql: db}
}

// Close закриває базу
func (b *Backend) Close() error {
	if b.kv != nil {
		return b.kv.Close()
	}
	if b.sql != nil {
		db, err := b.sql.DB()
		if err != nil {
			return err
		}
		return db.Close()
	}
	return nil
}

// NewRepository створює репозиторій для сутності T.
// Для postgres одразу мігрує таблицю.
func NewRepository[T any](b *Backend, schema Schema[T]) (Repository[T], error) {
	if schema.Name == "" || schema.ID.Get == nil {
		return nil, errors.New("schema requires a name and an id field")
	}
	if b.sql != nil {
		if err := b.sql.Table(schema.Name).AutoMigrate(new(T)); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", schema.Name, err)
		}
		return &gormRepository[T]{db: b.sql, schema: schema}, nil
	}
	return &badgerRepository[T]{db: b.kv, schema: schema}, nil
}

// badgerLogger перенаправляє логи badger у zap
type badgerLogger struct{ *zap.SugaredLogger }

func (l badgerLogger) Warningf(format string, args ...any) { l.Warnf(format, args...) }

// newGormLogger - логер gorm поверх zap, так само як сервер пише через zap.NewStdLog
func newGormLogger(l *zap.Logger) logger.Interface {
	return logger.New(
		zap.NewStdLog(l),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
