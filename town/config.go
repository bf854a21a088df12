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
	"fmt"
	"regexp"
	"time"
)

// Config - налаштування міст, секція [towns] в config.toml
type Config struct {
	// Регулярний вираз для назви міста
	NamePattern string `toml:"name-pattern"`
	// Скільки жителів може бути в місті, 0 - без обмежень
	MaxMembers int `toml:"max-members"`
	// Скільки коштує створити місто
	CreateCost float64 `toml:"create-cost"`
	// Скільки живе запрошення
	InviteExpiry Duration `toml:"invite-expiry"`
	// Затримка перед телепортом додому
	HomeDelay Duration `toml:"home-delay"`
	// Скільки міст на одній сторінці /town list
	ListPageSize int `toml:"list-page-size"`
}

// DefaultNamePattern - латиниця, цифри і підкреслення, від 3 до 16 символів
const DefaultNamePattern = `^[a-zA-Z0-9_]{3,16}$`

// WithDefaults заповнює пусті поля значеннями за замовчуванням
func (c Config) WithDefaults() Config {
	if c.NamePattern == "" {
		c.NamePattern = DefaultNamePattern
	}
	if c.InviteExpiry.Duration <= 0 {
		c.InviteExpiry.Duration = 5 * time.Minute
	}
	if c.HomeDelay.Duration < 0 {
		c.HomeDelay.Duration = 0
	} else if c.HomeDelay.Duration == 0 {
		c.HomeDelay.Duration = 5 * time.Second
	}
	if c.ListPageSize <= 0 {
		c.ListPageSize = 8
	}
	return c
}

func (c Config) namePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid towns.name-pattern: %w", err)
	}
	return re, nil
}

// Duration - обгортка щоб читати "5s" з TOML
type Duration struct {
	time.Duration
}

// UnmarshalText перетворює текст з конфігу в time.Duration
func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// MarshalText потрібен щоб конфіг можна було записати назад
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
