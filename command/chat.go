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

package command

import (
	"context"
	"strings"
	"sync"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"VanillaTowns/text"
)

// TownChat пам'ятає, хто пише в міський чат замість глобального
type TownChat struct {
	mu      sync.Mutex
	enabled map[uuid.UUID]bool
}

// NewTownChat створює пустий стан
func NewTownChat() *TownChat {
	return &TownChat{enabled: make(map[uuid.UUID]bool)}
}

// Toggle перемикає режим, повертає новий стан
func (c *TownChat) Toggle(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled[id] {
		delete(c.enabled, id)
		return false
	}
	c.enabled[id] = true
	return true
}

// Enabled - чи гравець у режимі міського чату
func (c *TownChat) Enabled(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[id]
}

// Disable вимикає режим (вийшов з міста або з сервера)
func (c *TownChat) Disable(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.enabled, id)
}

// townChat - /tc [повідомлення]
func (t *Towns) townChat(ctx context.Context, s Sender, args []string) error {
	if len(args) == 0 {
		if _, err := t.svc.TownOf(ctx, s.UUID()); err != nil {
			t.chat.Disable(s.UUID())
			return err
		}
		if t.chat.Toggle(s.UUID()) {
			t.send(s, "chat.toggled-on")
		} else {
			t.send(s, "chat.toggled-off")
		}
		return nil
	}
	return t.SendTownChat(ctx, s, strings.Join(args, " "))
}

// SendTownChat відправляє повідомлення всім онлайн жителям міста відправника
func (t *Towns) SendTownChat(ctx context.Context, s Sender, message string) error {
	tw, err := t.svc.TownOf(ctx, s.UUID())
	if err != nil {
		return err
	}
	msg := t.msgs.Get().Component("chat.town-format",
		"town", tw.Name,
		"player", s.Name(),
		"message", text.Escape(message),
	)
	for _, id := range tw.MemberIDs() {
		if p, ok := t.players.ByUUID(id); ok {
			p.SendSystemChat(msg, false)
		}
	}
	t.log.Info("Town chat", zap.String("town", tw.Name), zap.String("player", s.Name()), zap.String("message", message))
	return nil
}

// HandleChat вирішує, куди йде звичайне повідомлення з чату.
// true - повідомлення пішло в міський чат і глобально його слати не треба.
func (t *Towns) HandleChat(ctx context.Context, s Sender, message string) bool {
	if !t.chat.Enabled(s.UUID()) {
		return false
	}
	if err := t.SendTownChat(ctx, s, message); err != nil {
		// міста вже нема, повертаємо гравця в глобальний чат
		t.chat.Disable(s.UUID())
		t.send(s, "chat.toggled-off")
		return false
	}
	return true
}

// Tag повертає тег міста гравця для глобального чату, або false
func (t *Towns) Tag(id uuid.UUID) (chat.Message, bool) {
	tw, ok := t.svc.Cache().ByMember(id)
	if !ok {
		return chat.Message{}, false
	}
	return t.msgs.Get().Component("chat.tag", "town", tw.Name), true
}
