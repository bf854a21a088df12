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

package game

import (
	"context"

	"github.com/Tnze/go-mc/chat"
	pk "github.com/Tnze/go-mc/net/packet"
	"go.uber.org/zap"

	"VanillaTowns/client"
	"VanillaTowns/world"
)

// commandClient - те, що потрібно від клієнта для виконання команди
type commandClient interface {
	GetPlayer() *world.Player
	SendDisconnect(reason chat.Message)
}

// handleCommand обробляє пакет ChatCommand.
// Нас цікавить тільки сам рядок команди, підписи аргументів ігноруємо.
func (g *Game) handleCommand(p pk.Packet, c *client.Client) error {
	return g.runCommand(p, c)
}

func (g *Game) runCommand(p pk.Packet, c commandClient) error {
	var line pk.String
	if err := p.Scan(&line); err != nil {
		return err
	}
	if existInvalidCharacter(string(line)) {
		c.SendDisconnect(chat.TranslateMsg("multiplayer.disconnect.illegal_characters"))
		return nil
	}
	player := c.GetPlayer()
	s, ok := g.online.ByUUID(player.UUID)
	if !ok {
		// гравець ще не доданий або вже виходить
		g.log.Debug("Command from unknown player", zap.String("name", player.Name))
		return nil
	}
	g.commands.Execute(context.TODO(), s, string(line))
	return nil
}
