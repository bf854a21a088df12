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

// Йоу, чат! Оголошення про міста: створили, розпустили, перейменували.
// Якщо налаштований Discord вебхук - шлемо туди гарний embed,
// інакше просто пишемо в лог сервера.

package announce

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"VanillaTowns/town"
)

// Config - секція [discord]
type Config struct {
	WebhookID    string `toml:"webhook-id"`
	WebhookToken string `toml:"webhook-token"`
	Username     string `toml:"username"`
}

// Enabled - чи заповнений вебхук
func (c Config) Enabled() bool { return c.WebhookID != "" && c.WebhookToken != "" }

// Log пише події в лог
type Log struct {
	log *zap.Logger
}

// NewLog створює оголошувач в лог
func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

func (l *Log) Announce(_ context.Context, e town.Event) {
	l.log.Info("Town event",
		zap.String("kind", string(e.Kind)),
		zap.String("town", e.Town),
		zap.String("player", e.Player),
		zap.String("detail", e.Detail),
	)
}

// webhook - частина discordgo.Session, яка нам потрібна
type webhook interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord шле події у вебхук
type Discord struct {
	log     *zap.Logger
	cfg     Config
	session webhook
	timeout time.Duration
}

// New повертає Discord якщо вебхук налаштований, інакше Log
func New(log *zap.Logger, cfg Config) (town.Announcer, error) {
	if !cfg.Enabled() {
		return NewLog(log), nil
	}
	// для вебхуків токен бота не потрібен
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return newDiscord(log, cfg, s), nil
}

func newDiscord(log *zap.Logger, cfg Config, s webhook) *Discord {
	if cfg.Username == "" {
		cfg.Username = "Towns"
	}
	return &Discord{log: log, cfg: cfg, session: s, timeout: 10 * time.Second}
}

const (
	colourGreen  = 0x55FF55
	colourRed    = 0xFF5555
	colourYellow = 0xFFFF55
	colourGold   = 0xFFAA00
)

// Embed будує повідомлення для події
func Embed(e town.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Timestamp: time.Now().Format(time.RFC3339),
	}
	switch e.Kind {
	case town.EventCreated:
		embed.Title = "New town"
		embed.Color = colourGreen
		embed.Description = fmt.Sprintf("**%s** founded **%s**.", e.Player, e.Town)
	case town.EventDeleted:
		embed.Title = "Town disbanded"
		embed.Color = colourRed
		embed.Description = fmt.Sprintf("**%s** is no more.", e.Town)
	case town.EventRenamed:
		embed.Title = "Town renamed"
		embed.Color = colourYellow
		embed.Description = fmt.Sprintf("**%s** is now called **%s**.", e.Detail, e.Town)
	case town.EventMayorChanged:
		embed.Title = "New mayor"
		embed.Color = colourGold
		embed.Description = fmt.Sprintf("**%s** is the new mayor of **%s**.", e.Player, e.Town)
	default:
		embed.Title = string(e.Kind)
		embed.Description = e.Town
	}
	return embed
}

// Announce шле подію в фоні, щоб не тримати команду гравця
func (d *Discord) Announce(_ context.Context, e town.Event) {
	params := &discordgo.WebhookParams{
		Username: d.cfg.Username,
		Embeds:   []*discordgo.MessageEmbed{Embed(e)},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_, err := d.session.WebhookExecute(d.cfg.WebhookID, d.cfg.WebhookToken, false, params, discordgo.WithContext(ctx))
		if err != nil {
			d.log.Warn("Discord webhook fail", zap.String("kind", string(e.Kind)), zap.String("town", e.Town), zap.Error(err))
		}
	}()
}
