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

// Йоу, чат! HTTP API тільки для читання.
// Веб-карти і Discord боти беруть звідси список міст і хто де живе.

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"VanillaTowns/town"
)

// Config - секція [http]
type Config struct {
	// Адреса, наприклад "127.0.0.1:8123". Пусто - API вимкнено.
	Listen string `toml:"listen"`
}

// Towns - те, що API потрібно від сервісу міст
type Towns interface {
	List(ctx context.Context, order town.ListOrder, page int) (town.Page, error)
	Get(ctx context.Context, name string) (*town.Town, error)
	TownOf(ctx context.Context, id uuid.UUID) (*town.Town, error)
}

// MemberView - житель у відповіді
type MemberView struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// TownView - місто у відповіді
type TownView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Balance   float64        `json:"balance"`
	Mayor     string         `json:"mayor,omitempty"`
	Members   []MemberView   `json:"members"`
	Home      *town.Location `json:"home,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ListView - сторінка міст
type ListView struct {
	Towns []TownView `json:"towns"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
}

func viewOf(t *town.Town) TownView {
	v := TownView{
		ID:        t.ID,
		Name:      t.Name,
		Balance:   t.Balance,
		CreatedAt: t.CreatedAt,
		Members: lo.Map(t.Members, func(m *town.Member, _ int) MemberView {
			return MemberView{UUID: m.PlayerID, Name: m.Name, Role: string(m.Role)}
		}),
	}
	if m := t.Mayor(); m != nil {
		v.Mayor = m.Name
	}
	if t.HasHome() {
		home := t.Home
		v.Home = &home
	}
	return v
}

// Handler обробляє запити
type Handler struct {
	log   *zap.Logger
	towns Towns
}

// NewHandler створює обробник
func NewHandler(log *zap.Logger, towns Towns) *Handler {
	return &Handler{log: log, towns: towns}
}

// RegisterRoutes додає маршрути в echo
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/towns", h.handleList)
	e.GET("/towns/:name", h.handleTown)
	e.GET("/players/:uuid/town", h.handlePlayerTown)
}

func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, town.ErrTownNotFound), errors.Is(err, town.ErrNotInTown):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		h.log.Error("API request fail", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func (h *Handler) handleList(c echo.Context) error {
	order := town.ListOrder(c.QueryParam("order"))
	switch order {
	case "", town.OrderBalance, town.OrderMembers, town.OrderName, town.OrderAge:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order"})
	}
	page := 1
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
		}
		page = n
	}

	res, err := h.towns.List(c.Request().Context(), order, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListView{
		Towns: lo.Map(res.Towns, func(t *town.Town, _ int) TownView { return viewOf(t) }),
		Page:  res.Page,
		Pages: res.Pages,
	})
}

func (h *Handler) handleTown(c echo.Context) error {
	t, err := h.towns.Get(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(t))
}

func (h *Handler) handlePlayerTown(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid uuid"})
	}
	t, err := h.towns.TownOf(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(t))
}

// New збирає echo з нашими маршрутами
func New(log *zap.Logger, towns Towns) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug("HTTP request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	NewHandler(log, towns).RegisterRoutes(e)
	return e
}

// Serve запускає API і зупиняє його коли ctx закривається
func Serve(ctx context.Context, log *zap.Logger, cfg Config, towns Towns) error {
	if cfg.Listen == "" {
		return nil
	}
	e := New(log, towns)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP shutdown fail", zap.Error(err))
		}
	}()
	log.Info("HTTP API listening", zap.String("address", cfg.Listen))
	if err := e.Start(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
