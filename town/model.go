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

// Йоу, чат! Тут описано що таке місто і хто в ньому живе.
// Місто - це група гравців зі своїм банком і точкою дому.
// Ролі йдуть від мера до звичайного жителя.

package town

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"VanillaTowns/storage"
)

// Role - роль жителя в місті
type Role string

const (
	RoleMayor   Role = "MAYOR"
	RoleOfficer Role = "OFFICER"
	RoleCitizen Role = "CITIZEN"
)

// rank - чим більше, тим вища роль
func (r Role) rank() int {
	switch r {
	case RoleMayor:
		return 2
	case RoleOfficer:
		return 1
	}
	return 0
}

// Outranks перевіряє чи роль r вища за other
func (r Role) Outranks(other Role) bool { return r.rank() > other.rank() }

// CanInvite - мер і офіцери можуть запрошувати
func (r Role) CanInvite() bool { return r.rank() >= RoleOfficer.rank() }

// CanSetHome - мер і офіцери можуть ставити дім
func (r Role) CanSetHome() bool { return r.rank() >= RoleOfficer.rank() }

// Title повертає назву ролі для повідомлень
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
}

// Location - точка у світі
type Location struct {
	World string  `json:"world,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// IsZero - точка не задана
func (l Location) IsZero() bool { return l.World == "" }

// Distance рахує відстань між точками одного світу
func (l Location) Distance(o Location) float64 {
	if l.World != o.World {
		return math.Inf(1)
	}
	dx, dy, dz := l.X-o.X, l.Y-o.Y, l.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Town - місто.
// Жителі зберігаються окремими записами, тут вони лише підвантажені.
type Town struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Name      string    `json:"name" gorm:"type:text;index"`
	Balance   float64   `json:"balance"`
	Home      Location  `json:"home" gorm:"embedded;embeddedPrefix:home_"`
	CreatedAt time.Time `json:"createdAt"`

	Members []*Member `json:"-" gorm:"-"`
}

// Member - житель міста
type Member struct {
	PlayerID    string    `json:"playerId" gorm:"primaryKey;type:text"`
	TownID      string    `json:"townId" gorm:"type:text;index"`
	Name        string    `json:"name" gorm:"type:text"`
	Role        Role      `json:"role" gorm:"type:text"`
	CanDeposit  bool      `json:"canDeposit"`
	CanWithdraw bool      `json:"canWithdraw"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Поля і схеми для репозиторіїв
var (
	fieldTownID      = storage.NewField("id", func(t *Town) string { return t.ID })
	fieldTownName    = storage.NewField("name", func(t *Town) string { return t.Name })
	fieldTownBalance = storage.NewField("balance", func(t *Town) float64 { return t.Balance })
	fieldTownCreated = storage.NewField("created_at", func(t *Town) int64 { return t.CreatedAt.UnixNano() })

	fieldMemberPlayer = storage.NewField("player_id", func(m *Member) string { return m.PlayerID })
	fieldMemberTown   = storage.NewField("town_id", func(m *Member) string { return m.TownID })
	fieldMemberName   = storage.NewField("name", func(m *Member) string { return m.Name })
	fieldMemberJoined = storage.NewField("joined_at", func(m *Member) int64 { return m.JoinedAt.UnixNano() })

	TownSchema   = storage.Schema[Town]{Name: "towns", ID: fieldTownID}
	MemberSchema = storage.Schema[Member]{Name: "members", ID: fieldMemberPlayer}
)

// Mayor повертає мера міста
func (t *Town) Mayor() *Member {
	m, _ := lo.Find(t.Members, func(m *Member) bool { return m.Role == RoleMayor })
	return m
}

// Member шукає жителя за UUID
func (t *Town) Member(id uuid.UUID) *Member {
	m, _ := lo.Find(t.Members, func(m *Member) bool { return m.PlayerID == id.String() })
	return m
}

// MemberByName шукає жителя за ніком, регістр не важливий
func (t *Town) MemberByName(name string) *Member {
	m, _ := lo.Find(t.Members, func(m *Member) bool { return strings.EqualFold(m.Name, name) })
	return m
}

// MembersWithRole повертає всіх жителів з роллю
func (t *Town) MembersWithRole(role Role) []*Member {
	return lo.Filter(t.Members, func(m *Member, _ int) bool { return m.Role == role })
}

// MemberIDs повертає UUID всіх жителів
func (t *Town) MemberIDs() []uuid.UUID {
	return lo.FilterMap(t.Members, func(m *Member, _ int) (uuid.UUID, bool) {
		id, err := uuid.Parse(m.PlayerID)
		return id, err == nil
	})
}

// HasHome - чи поставлено дім
func (t *Town) HasHome() bool { return !t.Home.IsZero() }

// Clone робить глибоку копію.
// Кеш віддає знімки, тому міняємо завжди копію і кладемо її назад.
func (t *Town) Clone() *Town {
	c := *t
	c.Members = lo.Map(t.Members, func(m *Member, _ int) *Member {
		cm := *m
		return &cm
	})
	return &c
}

func (t *Town) removeMember(id string) {
	t.Members = lo.Reject(t.Members, func(m *Member, _ int) bool { return m.PlayerID == id })
}

// MayDeposit - мер і офіцери завжди, решта за прапорцем
func (m *Member) MayDeposit() bool {
	return m.Role.rank() >= RoleOfficer.rank() || m.CanDeposit
}

// MayWithdraw - мер завжди, решта за прапорцем
func (m *Member) MayWithdraw() bool {
	return m.Role == RoleMayor || m.CanWithdraw
}

// UUID парсить PlayerID
func (m *Member) UUID() uuid.UUID {
	id, _ := uuid.Parse(m.PlayerID)
	return id
}

// Player - гравець від імені якого виконується дія
type Player struct {
	ID   uuid.UUID
	Name string
}
