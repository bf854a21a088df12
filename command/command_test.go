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
	"testing"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"VanillaTowns/announce"
	"VanillaTowns/economy"
	"VanillaTowns/storage"
	"VanillaTowns/text"
	"VanillaTowns/town"
)

type fakePlayer struct {
	id    uuid.UUID
	name  string
	perms map[string]bool

	mu   sync.Mutex
	loc  town.Location
	got  []string
	tped []town.Location
}

func (p *fakePlayer) UUID() uuid.UUID { return p.id }
func (p *fakePlayer) Name() string    { return p.name }

func (p *fakePlayer) HasPermission(node string) bool { return p.perms[node] }

func (p *fakePlayer) SendSystemChat(msg chat.Message, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, msg.ClearString())
}

func (p *fakePlayer) Location() town.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loc
}

func (p *fakePlayer) Teleport(to town.Location) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loc = to
	p.tped = append(p.tped, to)
	return nil
}

// last повертає останнє повідомлення і очищує вхідні
func (p *fakePlayer) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.got) == 0 {
		return ""
	}
	l := p.got[len(p.got)-1]
	p.got = nil
	return l
}

func (p *fakePlayer) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.got
	p.got = nil
	return out
}

type fakePlayers struct{ list []*fakePlayer }

func (f *fakePlayers) ByName(name string) (Sender, bool) {
	for _, p := range f.list {
		if strings.EqualFold(p.name, name) {
			return p, true
		}
	}
	return nil, false
}

func (f *fakePlayers) ByUUID(id uuid.UUID) (Sender, bool) {
	for _, p := range f.list {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

func (f *fakePlayers) All() []Sender {
	out := make([]Sender, 0, len(f.list))
	for _, p := range f.list {
		out = append(out, p)
	}
	return out
}

func (f *fakePlayers) IsOnline(id uuid.UUID) bool {
	_, ok := f.ByUUID(id)
	return ok
}

type env struct {
	d       *Dispatcher
	towns   *Towns
	bank    *economy.Bank
	players *fakePlayers
	ctx     context.Context
}

func newEnv(t *testing.T, cfg town.Config) *env {
	t.Helper()
	b, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	townRepo, err := storage.NewRepository(b, town.TownSchema)
	require.NoError(t, err)
	memberRepo, err := storage.NewRepository(b, town.MemberSchema)
	require.NoError(t, err)
	accounts, err := storage.NewRepository(b, economy.AccountSchema)
	require.NoError(t, err)

	log := zap.NewNop()
	bank := economy.NewBank(log, economy.Config{StartingBalance: 100}, accounts)
	svc, err := town.NewService(log, cfg, townRepo, memberRepo, bank, announce.NewLog(log))
	require.NoError(t, err)

	players := &fakePlayers{}
	svc.SetPresence(players)
	towns := NewTowns(log, svc, bank, text.Static(text.New()), players)
	d := NewDispatcher(log, text.Static(text.New()), nil)
	d.Register(towns.Commands()...)
	return &env{d: d, towns: towns, bank: bank, players: players, ctx: context.Background()}
}

func (e *env) join(name string, perms ...string) *fakePlayer {
	p := &fakePlayer{
		id:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		name:  name,
		perms: map[string]bool{PermTown: true, PermTownChat: true},
		loc:   town.Location{World: "minecraft:overworld", X: 0.5, Y: 64, Z: 0.5},
	}
	for _, perm := range perms {
		p.perms[perm] = true
	}
	e.players.list = append(e.players.list, p)
	e.towns.PlayerJoined(e.ctx, p)
	return p
}

func (e *env) run(p *fakePlayer, line string) string {
	e.d.Execute(e.ctx, p, line)
	return p.last()
}

func TestUnknownCommand(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")
	assert.False(t, e.d.Execute(e.ctx, steve, "gamemode creative"))
	assert.Len(t, steve.all(), 1)
	assert.False(t, e.d.Execute(e.ctx, steve, "   "))
}

func TestAliasesAndPermissions(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")

	for _, label := range []string{"town", "t", "TOWN"} {
		assert.True(t, e.d.Execute(e.ctx, steve, label))
		assert.Contains(t, steve.last(), "/town create")
	}

	assert.Contains(t, e.run(steve, "vt"), "don't have permission")
	admin := e.join("Admin", PermStaff)
	assert.Contains(t, e.run(admin, "vanillatowns"), "/vt")

	noPerm := e.join("Guest")
	noPerm.perms = map[string]bool{}
	assert.Contains(t, e.run(noPerm, "t create Guestville"), "don't have permission")
	assert.Contains(t, e.run(noPerm, "balance"), "Balance: 100.00 coins", "balance needs no permission")
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, town.Config{})
	e.d.limit = func() *rate.Limiter { return rate.NewLimiter(rate.Every(time.Hour), 2) }
	steve := e.join("Steve")

	e.run(steve, "t help")
	e.run(steve, "t help")
	assert.Contains(t, e.run(steve, "t help"), "Slow down")

	e.d.Forget(steve.id)
	assert.NotContains(t, e.run(steve, "t help"), "Slow down")
}

func TestPlayerInputIsNotFormatted(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")

	assert.Contains(t, e.run(steve, "t info &k&4Ghost"), "Town &k&4Ghost not found")
	assert.Contains(t, e.run(steve, "t join &lBig"), "Town &lBig not found")
	assert.Contains(t, e.run(steve, "t invite &cRed"), "Player &cRed not found")
}

func TestTownLifecycle(t *testing.T) {
	e := newEnv(t, town.Config{CreateCost: 40})
	steve, alex, notch := e.join("Steve"), e.join("Alex"), e.join("Notch")

	assert.Contains(t, e.run(steve, "t create"), "Usage: /town create <name>")
	assert.Contains(t, e.run(steve, "t create Oakvale"), "Town Oakvale created")
	assert.Contains(t, alex.last(), "Steve founded the town Oakvale")
	assert.Contains(t, e.run(steve, "balance"), "60.00 coins")

	assert.Contains(t, e.run(alex, "t create oakvale"), "already exists")
	assert.Contains(t, e.run(steve, "t invite Herobrine"), "Player Herobrine not found")
	assert.Contains(t, e.run(steve, "t invite Alex"), "Invited Alex")
	assert.Contains(t, alex.last(), "/town join Oakvale")
	assert.Contains(t, e.run(steve, "t invite alex"), "Alex is already invited")

	assert.Contains(t, e.run(alex, "t invites"), "Invites: Oakvale")
	assert.Contains(t, e.run(alex, "t join Oakvale"), "You joined Oakvale")
	assert.Contains(t, steve.last(), "Alex joined the town")

	assert.Contains(t, e.run(alex, "t invite Notch"), "role doesn't allow")
	assert.Contains(t, e.run(steve, "t promote Alex"), "Alex is now an officer")
	assert.Contains(t, alex.last(), "Alex is now an officer")
	assert.Contains(t, e.run(alex, "t invite Notch"), "Invited Notch")
	assert.Contains(t, e.run(notch, "t deny Oakvale"), "denied the invite")
	assert.Contains(t, e.run(notch, "t join Oakvale"), "no invite")

	e.d.Execute(e.ctx, steve, "t info")
	info := strings.Join(steve.all(), "\n")
	assert.Contains(t, info, "Mayor: Steve")
	assert.Contains(t, info, "Members (2): Steve (Mayor), Alex (Officer)")

	assert.Contains(t, e.run(steve, "t leave"), "mayor can't leave")
	assert.Contains(t, e.run(steve, "t transfer Alex"), "Alex is the new mayor of Oakvale")
	assert.Contains(t, e.run(alex, "t kick Steve"), "Kicked Steve")
	assert.Contains(t, steve.last(), "You were kicked from Oakvale")

	assert.Contains(t, e.run(alex, "t delete"), "Town Oakvale deleted")
	assert.Contains(t, e.run(alex, "t info"), "not in a town")
}

func TestBankCommands(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve, alex := e.join("Steve"), e.join("Alex")
	e.run(steve, "t create Oakvale")
	e.run(steve, "t invite Alex")
	e.run(alex, "t join Oakvale")

	assert.Contains(t, e.run(steve, "t deposit abc"), "Invalid amount")
	assert.Contains(t, e.run(steve, "t deposit 500"), "You don't have that much")
	assert.Contains(t, e.run(steve, "t deposit 25.5"), "Deposited 25.50 coins. Town bank: 25.50 coins")
	assert.Contains(t, e.run(alex, "t withdraw 5"), "role doesn't allow")
	assert.Contains(t, e.run(steve, "t perm Alex withdraw true"), "withdraw for Alex: true")
	assert.Contains(t, e.run(alex, "t withdraw 100"), "town bank doesn't have that much")
	assert.Contains(t, e.run(alex, "t withdraw 5"), "Town bank: 20.50 coins")
	assert.Contains(t, e.run(alex, "bal"), "105.00 coins")
	assert.Contains(t, e.run(alex, "t bank"), "20.50 coins")
	assert.Contains(t, e.run(steve, "t perm Alex fly yes"), "Usage")
}

func TestListCommand(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")
	assert.Contains(t, e.run(steve, "t list"), "no towns yet")

	e.run(steve, "t create Oakvale")
	e.d.Execute(e.ctx, steve, "t list name 1")
	out := steve.all()
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "page 1/1, by name")
	assert.Contains(t, out[1], "1. Oakvale - 1 members")
	assert.Contains(t, e.run(steve, "t list size"), "Usage")
}

func TestHomeCommands(t *testing.T) {
	e := newEnv(t, town.Config{HomeDelay: town.Duration{Duration: 20 * time.Millisecond}})
	steve := e.join("Steve")
	e.run(steve, "t create Oakvale")

	assert.Contains(t, e.run(steve, "t home"), "no home")
	steve.loc = town.Location{World: "minecraft:overworld", X: 10, Y: 70, Z: 10}
	assert.Contains(t, e.run(steve, "t sethome"), "Town home set")

	steve.loc = town.Location{World: "minecraft:overworld", X: 500, Y: 64, Z: 500}
	assert.Contains(t, e.run(steve, "t home"), "Teleporting in 1 seconds")
	assert.Eventually(t, func() bool {
		steve.mu.Lock()
		defer steve.mu.Unlock()
		return len(steve.tped) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 10.0, steve.Location().X)

	assert.Contains(t, e.run(steve, "t delhome"), "home removed")
}

func TestHomeCancelledOnQuit(t *testing.T) {
	e := newEnv(t, town.Config{HomeDelay: town.Duration{Duration: time.Hour}})
	steve := e.join("Steve")
	e.run(steve, "t create Oakvale")
	e.run(steve, "t sethome")
	e.run(steve, "t home")
	assert.True(t, e.towns.Teleports().Pending(steve.id))

	e.players.list = nil
	e.towns.PlayerQuit(steve.id)
	assert.False(t, e.towns.Teleports().Pending(steve.id))
	assert.Empty(t, steve.tped)
}

func TestRename(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")
	e.run(steve, "t create Oakvale")
	assert.Contains(t, e.run(steve, "t rename Oak hill"), "Usage")
	assert.Contains(t, e.run(steve, "t rename Oakhill"), "renamed from Oakvale to Oakhill")
	assert.Contains(t, e.run(steve, "t info Oakvale"), "Town Oakvale not found")
}

func TestTownChat(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve, alex, notch := e.join("Steve"), e.join("Alex"), e.join("Notch")
	e.run(steve, "t create Oakvale")
	e.run(steve, "t invite Alex")
	e.run(alex, "t join Oakvale")
	steve.all()

	assert.Contains(t, e.run(notch, "tc"), "not in a town")

	e.run(steve, "tc hello &ctown")
	assert.Equal(t, "[Oakvale] Steve: hello &ctown", alex.last())
	assert.Equal(t, "", notch.last())

	assert.Contains(t, e.run(alex, "tc"), "Town chat mode on")
	assert.True(t, e.towns.HandleChat(e.ctx, alex, "from chat mode"))
	assert.Equal(t, "[Oakvale] Alex: from chat mode", steve.last())
	assert.False(t, e.towns.HandleChat(e.ctx, steve, "global"))

	tag, ok := e.towns.Tag(alex.id)
	require.True(t, ok)
	assert.Equal(t, "[Oakvale] ", tag.ClearString())
	_, ok = e.towns.Tag(notch.id)
	assert.False(t, ok)

	// leaving the town turns chat mode off
	e.run(alex, "t leave")
	assert.False(t, e.towns.Chat().Enabled(alex.id))
	assert.Contains(t, e.run(alex, "townchat"), "not in a town")
}

func TestStaffCommands(t *testing.T) {
	e := newEnv(t, town.Config{})
	admin := e.join("Admin", PermStaff)
	steve, alex := e.join("Steve"), e.join("Alex")
	e.run(steve, "t create Oakvale")
	e.run(steve, "t invite Alex")
	e.run(alex, "t join Oakvale")

	assert.Contains(t, e.run(admin, "vt setbalance Oakvale 99.999"), "bank set to 100.00 coins")
	assert.Contains(t, e.run(admin, "vt setmayor Oakvale Herobrine"), "Herobrine is not a member")
	assert.Contains(t, e.run(admin, "vt setmayor oakvale alex"), "Alex is now the mayor of Oakvale")

	e.d.Execute(e.ctx, admin, "vt dump Oakvale")
	dump := strings.Join(admin.all(), "\n")
	assert.Contains(t, dump, "Oakvale")
	assert.Contains(t, dump, "Members")

	assert.Contains(t, e.run(admin, "vt eco Steve give 50"), "Steve's balance is now 150.00 coins")
	assert.Contains(t, e.run(admin, "vt eco Steve take 1000"), "Steve's balance: 150.00 coins")
	assert.Contains(t, e.run(admin, "vt eco steve set 7"), "7.00 coins")
	assert.Contains(t, e.run(admin, "vt eco Herobrine set 7"), "Herobrine not found")
	assert.Contains(t, e.run(admin, "vt eco Steve steal 7"), "Usage")
	e.d.Execute(e.ctx, admin, "vt eco top")
	top := admin.all()
	require.NotEmpty(t, top)
	assert.Equal(t, "Richest players", top[0])

	assert.Contains(t, e.run(admin, "vt reload"), "Messages reloaded")
	assert.Contains(t, e.run(admin, "vt delete Oakvale"), "force-deleted")
	assert.Contains(t, steve.last(), "was disbanded")
	assert.Contains(t, e.run(admin, "vt delete Oakvale"), "Town Oakvale not found")
}

func TestOfflineBalanceLookup(t *testing.T) {
	e := newEnv(t, town.Config{})
	steve := e.join("Steve")
	alex := e.join("Alex")
	e.players.list = e.players.list[:1] // Alex went offline
	e.towns.PlayerQuit(alex.id)

	assert.Contains(t, e.run(steve, "balance alex"), "Alex's balance: 100.00 coins")
}
