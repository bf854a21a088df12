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

// Йоу, чат! Це серце міст - всі дії над містами проходять тут.
// Кожна операція робить одне й те саме:
// перевірка прав -> пошук -> зміна -> збереження -> результат для повідомлення.
// Повідомлення гравцям відправляє шар команд, тут тільки логіка.

package town

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"VanillaTowns/storage"
)

// Wallet - гаманці гравців, звідки беруться гроші для банку міста
type Wallet interface {
	Deposit(ctx context.Context, player uuid.UUID, name string, amount float64) (float64, error)
	Withdraw(ctx context.Context, player uuid.UUID, name string, amount float64) (float64, error)
}

// Presence відповідає на питання "чи гравець зараз на сервері"
type Presence interface {
	IsOnline(id uuid.UUID) bool
}

// EventKind - тип події для оголошень
type EventKind string

const (
	EventCreated      EventKind = "created"
	EventDeleted      EventKind = "deleted"
	EventRenamed      EventKind = "renamed"
	EventMayorChanged EventKind = "mayor-changed"
)

// Event - подія, про яку варто розповісти світу
type Event struct {
	Kind   EventKind
	Town   string
	Player string
	Detail string
}

// Announcer публікує події (Discord, лог)
type Announcer interface {
	Announce(ctx context.Context, e Event)
}

// BankPermission - прапорець жителя для банку
type BankPermission string

const (
	PermDeposit  BankPermission = "deposit"
	PermWithdraw BankPermission = "withdraw"
)

// ListOrder - порядок сортування в /town list
type ListOrder string

const (
	OrderBalance ListOrder = "balance"
	OrderMembers ListOrder = "members"
	OrderName    ListOrder = "name"
	OrderAge     ListOrder = "age"
)

// Page - сторінка списку міст
type Page struct {
	Towns []*Town
	Page  int
	Pages int
}

// Service керує містами
type Service struct {
	log       *zap.Logger
	cfg       Config
	name      *regexp.Regexp
	towns     storage.Repository[Town]
	members   storage.Repository[Member]
	wallet    Wallet
	announcer Announcer
	presence  Presence

	cache   *Cache
	invites *Invites

	// всі зміни йдуть по черзі, як в однопотоковому обробнику команд
	mu sync.Mutex
}

// NewService створює сервіс міст
func NewService(
	log *zap.Logger,
	cfg Config,
	towns storage.Repository[Town],
	members storage.Repository[Member],
	wallet Wallet,
	announcer Announcer,
) (*Service, error) {
	cfg = cfg.WithDefaults()
	re, err := cfg.namePattern()
	if err != nil {
		return nil, err
	}
	return &Service{
		log:       log,
		cfg:       cfg,
		name:      re,
		towns:     towns,
		members:   members,
		wallet:    wallet,
		announcer: announcer,
		cache:     NewCache(),
		invites:   NewInvites(cfg.InviteExpiry.Duration),
	}, nil
}

// SetPresence підключає джерело "хто онлайн" для кешу
func (s *Service) SetPresence(p Presence) { s.presence = p }

// Cache повертає кеш міст з онлайн жителями
func (s *Service) Cache() *Cache { return s.cache }

// Config повертає діючі налаштування
func (s *Service) Config() Config { return s.cfg }

// ValidName перевіряє назву за шаблоном з конфігу
func (s *Service) ValidName(name string) bool { return s.name.MatchString(name) }

func (s *Service) announce(ctx context.Context, e Event) {
	if s.announcer != nil {
		s.announcer.Announce(ctx, e)
	}
}

// load дістає місто з кешу або з бази разом з жителями.
// Повернуте місто не можна міняти, спочатку Clone.
func (s *Service) load(ctx context.Context, id string) (*Town, error) {
	if t, ok := s.cache.Get(id); ok {
		return t, nil
	}
	t, err := s.towns.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTownNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load town %s: %w", id, err)
	}
	if err := s.attachMembers(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) attachMembers(ctx context.Context, t *Town) error {
	members, err := s.members.FindAll(ctx,
		storage.Eq(fieldMemberTown, t.ID),
		storage.Asc(fieldMemberJoined),
	)
	if err != nil {
		return fmt.Errorf("load members of %s: %w", t.ID, err)
	}
	t.Members = lo.Map(members, func(m Member, _ int) *Member { return &m })
	return nil
}

// find шукає місто за назвою
func (s *Service) find(ctx context.Context, name string) (*Town, error) {
	if t, ok := s.cache.ByName(name); ok {
		return t, nil
	}
	t, err := s.towns.FindOne(ctx, storage.EqualFold(fieldTownName, name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTownNotFound
	} else if err != nil {
		return nil, fmt.Errorf("find town %q: %w", name, err)
	}
	if err := s.attachMembers(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) membership(ctx context.Context, id uuid.UUID) (*Member, error) {
	m, err := s.members.FindByID(ctx, id.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInTown
	} else if err != nil {
		return nil, fmt.Errorf("load member %s: %w", id, err)
	}
	return m, nil
}

// own повертає копію міста гравця і його запис жителя з цієї копії
func (s *Service) own(ctx context.Context, id uuid.UUID) (*Town, *Member, error) {
	m, err := s.membership(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.load(ctx, m.TownID)
	if errors.Is(err, ErrTownNotFound) {
		// житель без міста - залишок від старих даних
		s.log.Warn("Member of a missing town", zap.String("player", id.String()), zap.String("town", m.TownID))
		_ = s.members.Delete(ctx, m.PlayerID)
		return nil, nil, ErrNotInTown
	} else if err != nil {
		return nil, nil, err
	}
	t = t.Clone()
	self := t.Member(id)
	if self == nil {
		return nil, nil, ErrNotInTown
	}
	return t, self, nil
}

// refresh оновлює кеш після зміни міста.
// leaving - гравець, який саме виходить з сервера, його вважаємо офлайн.
func (s *Service) refresh(t *Town, leaving uuid.UUID) {
	if s.presence == nil {
		if _, ok := s.cache.Get(t.ID); ok {
			s.cache.Put(t)
		}
		return
	}
	online := lo.SomeBy(t.MemberIDs(), func(id uuid.UUID) bool {
		return id != leaving && s.presence.IsOnline(id)
	})
	if online {
		s.cache.Put(t)
	} else {
		s.cache.Remove(t.ID)
	}
}

func (s *Service) taken(ctx context.Context, name, exceptID string) (bool, error) {
	spec := storage.EqualFold(fieldTownName, name)
	if exceptID != "" {
		spec = storage.And(spec, storage.Not(storage.Eq(fieldTownID, exceptID)))
	}
	return s.towns.Exists(ctx, spec)
}

func (s *Service) full(t *Town) bool {
	return s.cfg.MaxMembers > 0 && len(t.Members) >= s.cfg.MaxMembers
}

// normalizeAmount округлює до копійок і відкидає нулі, мінуси, NaN
func normalizeAmount(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	amount = math.Round(amount*100) / 100
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// Create створює нове місто, творець стає мером
func (s *Service) Create(ctx context.Context, p Player, name string) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ValidName(name) {
		return nil, ErrInvalidName
	}
	if _, err := s.membership(ctx, p.ID); err == nil {
		return nil, ErrAlreadyInTown
	} else if !errors.Is(err, ErrNotInTown) {
		return nil, err
	}
	if taken, err := s.taken(ctx, name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrNameTaken
	}

	if s.cfg.CreateCost > 0 {
		if _, err := s.wallet.Withdraw(ctx, p.ID, p.Name, s.cfg.CreateCost); err != nil {
			return nil, err
		}
	}
	refund := func() {
		if s.cfg.CreateCost > 0 {
			if _, err := s.wallet.Deposit(ctx, p.ID, p.Name, s.cfg.CreateCost); err != nil {
				s.log.Error("Refund town creation cost fail", zap.String("player", p.Name), zap.Error(err))
			}
		}
	}

	now := time.Now()
	t := &Town{ID: uuid.NewString(), Name: name, CreatedAt: now}
	mayor := &Member{
		PlayerID: p.ID.String(),
		TownID:   t.ID,
		Name:     p.Name,
		Role:     RoleMayor,
		JoinedAt: now,
	}
	if err := s.towns.Save(ctx, t); err != nil {
		refund()
		return nil, fmt.Errorf("save town: %w", err)
	}
	if err := s.members.Save(ctx, mayor); err != nil {
		_ = s.towns.Delete(ctx, t.ID)
		refund()
		return nil, fmt.Errorf("save mayor: %w", err)
	}
	t.Members = []*Member{mayor}

	s.invites.RemovePlayer(p.ID)
	s.cache.Put(t)
	s.log.Info("Town created", zap.String("town", t.Name), zap.String("mayor", p.Name))
	s.announce(ctx, Event{Kind: EventCreated, Town: t.Name, Player: p.Name})
	return t, nil
}

// Delete видаляє місто гравця, може тільки мер.
// Гроші з банку міста повертаються меру.
func (s *Service) Delete(ctx context.Context, p Player) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if self.Role != RoleMayor {
		return nil, ErrNoPermission
	}
	if err := s.remove(ctx, t); err != nil {
		return nil, err
	}
	if t.Balance > 0 {
		if _, err := s.wallet.Deposit(ctx, p.ID, p.Name, t.Balance); err != nil {
			s.log.Error("Return town balance fail", zap.String("town", t.Name), zap.Error(err))
		}
	}
	s.announce(ctx, Event{Kind: EventDeleted, Town: t.Name, Player: p.Name})
	return t, nil
}

func (s *Service) remove(ctx context.Context, t *Town) error {
	if _, err := s.members.DeleteAll(ctx, storage.Eq(fieldMemberTown, t.ID)); err != nil {
		return fmt.Errorf("delete members of %s: %w", t.Name, err)
	}
	if err := s.towns.Delete(ctx, t.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete town %s: %w", t.Name, err)
	}
	s.cache.Remove(t.ID)
	s.invites.RemoveTown(t.ID)
	s.log.Info("Town deleted", zap.String("town", t.Name), zap.Int("members", len(t.Members)))
	return nil
}

// Get шукає місто за назвою
func (s *Service) Get(ctx context.Context, name string) (*Town, error) {
	return s.find(ctx, name)
}

// TownOf повертає місто гравця
func (s *Service) TownOf(ctx context.Context, id uuid.UUID) (*Town, error) {
	if t, ok := s.cache.ByMember(id); ok {
		return t, nil
	}
	m, err := s.membership(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, m.TownID)
}

// List повертає сторінку міст у заданому порядку. Сторінки рахуються з 1.
func (s *Service) List(ctx context.Context, order ListOrder, page int) (Page, error) {
	var sorts []storage.Sort[Town]
	switch order {
	case OrderName:
		sorts = append(sorts, storage.Asc(fieldTownName))
	case OrderAge:
		sorts = append(sorts, storage.Asc(fieldTownCreated))
	case OrderMembers:
		sorts = append(sorts, storage.Asc(fieldTownName))
	default:
		sorts = append(sorts, storage.Desc(fieldTownBalance), storage.Asc(fieldTownName))
	}
	rows, err := s.towns.FindAll(ctx, storage.All[Town](), sorts...)
	if err != nil {
		return Page{}, fmt.Errorf("list towns: %w", err)
	}
	members, err := s.members.FindAll(ctx, storage.All[Member](), storage.Asc(fieldMemberJoined))
	if err != nil {
		return Page{}, fmt.Errorf("list members: %w", err)
	}
	byTown := lo.GroupBy(members, func(m Member) string { return m.TownID })

	towns := lo.Map(rows, func(t Town, _ int) *Town {
		t.Members = lo.Map(byTown[t.ID], func(m Member, _ int) *Member { return &m })
		return &t
	})
	if order == OrderMembers {
		slices.SortStableFunc(towns, func(a, b *Town) int { return len(b.Members) - len(a.Members) })
	}

	chunks := lo.Chunk(towns, s.cfg.ListPageSize)
	if len(chunks) == 0 {
		return Page{Page: 1, Pages: 1}, nil
	}
	page = min(max(page, 1), len(chunks))
	return Page{Towns: chunks[page-1], Page: page, Pages: len(chunks)}, nil
}

// Invite запрошує гравця в місто актора
func (s *Service) Invite(ctx context.Context, actor, target Player) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !self.Role.CanInvite() {
		return nil, ErrNoPermission
	}
	if actor.ID == target.ID {
		return nil, ErrSelfTarget
	}
	if _, err := s.membership(ctx, target.ID); err == nil {
		return nil, ErrTargetInTown
	} else if !errors.Is(err, ErrNotInTown) {
		return nil, err
	}
	if s.full(t) {
		return nil, ErrTownFull
	}
	if !s.invites.Add(target.ID, t.ID) {
		return nil, ErrAlreadyInvited
	}
	s.log.Debug("Town invite", zap.String("town", t.Name), zap.String("from", actor.Name), zap.String("to", target.Name))
	return t, nil
}

// Join приймає запрошення міста
func (s *Service) Join(ctx context.Context, p Player, townName string) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.membership(ctx, p.ID); err == nil {
		return nil, ErrAlreadyInTown
	} else if !errors.Is(err, ErrNotInTown) {
		return nil, err
	}
	t, err := s.find(ctx, townName)
	if err != nil {
		return nil, err
	}
	if !s.invites.Has(p.ID, t.ID) {
		return nil, ErrNoInvite
	}
	if s.full(t) {
		return nil, ErrTownFull
	}
	s.invites.Consume(p.ID, t.ID)

	m := &Member{
		PlayerID: p.ID.String(),
		TownID:   t.ID,
		Name:     p.Name,
		Role:     RoleCitizen,
		JoinedAt: time.Now(),
	}
	if err := s.members.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}
	t = t.Clone()
	t.Members = append(t.Members, m)
	s.invites.RemovePlayer(p.ID)
	s.cache.Put(t)
	s.log.Info("Player joined town", zap.String("town", t.Name), zap.String("player", p.Name))
	return t, nil
}

// Deny відхиляє запрошення
func (s *Service) Deny(ctx context.Context, p Player, townName string) (*Town, error) {
	t, err := s.find(ctx, townName)
	if err != nil {
		return nil, err
	}
	if !s.invites.Consume(p.ID, t.ID) {
		return nil, ErrNoInvite
	}
	return t, nil
}

// Invitations повертає міста, які запросили гравця
func (s *Service) Invitations(ctx context.Context, id uuid.UUID) ([]*Town, error) {
	var out []*Town
	for _, townID := range s.invites.For(id) {
		t, err := s.load(ctx, townID)
		if errors.Is(err, ErrTownNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Town) int { return compareFold(a.Name, b.Name) })
	return out, nil
}

// Leave - гравець виходить з міста. Мер не може, спершу передай місто.
func (s *Service) Leave(ctx context.Context, p Player) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if self.Role == RoleMayor {
		return nil, ErrMayorCannotLeave
	}
	if err := s.members.Delete(ctx, self.PlayerID); err != nil {
		return nil, fmt.Errorf("delete member: %w", err)
	}
	t.removeMember(self.PlayerID)
	s.refresh(t, uuid.Nil)
	s.log.Info("Player left town", zap.String("town", t.Name), zap.String("player", p.Name))
	return t, nil
}

// target шукає жителя за ніком і перевіряє що це не сам актор
func target(t *Town, actor *Member, name string) (*Member, error) {
	m := t.MemberByName(name)
	if m == nil {
		return nil, ErrNotMember
	}
	if m.PlayerID == actor.PlayerID {
		return nil, ErrSelfTarget
	}
	return m, nil
}

// Kick виганяє жителя. Мер - будь-кого, офіцер - тільки жителів.
func (s *Service) Kick(ctx context.Context, actor Player, name string) (*Town, *Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if !self.Role.CanInvite() {
		return nil, nil, ErrNoPermission
	}
	kicked, err := target(t, self, name)
	if err != nil {
		return nil, nil, err
	}
	if !self.Role.Outranks(kicked.Role) {
		return nil, nil, ErrNoPermission
	}
	if err := s.members.Delete(ctx, kicked.PlayerID); err != nil {
		return nil, nil, fmt.Errorf("delete member: %w", err)
	}
	t.removeMember(kicked.PlayerID)
	s.refresh(t, uuid.Nil)
	s.log.Info("Player kicked from town", zap.String("town", t.Name), zap.String("player", kicked.Name), zap.String("by", actor.Name))
	return t, kicked, nil
}

// mayorAction - спільна частина дій, які може робити тільки мер над іншим жителем
func (s *Service) mayorAction(ctx context.Context, actor Player, name string, apply func(t *Town, self, m *Member) error) (*Town, *Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if self.Role != RoleMayor {
		return nil, nil, ErrNoPermission
	}
	m, err := target(t, self, name)
	if err != nil {
		return nil, nil, err
	}
	if err := apply(t, self, m); err != nil {
		return nil, nil, err
	}
	changed := []*Member{m}
	if self.Role != RoleMayor {
		// передача посади: обидва записи міняються разом
		changed = append(changed, self)
	}
	if err := s.members.SaveAll(ctx, changed...); err != nil {
		return nil, nil, fmt.Errorf("save member: %w", err)
	}
	s.refresh(t, uuid.Nil)
	return t, m, nil
}

// Promote робить жителя офіцером
func (s *Service) Promote(ctx context.Context, actor Player, name string) (*Town, *Member, error) {
	return s.mayorAction(ctx, actor, name, func(_ *Town, _, m *Member) error {
		if m.Role != RoleCitizen {
			return ErrAlreadyOfficer
		}
		m.Role = RoleOfficer
		return nil
	})
}

// Demote повертає офіцера в жителі
func (s *Service) Demote(ctx context.Context, actor Player, name string) (*Town, *Member, error) {
	return s.mayorAction(ctx, actor, name, func(_ *Town, _, m *Member) error {
		if m.Role != RoleOfficer {
			return ErrNotOfficer
		}
		m.Role = RoleCitizen
		return nil
	})
}

// SetPermission ставить прапорець банку жителю
func (s *Service) SetPermission(ctx context.Context, actor Player, name string, perm BankPermission, value bool) (*Town, *Member, error) {
	return s.mayorAction(ctx, actor, name, func(_ *Town, _, m *Member) error {
		switch perm {
		case PermDeposit:
			m.CanDeposit = value
		case PermWithdraw:
			m.CanWithdraw = value
		default:
			return fmt.Errorf("unknown bank permission %q", perm)
		}
		return nil
	})
}

// Transfer передає посаду мера, старий мер стає офіцером
func (s *Service) Transfer(ctx context.Context, actor Player, name string) (*Town, *Member, error) {
	t, m, err := s.mayorAction(ctx, actor, name, func(_ *Town, self, m *Member) error {
		self.Role = RoleOfficer
		m.Role = RoleMayor
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.announce(ctx, Event{Kind: EventMayorChanged, Town: t.Name, Player: m.Name})
	return t, m, nil
}

// Deposit переводить гроші з гаманця гравця в банк міста
func (s *Service) Deposit(ctx context.Context, p Player, amount float64) (*Town, float64, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, 0, err
	}
	if !self.MayDeposit() {
		return nil, 0, ErrNoPermission
	}
	if _, err := s.wallet.Withdraw(ctx, p.ID, p.Name, amount); err != nil {
		return nil, 0, err
	}
	t.Balance += amount
	if err := s.towns.Save(ctx, t); err != nil {
		if _, rerr := s.wallet.Deposit(ctx, p.ID, p.Name, amount); rerr != nil {
			s.log.Error("Refund deposit fail", zap.String("player", p.Name), zap.Float64("amount", amount), zap.Error(rerr))
		}
		return nil, 0, fmt.Errorf("save town: %w", err)
	}
	s.refresh(t, uuid.Nil)
	s.log.Info("Town deposit", zap.String("town", t.Name), zap.String("player", p.Name), zap.Float64("amount", amount))
	return t, amount, nil
}

// Withdraw переводить гроші з банку міста в гаманець гравця
func (s *Service) Withdraw(ctx context.Context, p Player, amount float64) (*Town, float64, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, 0, err
	}
	if !self.MayWithdraw() {
		return nil, 0, ErrNoPermission
	}
	if t.Balance < amount {
		return nil, 0, ErrInsufficientFunds
	}
	t.Balance -= amount
	if err := s.towns.Save(ctx, t); err != nil {
		return nil, 0, fmt.Errorf("save town: %w", err)
	}
	if _, err := s.wallet.Deposit(ctx, p.ID, p.Name, amount); err != nil {
		t.Balance += amount
		if serr := s.towns.Save(ctx, t); serr != nil {
			s.log.Error("Revert withdraw fail", zap.String("town", t.Name), zap.Float64("amount", amount), zap.Error(serr))
		}
		return nil, 0, err
	}
	s.refresh(t, uuid.Nil)
	s.log.Info("Town withdraw", zap.String("town", t.Name), zap.String("player", p.Name), zap.Float64("amount", amount))
	return t, amount, nil
}

// SetHome ставить дім міста в точці гравця
func (s *Service) SetHome(ctx context.Context, p Player, loc Location) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !self.Role.CanSetHome() {
		return nil, ErrNoPermission
	}
	if loc.IsZero() {
		return nil, ErrWorldNotLoaded
	}
	t.Home = loc
	if err := s.towns.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save town: %w", err)
	}
	s.refresh(t, uuid.Nil)
	return t, nil
}

// DelHome прибирає дім, може тільки мер
func (s *Service) DelHome(ctx context.Context, p Player) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if self.Role != RoleMayor {
		return nil, ErrNoPermission
	}
	if !t.HasHome() {
		return nil, ErrNoHome
	}
	t.Home = Location{}
	if err := s.towns.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save town: %w", err)
	}
	s.refresh(t, uuid.Nil)
	return t, nil
}

// Home повертає точку дому міста гравця
func (s *Service) Home(ctx context.Context, p Player) (*Town, Location, error) {
	t, err := s.TownOf(ctx, p.ID)
	if err != nil {
		return nil, Location{}, err
	}
	if !t.HasHome() {
		return nil, Location{}, ErrNoHome
	}
	return t, t.Home, nil
}

// Rename перейменовує місто, може тільки мер
func (s *Service) Rename(ctx context.Context, p Player, name string) (*Town, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if err != nil {
		return nil, "", err
	}
	if self.Role != RoleMayor {
		return nil, "", ErrNoPermission
	}
	if !s.ValidName(name) {
		return nil, "", ErrInvalidName
	}
	if taken, err := s.taken(ctx, name, t.ID); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", ErrNameTaken
	}
	old := t.Name
	t.Name = name
	if err := s.towns.Save(ctx, t); err != nil {
		return nil, "", fmt.Errorf("save town: %w", err)
	}
	s.refresh(t, uuid.Nil)
	s.announce(ctx, Event{Kind: EventRenamed, Town: name, Player: p.Name, Detail: old})
	return t, old, nil
}

// ForceDelete - видалення міста адміністрацією, гроші банку згорають
func (s *Service) ForceDelete(ctx context.Context, name string) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, t); err != nil {
		return nil, err
	}
	s.announce(ctx, Event{Kind: EventDeleted, Town: t.Name})
	return t, nil
}

// SetBalance - адміністрація ставить баланс міста напряму
func (s *Service) SetBalance(ctx context.Context, name string, balance float64) (*Town, error) {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		return nil, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	t = t.Clone()
	t.Balance = math.Round(balance*100) / 100
	if err := s.towns.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save town: %w", err)
	}
	s.refresh(t, uuid.Nil)
	s.log.Info("Town balance set", zap.String("town", t.Name), zap.Float64("balance", t.Balance))
	return t, nil
}

// SetMayor - адміністрація призначає мера з жителів міста
func (s *Service) SetMayor(ctx context.Context, townName, memberName string) (*Town, *Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(ctx, townName)
	if err != nil {
		return nil, nil, err
	}
	t = t.Clone()
	m := t.MemberByName(memberName)
	if m == nil {
		return nil, nil, ErrNotMember
	}
	if m.Role == RoleMayor {
		return t, m, nil
	}
	changed := []*Member{m}
	if old := t.Mayor(); old != nil {
		old.Role = RoleOfficer
		changed = append(changed, old)
	}
	m.Role = RoleMayor
	if err := s.members.SaveAll(ctx, changed...); err != nil {
		return nil, nil, fmt.Errorf("save mayor: %w", err)
	}
	s.refresh(t, uuid.Nil)
	s.announce(ctx, Event{Kind: EventMayorChanged, Town: t.Name, Player: m.Name})
	return t, m, nil
}

// PlayerJoined завантажує місто гравця в кеш, коли він заходить на сервер.
// Заодно оновлює збережений нік, якщо гравець його змінив.
func (s *Service) PlayerJoined(ctx context.Context, p Player) (*Town, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, self, err := s.own(ctx, p.ID)
	if errors.Is(err, ErrNotInTown) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if self.Name != p.Name {
		self.Name = p.Name
		if err := s.members.Save(ctx, self); err != nil {
			return nil, fmt.Errorf("save member name: %w", err)
		}
	}
	s.cache.Put(t)
	return t, nil
}

// PlayerQuit прибирає місто з кешу, якщо більше ніхто з жителів не онлайн
func (s *Service) PlayerQuit(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.cache.ByMember(id)
	if !ok {
		return
	}
	if s.presence == nil {
		online := len(t.Members) > 1
		if !online {
			s.cache.Remove(t.ID)
		}
		return
	}
	s.refresh(t, id)
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
