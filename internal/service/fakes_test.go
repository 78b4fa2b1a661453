package service

import (
	"context"
	"sort"
	"time"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

// In-memory stand-ins for the mongo repositories, mirroring their observable
// behavior closely enough for service-level tests.

var (
	_ repository.ConversationRepository = (*fakeConversationRepo)(nil)
	_ repository.MessageRepository      = (*fakeMessageRepo)(nil)
	_ repository.BlockRepository        = (*fakeBlockRepo)(nil)
	_ repository.NotificationRepository = (*fakeNotificationRepo)(nil)
	_ repository.ReservationRepository  = (*fakeReservationRepo)(nil)
)

type fakeConversationRepo struct {
	convs map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[string]*models.Conversation)}
}

func (f *fakeConversationRepo) Create(_ context.Context, c *models.Conversation) (*models.Conversation, error) {
	if c.DirectKey != "" {
		for _, existing := range f.convs {
			if existing.DirectKey == c.DirectKey {
				return nil, repository.ErrDuplicate
			}
		}
	}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeConversationRepo) FindDirectByKey(_ context.Context, key string) (*models.Conversation, error) {
	for _, c := range f.convs {
		if c.DirectKey == key {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeConversationRepo) ListActiveForUser(_ context.Context, userID string) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range f.convs {
		if _, ok := c.ActiveParticipant(userID); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) AppendParticipants(_ context.Context, convID string, parts []models.Participant) error {
	c, ok := f.convs[convID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Participants = append(c.Participants, parts...)
	return nil
}

func (f *fakeConversationRepo) CloseParticipation(_ context.Context, convID, userID string, at time.Time) error {
	c, ok := f.convs[convID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := len(c.Participants) - 1; i >= 0; i-- {
		p := &c.Participants[i]
		if p.UserID == userID && p.LeftAt == nil {
			t := at
			p.LeftAt = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeConversationRepo) SetMuted(_ context.Context, convID, userID string, muted bool) error {
	c, ok := f.convs[convID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := len(c.Participants) - 1; i >= 0; i-- {
		p := &c.Participants[i]
		if p.UserID == userID && p.LeftAt == nil {
			p.Muted = muted
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMessageRepo struct {
	msgs map[string]*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*models.Message)}
}

func (f *fakeMessageRepo) Insert(_ context.Context, m *models.Message) error {
	f.msgs[m.ID] = m
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	m, ok := f.msgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMessageRepo) ListPage(_ context.Context, convID string, cutoff *time.Time, page, limit int64) ([]*models.Message, error) {
	var all []*models.Message
	for _, m := range f.msgs {
		if m.ConversationID != convID {
			continue
		}
		if cutoff != nil && m.CreatedAt.After(*cutoff) {
			continue
		}
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= int64(len(all)) {
		return nil, nil
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (f *fakeMessageRepo) Edit(_ context.Context, id, content string, at time.Time) (*models.Message, error) {
	m, ok := f.msgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Content = content
	m.Edited = true
	t := at
	m.EditedAt = &t
	return m, nil
}

func (f *fakeMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.msgs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.msgs, id)
	return nil
}

func (f *fakeMessageRepo) ReplaceReaction(_ context.Context, msgID, userID string, kind models.ReactionKind, at time.Time) (*models.Message, error) {
	m, ok := f.msgs[msgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := m.Reactions[:0:0]
	for _, r := range m.Reactions {
		if r.UserID != userID {
			next = append(next, r)
		}
	}
	m.Reactions = append(next, models.Reaction{UserID: userID, Kind: kind, CreatedAt: at})
	m.Version++
	return m, nil
}

func (f *fakeMessageRepo) RemoveReaction(_ context.Context, msgID, userID string) (*models.Message, error) {
	m, ok := f.msgs[msgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := m.Reactions[:0:0]
	for _, r := range m.Reactions {
		if r.UserID != userID {
			next = append(next, r)
		}
	}
	m.Reactions = next
	m.Version++
	return m, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, msgID, userID string, at time.Time) (*models.Message, error) {
	m, ok := f.msgs[msgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return m, nil
		}
	}
	m.ReadBy = append(m.ReadBy, models.ReadReceipt{UserID: userID, ReadAt: at})
	return m, nil
}

type fakeBlockRepo struct {
	blocks []*models.Block
}

func (f *fakeBlockRepo) Create(_ context.Context, b *models.Block) error {
	for _, e := range f.blocks {
		if e.BlockerID == b.BlockerID && e.BlockedID == b.BlockedID {
			return repository.ErrDuplicate
		}
	}
	f.blocks = append(f.blocks, b)
	return nil
}

func (f *fakeBlockRepo) Delete(_ context.Context, blockerID, blockedID string) error {
	next := f.blocks[:0:0]
	for _, e := range f.blocks {
		if !(e.BlockerID == blockerID && e.BlockedID == blockedID) {
			next = append(next, e)
		}
	}
	f.blocks = next
	return nil
}

func (f *fakeBlockRepo) ListByBlocker(_ context.Context, blockerID string) ([]*models.Block, error) {
	var out []*models.Block
	for _, e := range f.blocks {
		if e.BlockerID == blockerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBlockRepo) AnyBetween(_ context.Context, userID string, otherIDs []string) (bool, error) {
	others := make(map[string]bool, len(otherIDs))
	for _, id := range otherIDs {
		others[id] = true
	}
	for _, e := range f.blocks {
		if e.BlockerID == userID && others[e.BlockedID] {
			return true, nil
		}
		if others[e.BlockerID] && e.BlockedID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeNotificationRepo struct {
	notifs []*models.Notification
}

func (f *fakeNotificationRepo) InsertMany(_ context.Context, ns []*models.Notification) error {
	f.notifs = append(f.notifs, ns...)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, page, limit int64) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range f.notifs {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, e := range f.notifs {
		if e.UserID == userID && !e.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) (*models.Notification, error) {
	for _, e := range f.notifs {
		if e.ID == id && e.UserID == userID {
			e.Read = true
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, e := range f.notifs {
		if e.UserID == userID {
			e.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) ListUnpushed(_ context.Context, limit int64) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, e := range f.notifs {
		if !e.PushSent {
			out = append(out, e)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkPushSent(_ context.Context, ids []string) error {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, e := range f.notifs {
		if set[e.ID] {
			e.PushSent = true
		}
	}
	return nil
}

type fakeReservationRepo struct {
	resvs map[string]*models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{resvs: make(map[string]*models.Reservation)}
}

func (f *fakeReservationRepo) Create(_ context.Context, r *models.Reservation) error {
	f.resvs[r.ID] = r
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	r, ok := f.resvs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeReservationRepo) FindActive(_ context.Context, userID, bookID string) (*models.Reservation, error) {
	for _, r := range f.resvs {
		if r.UserID == userID && r.BookID == bookID && r.Status.Active() {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationRepo) CountPending(_ context.Context, bookID string) (int64, error) {
	var n int64
	for _, r := range f.resvs {
		if r.BookID == bookID && r.Status == models.ReservationPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) ListByUser(_ context.Context, userID string) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, r := range f.resvs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) List(_ context.Context, fl repository.ReservationFilter) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, r := range f.resvs {
		if fl.Status != "" && r.Status != fl.Status {
			continue
		}
		if fl.UserID != "" && r.UserID != fl.UserID {
			continue
		}
		if fl.BookID != "" && r.BookID != fl.BookID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) CancelAndRenumber(_ context.Context, id, userID string) (*models.Reservation, error) {
	r, ok := f.resvs[id]
	if !ok || r.UserID != userID || !r.Status.Active() {
		return nil, repository.ErrNotFound
	}
	r.Status = models.ReservationCancelled
	for _, other := range f.resvs {
		if other.BookID == r.BookID && other.Status.Active() && other.WaitlistPosition > r.WaitlistPosition {
			other.WaitlistPosition--
		}
	}
	return r, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id string, status models.ReservationStatus, approval, due, ret *time.Time) (*models.Reservation, error) {
	r, ok := f.resvs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Status = status
	if approval != nil {
		r.ApprovalDate = approval
	}
	if due != nil {
		r.DueDate = due
	}
	if ret != nil {
		r.ReturnDate = ret
	}
	return r, nil
}
