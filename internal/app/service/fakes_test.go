package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
)

type fakeUserRepo struct {
	users    map[string]*model.User // keyed by ID
	verified map[string]bool
	password map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*model.User{},
		verified: map[string]bool{},
		password: map[string]string{},
	}
}

func (f *fakeUserRepo) CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return common.ErrConflict
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return common.ErrNotFound
	}
	f.verified[id] = true
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	if _, ok := f.users[id]; !ok {
		return common.ErrNotFound
	}
	f.users[id].HashedPassword = hashedPassword
	f.password[id] = hashedPassword
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeProfileRepo struct {
	profiles  map[string]*model.Profile
	standings map[string]*model.LeaderboardEntry
	entries   []model.LeaderboardEntry
	queries   int // Leaderboard calls, to observe cache hits
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles:  map[string]*model.Profile{},
		standings: map[string]*model.LeaderboardEntry{},
	}
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfileRepo) Leaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error) {
	f.queries++
	if offset >= len(f.entries) {
		return []model.LeaderboardEntry{}, len(f.entries), nil
	}
	end := offset + limit
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], len(f.entries), nil
}

func (f *fakeProfileRepo) MyStanding(ctx context.Context, userID string) (*model.LeaderboardEntry, error) {
	e, ok := f.standings[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeProfileRepo) ListForRanking(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfileRepo) UpdateRanks(ctx context.Context, updates []model.RankUpdate) error {
	for _, u := range updates {
		if p, ok := f.profiles[u.ProfileID]; ok {
			p.Rank = u.Rank
		}
	}
	return nil
}

type fakeLabRepo struct {
	labs      map[string]*model.Lab
	completed map[string]map[string]bool // userID -> labID
}

func newFakeLabRepo() *fakeLabRepo {
	return &fakeLabRepo{labs: map[string]*model.Lab{}, completed: map[string]map[string]bool{}}
}

func (f *fakeLabRepo) add(lab model.Lab) {
	clone := lab
	f.labs[lab.ID] = &clone
}

func (f *fakeLabRepo) Create(ctx context.Context, lab *model.Lab) error {
	for _, l := range f.labs {
		if l.Slug == lab.Slug {
			return common.ErrConflict
		}
	}
	clone := *lab
	f.labs[lab.ID] = &clone
	return nil
}

func (f *fakeLabRepo) Update(ctx context.Context, lab *model.Lab) error {
	if _, ok := f.labs[lab.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *lab
	f.labs[lab.ID] = &clone
	return nil
}

func (f *fakeLabRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.labs[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.labs, id)
	return nil
}

func (f *fakeLabRepo) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	l, ok := f.labs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (f *fakeLabRepo) FindBySlug(ctx context.Context, slug string) (*model.Lab, error) {
	for _, l := range f.labs {
		if l.Slug == slug {
			clone := *l
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeLabRepo) List(ctx context.Context, limit, offset int) ([]model.Lab, int, error) {
	out := []model.Lab{}
	for _, l := range f.labs {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeLabRepo) CompletedLabIDs(ctx context.Context, userID string) (map[string]bool, error) {
	done := map[string]bool{}
	for labID := range f.completed[userID] {
		done[labID] = true
	}
	return done, nil
}

func (f *fakeLabRepo) Count(ctx context.Context) (int, error) {
	return len(f.labs), nil
}

type fakeProgressRepo struct {
	mu     sync.Mutex
	solved map[string]bool // userID|labID
	points map[string]int64
	stats  map[string]*model.PlayerStats
	ledger []model.Progress
	recent []model.SolveEvent
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		solved: map[string]bool{},
		points: map[string]int64{},
		stats:  map[string]*model.PlayerStats{},
	}
}

func (f *fakeProgressRepo) AwardCompletion(ctx context.Context, userID string, lab *model.Lab) (*model.AwardResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "|" + lab.ID
	if f.solved[key] {
		return &model.AwardResult{Awarded: false}, nil
	}
	f.solved[key] = true
	f.points[userID] += int64(lab.Points)
	f.ledger = append(f.ledger, model.Progress{UserID: userID, Progress: lab.Points})
	return &model.AwardResult{Awarded: true, NewPoints: f.points[userID]}, nil
}

func (f *fakeProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.Progress, error) {
	out := []model.Progress{}
	for _, p := range f.ledger {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) RecentSolves(ctx context.Context, limit int) ([]model.SolveEvent, error) {
	if limit > len(f.recent) {
		limit = len(f.recent)
	}
	return f.recent[:limit], nil
}

func (f *fakeProgressRepo) Stats(ctx context.Context, userID string) (*model.PlayerStats, error) {
	s, ok := f.stats[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func (f *fakeProgressRepo) CountSolves(ctx context.Context) (int, error) {
	return len(f.solved), nil
}

type fakeSubmissionLog struct {
	records []model.FlagSubmission
}

func (f *fakeSubmissionLog) Record(ctx context.Context, sub *model.FlagSubmission) error {
	f.records = append(f.records, *sub)
	return nil
}

func (f *fakeSubmissionLog) List(ctx context.Context, filter repository.SubmissionLogFilter) ([]model.FlagSubmission, error) {
	return f.records, nil
}

type fakeCodeStore struct {
	codes    map[string]string
	failsPut bool
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: map[string]string{}}
}

func (f *fakeCodeStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	if f.failsPut {
		return errors.New("code store down")
	}
	f.codes[key] = code
	return nil
}

func (f *fakeCodeStore) Take(ctx context.Context, key string) (string, error) {
	code, ok := f.codes[key]
	if !ok {
		return "", nil
	}
	delete(f.codes, key)
	return code, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// lastCode extracts the OTP from the most recent mail body.
func (f *fakeMailer) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	body := f.sent[len(f.sent)-1].Body
	idx := strings.LastIndex(body, " ")
	return body[idx+1:]
}

type fakeSignaler struct {
	signals int
}

func (f *fakeSignaler) Enqueue(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.signals++
	return nil
}

type publishedMessage struct {
	Channel string
	Payload []byte
}

type fakePublisher struct {
	messages []publishedMessage
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.messages = append(f.messages, publishedMessage{Channel: channel, Payload: payload})
	return nil
}

type fakeCache struct {
	data       map[string][]byte
	deletedBy  []string
	failsReads bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failsReads {
		return nil, false, errors.New("cache down")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.deletedBy = append(f.deletedBy, prefix)
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	return nil
}

type fakeEventRepo struct {
	events map[string]*model.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*model.Event{}}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *model.Event) error {
	for _, e := range f.events {
		if e.Slug == event.Slug {
			return common.ErrConflict
		}
	}
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *model.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEventRepo) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			clone := *e
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]model.Event, error) {
	out := []model.Event{}
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEventRepo) Count(ctx context.Context) (int, error) {
	return len(f.events), nil
}
