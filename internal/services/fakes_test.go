package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cfpboard/internal/domain"
)

// In-memory repositories for service tests. They implement the same
// semantics the Postgres layer guarantees (idempotent state writes, overlap
// rejection, assignment exclusivity) so lifecycle scenarios can run
// end to end without a database.

type fakeTalkRepo struct {
	mu     sync.Mutex
	talks  map[string]*domain.Talk
	slots  *fakeScheduleRepo // for clearing assignments on accepted->rejected
	nextID int
	err    error
}

func newFakeTalkRepo() *fakeTalkRepo {
	return &fakeTalkRepo{talks: make(map[string]*domain.Talk), nextID: 1}
}

func (f *fakeTalkRepo) Create(ctx context.Context, t *domain.Talk) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = fmt.Sprintf("talk-%d", f.nextID)
	f.nextID++
	cp := *t
	f.talks[t.ID] = &cp
	return nil
}

func (f *fakeTalkRepo) GetByID(ctx context.Context, id string) (*domain.Talk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.talks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTalkRepo) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Talk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Talk{}
	for _, t := range f.talks {
		if t.SpeakerID == speakerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTalkRepo) List(ctx context.Context, state *domain.TalkState, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Talk{}
	for _, t := range f.talks {
		if state != nil && t.State != *state {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeTalkRepo) Update(ctx context.Context, t *domain.Talk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.talks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	f.talks[t.ID] = &cp
	return nil
}

func (f *fakeTalkRepo) UpdateState(ctx context.Context, id string, from, to domain.TalkState) (*domain.Talk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.talks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if t.State == to {
		cp := *t
		return &cp, nil
	}
	if t.State != from || !domain.CanTransition(from, to) {
		return nil, domain.ErrInvalidTransition
	}
	t.State = to
	if from == domain.StateAccepted && to == domain.StateRejected && f.slots != nil {
		f.slots.clearTalk(id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTalkRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.talks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.talks, id)
	return nil
}

type ratingKey struct{ talkID, reviewerID string }

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[ratingKey]*domain.Rating
	nextID  int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[ratingKey]*domain.Rating), nextID: 1}
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, r *domain.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ratingKey{r.TalkID, r.ReviewerID}
	if existing, ok := f.ratings[key]; ok {
		existing.Score = r.Score
		existing.Notes = r.Notes
		*r = *existing
		return nil
	}
	r.ID = fmt.Sprintf("rating-%d", f.nextID)
	f.nextID++
	cp := *r
	f.ratings[key] = &cp
	return nil
}

func (f *fakeRatingRepo) Delete(ctx context.Context, talkID, reviewerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ratings, ratingKey{talkID, reviewerID})
	return nil
}

func (f *fakeRatingRepo) GetByTalkAndReviewer(ctx context.Context, talkID, reviewerID string) (*domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[ratingKey{talkID, reviewerID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRatingRepo) ListByTalkID(ctx context.Context, talkID string) ([]*domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Rating{}
	for _, r := range f.ratings {
		if r.TalkID == talkID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRatingRepo) Average(ctx context.Context, talkID string) (*domain.TalkAverage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	avg := &domain.TalkAverage{TalkID: talkID}
	sum := 0
	for _, r := range f.ratings {
		if r.TalkID == talkID {
			avg.Count++
			sum += r.Score
		}
	}
	if avg.Count > 0 {
		mean := float64(sum) / float64(avg.Count)
		avg.Average = &mean
	}
	return avg, nil
}

func (f *fakeRatingRepo) Statistics(ctx context.Context, topN int) (*domain.RatingStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.RatingStatistics{TopTalks: []domain.TalkRatingRank{}}
	talks := make(map[string]struct{})
	sum := 0
	for _, r := range f.ratings {
		stats.TotalRatings++
		talks[r.TalkID] = struct{}{}
		sum += r.Score
		switch r.Score {
		case 1:
			stats.Distribution.One++
		case 2:
			stats.Distribution.Two++
		case 3:
			stats.Distribution.Three++
		case 4:
			stats.Distribution.Four++
		case 5:
			stats.Distribution.Five++
		}
	}
	stats.RatedTalks = int64(len(talks))
	if stats.TotalRatings > 0 {
		mean := float64(sum) / float64(stats.TotalRatings)
		stats.GlobalAverage = &mean
	}
	return stats, nil
}

type fakeLabelRepo struct {
	mu       sync.Mutex
	labels   map[string]*domain.Label
	byTalk   map[string]map[string]bool // talkID -> labelID set
	nextID   int
	names    map[string]bool
}

func newFakeLabelRepo() *fakeLabelRepo {
	return &fakeLabelRepo{
		labels: make(map[string]*domain.Label),
		byTalk: make(map[string]map[string]bool),
		names:  make(map[string]bool),
		nextID: 1,
	}
}

func (f *fakeLabelRepo) Create(ctx context.Context, l *domain.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.names[l.Name] {
		return domain.ErrConflict
	}
	l.ID = fmt.Sprintf("label-%d", f.nextID)
	f.nextID++
	f.names[l.Name] = true
	cp := *l
	f.labels[l.ID] = &cp
	return nil
}

func (f *fakeLabelRepo) GetByID(ctx context.Context, id string) (*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.labels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLabelRepo) List(ctx context.Context) ([]*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Label{}
	for _, l := range f.labels {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeLabelRepo) Update(ctx context.Context, id string, update domain.LabelUpdate) (*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.labels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.Name != nil {
		delete(f.names, l.Name)
		l.Name = *update.Name
		f.names[l.Name] = true
	}
	if update.Description != nil {
		l.Description = update.Description
	}
	if update.Color != nil {
		l.Color = update.Color
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLabelRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.labels[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.names, l.Name)
	delete(f.labels, id)
	for _, set := range f.byTalk {
		delete(set, id)
	}
	return nil
}

func (f *fakeLabelRepo) AddToTalk(ctx context.Context, talkID string, labelIDs []string, addedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.byTalk[talkID]
	if !ok {
		set = make(map[string]bool)
		f.byTalk[talkID] = set
	}
	for _, id := range labelIDs {
		set[id] = true
	}
	return nil
}

func (f *fakeLabelRepo) RemoveFromTalk(ctx context.Context, talkID, labelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byTalk[talkID], labelID)
	return nil
}

func (f *fakeLabelRepo) ListByTalkID(ctx context.Context, talkID string) ([]*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Label{}
	for id := range f.byTalk[talkID] {
		if l, ok := f.labels[id]; ok {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeScheduleRepo struct {
	mu     sync.Mutex
	tracks map[string]*domain.Track
	slots  map[string]*domain.ScheduleSlot
	talks  *fakeTalkRepo
	nextID int
}

func newFakeScheduleRepo(talks *fakeTalkRepo) *fakeScheduleRepo {
	f := &fakeScheduleRepo{
		tracks: make(map[string]*domain.Track),
		slots:  make(map[string]*domain.ScheduleSlot),
		talks:  talks,
		nextID: 1,
	}
	if talks != nil {
		talks.slots = f
	}
	return f
}

func (f *fakeScheduleRepo) clearTalk(talkID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.TalkID != nil && *s.TalkID == talkID {
			s.TalkID = nil
		}
	}
}

func (f *fakeScheduleRepo) CreateTrack(ctx context.Context, t *domain.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = fmt.Sprintf("track-%d", f.nextID)
	f.nextID++
	cp := *t
	f.tracks[t.ID] = &cp
	return nil
}

func (f *fakeScheduleRepo) GetTrackByID(ctx context.Context, id string) (*domain.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tracks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeScheduleRepo) ListTracksByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Track{}
	for _, t := range f.tracks {
		if t.ConferenceID == conferenceID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeScheduleRepo) UpdateTrack(ctx context.Context, id string, update domain.TrackUpdate) (*domain.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tracks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Description != nil {
		t.Description = update.Description
	}
	if update.Capacity != nil {
		t.Capacity = update.Capacity
	}
	cp := *t
	return &cp, nil
}

func (f *fakeScheduleRepo) DeleteTrack(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tracks[id]; !ok {
		return domain.ErrNotFound
	}
	for _, s := range f.slots {
		if s.TrackID == id && s.TalkID != nil {
			return domain.ErrConflict
		}
	}
	for sid, s := range f.slots {
		if s.TrackID == id {
			delete(f.slots, sid)
		}
	}
	delete(f.tracks, id)
	return nil
}

func overlapping(a, b *domain.ScheduleSlot) bool {
	if a.TrackID != b.TrackID || !a.SlotDate.Equal(b.SlotDate) {
		return false
	}
	return a.StartTime < b.EndTime && b.StartTime < a.EndTime
}

func (f *fakeScheduleRepo) CreateSlot(ctx context.Context, slot *domain.ScheduleSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.slots {
		if overlapping(slot, existing) {
			return domain.ErrConflict
		}
	}
	slot.ID = fmt.Sprintf("slot-%d", f.nextID)
	f.nextID++
	cp := *slot
	f.slots[slot.ID] = &cp
	return nil
}

func (f *fakeScheduleRepo) GetSlotByID(ctx context.Context, id string) (*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScheduleRepo) ListSlots(ctx context.Context, conferenceID string) ([]*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.ScheduleSlot{}
	for _, s := range f.slots {
		if s.ConferenceID == conferenceID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduleRepo) UpdateSlot(ctx context.Context, id string, update domain.SlotUpdate) (*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	candidate := *s
	if update.TrackID != nil {
		candidate.TrackID = *update.TrackID
	}
	if update.SlotDate != nil {
		candidate.SlotDate = *update.SlotDate
	}
	if update.StartTime != nil {
		candidate.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		candidate.EndTime = *update.EndTime
	}
	if candidate.StartTime >= candidate.EndTime {
		return nil, domain.ErrInvalidInput
	}
	for sid, existing := range f.slots {
		if sid != id && overlapping(&candidate, existing) {
			return nil, domain.ErrConflict
		}
	}
	*s = candidate
	cp := *s
	return &cp, nil
}

func (f *fakeScheduleRepo) DeleteSlot(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.slots, id)
	return nil
}

func (f *fakeScheduleRepo) Assign(ctx context.Context, slotID, talkID string) (*domain.ScheduleSlot, error) {
	talk, err := f.talks.GetByID(ctx, talkID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if talk.State != domain.StateAccepted {
		return nil, domain.ErrTalkNotAccepted
	}
	if slot.TalkID != nil {
		if *slot.TalkID == talkID {
			cp := *slot
			return &cp, nil
		}
		return nil, domain.ErrConflict
	}
	for sid, s := range f.slots {
		if sid != slotID && s.TalkID != nil && *s.TalkID == talkID {
			return nil, domain.ErrConflict
		}
	}
	slot.TalkID = &talkID
	cp := *slot
	return &cp, nil
}

func (f *fakeScheduleRepo) Unassign(ctx context.Context, slotID string) (*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	slot.TalkID = nil
	cp := *slot
	return &cp, nil
}

func (f *fakeScheduleRepo) PublicSchedule(ctx context.Context) ([]*domain.PublicScheduleEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.PublicScheduleEntry{}
	for _, s := range f.slots {
		entry := &domain.PublicScheduleEntry{
			SlotID:    s.ID,
			TrackID:   s.TrackID,
			SlotDate:  s.SlotDate,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		}
		if t, ok := f.tracks[s.TrackID]; ok {
			entry.TrackName = t.Name
		}
		if s.TalkID != nil {
			if talk, err := f.talks.GetByID(ctx, *s.TalkID); err == nil {
				entry.Talk = &domain.PublicScheduleTalk{
					ID:           talk.ID,
					Title:        talk.Title,
					ShortSummary: talk.ShortSummary,
				}
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

type fakeConferenceRepo struct {
	mu          sync.Mutex
	conferences map[string]*domain.Conference
	nextID      int
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{conferences: make(map[string]*domain.Conference), nextID: 1}
}

func (f *fakeConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.conferences {
		if existing.Slug == c.Slug {
			return domain.ErrConflict
		}
	}
	c.ID = fmt.Sprintf("conf-%d", f.nextID)
	f.nextID++
	cp := *c
	f.conferences[c.ID] = &cp
	return nil
}

func (f *fakeConferenceRepo) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conferences[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConferenceRepo) GetBySlug(ctx context.Context, slug string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conferences {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConferenceRepo) List(ctx context.Context) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Conference{}
	for _, c := range f.conferences {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	byMail map[string]*domain.User
	roles  map[string][]string // userID -> roleIDs
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*domain.User),
		byMail: make(map[string]*domain.User),
		roles:  make(map[string][]string),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byMail[u.Email]; ok {
		return domain.ErrConflict
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	f.byMail[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byMail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

type fakeRoleRepo struct{}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	switch code {
	case domain.RoleSpeaker, domain.RoleOrganizer:
		return &domain.Role{ID: "role-" + code, Code: code}, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	return []*domain.Role{{ID: "role-speaker", Code: domain.RoleSpeaker}}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.TalkTransitionEvent
	done   chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{done: make(chan struct{}, 16)}
}

func (f *fakePublisher) Publish(ctx context.Context, event *domain.TalkTransitionEvent) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakePublisher) Events() []*domain.TalkTransitionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.TalkTransitionEvent, len(f.events))
	copy(out, f.events)
	return out
}
