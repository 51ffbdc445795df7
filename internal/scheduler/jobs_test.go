package scheduler_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/draft"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/scheduler"
)

// memStore is an in-memory stand-in for all four repositories.
type memStore struct {
	threads     []*model.OutreachThread
	messages    []*model.Message
	influencers map[uuid.UUID]*model.Influencer
	campaigns   map[uuid.UUID]*model.Campaign

	statusWrites map[uuid.UUID]string
}

func newMemStore() *memStore {
	return &memStore{
		influencers:  map[uuid.UUID]*model.Influencer{},
		campaigns:    map[uuid.UUID]*model.Campaign{},
		statusWrites: map[uuid.UUID]string{},
	}
}

func (s *memStore) CreateThread(t *model.OutreachThread) error {
	for _, existing := range s.threads {
		if existing.CampaignID == t.CampaignID && existing.InfluencerID == t.InfluencerID {
			return apperrors.ErrThreadExists
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.threads = append(s.threads, t)
	return nil
}

func (s *memStore) GetByID(id uuid.UUID) (*model.OutreachThread, error) {
	for _, t := range s.threads {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperrors.NewThreadNotFound(id)
}

func (s *memStore) ListByStages(stages []string, limit int) ([]*model.OutreachThread, error) {
	wanted := map[string]bool{}
	for _, st := range stages {
		wanted[st] = true
	}
	var out []*model.OutreachThread
	for _, t := range s.threads {
		if wanted[t.Stage] {
			out = append(out, t)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ListDueFollowups(now time.Time, limit int) ([]*model.OutreachThread, error) {
	var out []*model.OutreachThread
	for _, t := range s.threads {
		if t.Stage == model.StageWaiting && t.NextFollowupAt != nil && !t.NextFollowupAt.After(now) {
			out = append(out, t)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ExistingInfluencerIDs(campaignID uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, t := range s.threads {
		if t.CampaignID == campaignID {
			out[t.InfluencerID] = true
		}
	}
	return out, nil
}

func (s *memStore) MarkNeedsApproval(id uuid.UUID) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	t.Stage = model.StageNeedsApproval
	t.NextFollowupAt = nil
	return nil
}

func (s *memStore) MarkAwaitingReply(id uuid.UUID, lastContactAt, nextFollowupAt time.Time) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	t.Stage = model.StageWaiting
	t.LastContactAt = &lastContactAt
	t.NextFollowupAt = &nextFollowupAt
	return nil
}

func (s *memStore) CreateMessage(m *model.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.messages = append(s.messages, m)
	return nil
}

func (s *memStore) HasOutbound(threadID uuid.UUID) (bool, error) {
	for _, m := range s.messages {
		if m.ThreadID == threadID && m.Direction == model.DirectionOutbound {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) HasInbound(threadID uuid.UUID) (bool, error) {
	for _, m := range s.messages {
		if m.ThreadID == threadID && m.Direction == model.DirectionInbound {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) HasPendingDraft(threadID uuid.UUID) (bool, error) {
	for _, m := range s.messages {
		if m.ThreadID == threadID && m.Direction == model.DirectionOutbound &&
			(m.Status == model.MessageStatusDraft || m.Status == model.MessageStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) LastSentAt(threadID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	for _, m := range s.messages {
		if m.ThreadID == threadID && m.Direction == model.DirectionOutbound &&
			m.Status == model.MessageStatusSent && m.SentAt != nil {
			if latest == nil || m.SentAt.After(*latest) {
				latest = m.SentAt
			}
		}
	}
	return latest, nil
}

func (s *memStore) ListCampaignDrafts(campaignID uuid.UUID, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range s.messages {
		if m.Direction != model.DirectionOutbound || m.Status != model.MessageStatusDraft {
			continue
		}
		t, err := s.GetByID(m.ThreadID)
		if err != nil || t.CampaignID != campaignID || t.Stage == model.StageReplied {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) UpdateStatus(id uuid.UUID, status string) error {
	for _, m := range s.messages {
		if m.ID == id {
			m.Status = status
			return nil
		}
	}
	if inf, ok := s.influencers[id]; ok {
		inf.Status = status
		s.statusWrites[id] = status
		return nil
	}
	return fmt.Errorf("no row for %s", id)
}

func (s *memStore) MarkSent(id uuid.UUID, providerMsgID string, sentAt time.Time) error {
	for _, m := range s.messages {
		if m.ID == id {
			m.Status = model.MessageStatusSent
			m.ProviderMsgID = &providerMsgID
			m.SentAt = &sentAt
			return nil
		}
	}
	return fmt.Errorf("no message %s", id)
}

func (s *memStore) GetInfluencer(id uuid.UUID) (*model.Influencer, error) {
	if inf, ok := s.influencers[id]; ok {
		return inf, nil
	}
	return nil, apperrors.NewInfluencerNotFound(id)
}

func (s *memStore) ListCandidates(minScore float64, platform string, requireEmail bool, limit int) ([]*model.Influencer, error) {
	var out []*model.Influencer
	for _, inf := range s.influencers {
		if inf.OverallScore == nil || *inf.OverallScore < minScore {
			continue
		}
		if platform != "" && inf.Platform != platform {
			continue
		}
		if requireEmail && !inf.HasEmail() {
			continue
		}
		out = append(out, inf)
	}
	sort.Slice(out, func(i, j int) bool {
		return *out[i].OverallScore > *out[j].OverallScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListStaleScores(before time.Time, limit int) ([]*model.Influencer, error) {
	var out []*model.Influencer
	for _, inf := range s.influencers {
		if inf.ScoreUpdatedAt == nil || inf.ScoreUpdatedAt.Before(before) {
			out = append(out, inf)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) UpdateScores(id uuid.UUID, brandFit, risk, overall float64, breakdown any, at time.Time) error {
	inf, ok := s.influencers[id]
	if !ok {
		return apperrors.NewInfluencerNotFound(id)
	}
	inf.BrandFitScore = &brandFit
	inf.RiskScore = &risk
	inf.OverallScore = &overall
	inf.ScoreUpdatedAt = &at
	return nil
}

func (s *memStore) GetCampaign(id uuid.UUID) (*model.Campaign, error) {
	if c, ok := s.campaigns[id]; ok {
		return c, nil
	}
	return nil, apperrors.NewCampaignNotFound(id)
}

// Adapters split the shared store into the four interfaces Jobs expects.
type threadStore struct{ *memStore }

func (a threadStore) Create(t *model.OutreachThread) error { return a.CreateThread(t) }

type messageStore struct{ *memStore }

func (a messageStore) Create(m *model.Message) error { return a.CreateMessage(m) }

type influencerStore struct{ *memStore }

func (a influencerStore) GetByID(id uuid.UUID) (*model.Influencer, error) {
	return a.GetInfluencer(id)
}

type campaignStore struct{ *memStore }

func (a campaignStore) GetByID(id uuid.UUID) (*model.Campaign, error) {
	return a.GetCampaign(id)
}

type fakeGenerator struct {
	failOutreach bool
	outreachCnt  int
	followupCnt  int
}

func (g *fakeGenerator) Outreach(ctx context.Context, brand map[string]any, inf draft.InfluencerView, offer map[string]any) (draft.Draft, error) {
	if g.failOutreach {
		return draft.Draft{}, fmt.Errorf("generator down")
	}
	g.outreachCnt++
	return draft.Draft{Subject: "Collab with " + inf.Handle, Body: "Hi " + inf.Handle}, nil
}

func (g *fakeGenerator) Followup(ctx context.Context, brand map[string]any, inf draft.InfluencerView, offer map[string]any) (draft.Draft, error) {
	g.followupCnt++
	return draft.Draft{Subject: "Re: collab", Body: "Just checking in"}, nil
}

type fakeProvider struct {
	failFor map[string]bool
	sent    []email.SendRequest
}

func (p *fakeProvider) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	if p.failFor[req.ToEmail] {
		return email.SendResult{}, fmt.Errorf("provider rejected %s", req.ToEmail)
	}
	p.sent = append(p.sent, req)
	return email.SendResult{Provider: "fake", ProviderMsgID: fmt.Sprintf("fake-%d", len(p.sent))}, nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newJobs(s *memStore, gen draft.Generator, prov email.Provider) *scheduler.Jobs {
	return &scheduler.Jobs{
		Threads:     threadStore{s},
		Messages:    messageStore{s},
		Influencers: influencerStore{s},
		Campaigns:   campaignStore{s},
		Drafts:      gen,
		Email:       prov,
		Sender:      email.Sender{FromEmail: "hello@hellotonatural.com", FromName: "Hello To Natural"},
		Clock:       func() time.Time { return fixedNow },
	}
}

func seedCampaign(s *memStore) *model.Campaign {
	c := &model.Campaign{ID: uuid.New(), Name: "Summer Gifting", OfferType: "gifted"}
	s.campaigns[c.ID] = c
	return c
}

func seedInfluencer(s *memStore, handle, emailAddr string, score float64) *model.Influencer {
	inf := &model.Influencer{
		ID:       uuid.New(),
		Platform: "instagram",
		Handle:   handle,
		Status:   model.InfluencerStatusNew,
	}
	if emailAddr != "" {
		inf.Email = &emailAddr
	}
	if score > 0 {
		inf.OverallScore = &score
	}
	s.influencers[inf.ID] = inf
	return inf
}

func TestGenerateInitialDraftsIsIdempotent(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	inf := seedInfluencer(s, "herbal_jane", "jane@example.com", 90)
	thread := &model.OutreachThread{CampaignID: c.ID, InfluencerID: inf.ID, Stage: model.StageNew}
	if err := s.CreateThread(thread); err != nil {
		t.Fatal(err)
	}

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})

	first, err := jobs.GenerateInitialDrafts(context.Background(), 25)
	if err != nil {
		t.Fatal(err)
	}
	if first.Drafted != 1 {
		t.Fatalf("Drafted = %d, want 1", first.Drafted)
	}
	if thread.Stage != model.StageNeedsApproval {
		t.Errorf("stage = %q, want needs_approval", thread.Stage)
	}

	// Force the thread back into scope; the existing draft must block a
	// second one.
	thread.Stage = model.StageNew
	second, err := jobs.GenerateInitialDrafts(context.Background(), 25)
	if err != nil {
		t.Fatal(err)
	}
	if second.Drafted != 0 || second.SkippedExistingDraft != 1 {
		t.Errorf("second run = %+v, want zero drafted, one skipped", second)
	}
	if len(s.messages) != 1 {
		t.Errorf("messages = %d, want 1", len(s.messages))
	}
}

func TestGenerateFollowupDraftsGuards(t *testing.T) {
	s := newMemStore()
	inf := seedInfluencer(s, "vegan_vera", "vera@example.com", 80)

	// One campaign per thread keeps the unique pair constraint out of the way.
	makeWaiting := func(sentDaysAgo int) *model.OutreachThread {
		camp := seedCampaign(s)
		thread := &model.OutreachThread{CampaignID: camp.ID, InfluencerID: inf.ID, Stage: model.StageWaiting}
		if err := s.CreateThread(thread); err != nil {
			t.Fatal(err)
		}
		due := fixedNow.Add(-time.Hour)
		thread.NextFollowupAt = &due
		if sentDaysAgo >= 0 {
			sentAt := fixedNow.AddDate(0, 0, -sentDaysAgo)
			s.CreateMessage(&model.Message{
				ThreadID: thread.ID, Direction: model.DirectionOutbound,
				Channel: model.ChannelEmail, Status: model.MessageStatusSent,
				Body: "sent earlier", SentAt: &sentAt,
			})
		}
		return thread
	}

	replied := makeWaiting(5)
	s.CreateMessage(&model.Message{
		ThreadID: replied.ID, Direction: model.DirectionInbound,
		Channel: model.ChannelEmail, Status: model.MessageStatusReceived, Body: "yes!",
	})
	tooRecent := makeWaiting(1)
	neverSent := makeWaiting(-1)
	eligible := makeWaiting(6)

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.GenerateFollowupDrafts(context.Background(), 3, 25)
	if err != nil {
		t.Fatal(err)
	}

	if result.Drafted != 1 {
		t.Errorf("Drafted = %d, want 1", result.Drafted)
	}
	if result.SkippedReplied != 1 {
		t.Errorf("SkippedReplied = %d, want 1", result.SkippedReplied)
	}
	if result.SkippedRecentSend != 1 {
		t.Errorf("SkippedRecentSend = %d, want 1", result.SkippedRecentSend)
	}
	if result.SkippedNeverSent != 1 {
		t.Errorf("SkippedNeverSent = %d, want 1", result.SkippedNeverSent)
	}

	if eligible.Stage != model.StageNeedsApproval {
		t.Errorf("eligible stage = %q, want needs_approval", eligible.Stage)
	}
	if eligible.NextFollowupAt != nil {
		t.Error("eligible NextFollowupAt not cleared")
	}
	if tooRecent.Stage != model.StageWaiting || neverSent.Stage != model.StageWaiting {
		t.Error("skipped threads must stay waiting")
	}
}

func TestFillAndDraftTakesTopCandidates(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	top := seedInfluencer(s, "top_pick", "top@example.com", 90)
	mid := seedInfluencer(s, "mid_pick", "mid@example.com", 80)
	low := seedInfluencer(s, "low_pick", "low@example.com", 60)

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.FillAndDraft(context.Background(), scheduler.FillParams{
		CampaignID:    c.ID,
		MinScore:      70,
		MaxNewThreads: 2,
		RequireEmail:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Created != 2 || result.Drafted != 2 {
		t.Fatalf("result = %+v, want 2 created, 2 drafted", result)
	}
	inCampaign, _ := s.ExistingInfluencerIDs(c.ID)
	if !inCampaign[top.ID] || !inCampaign[mid.ID] {
		t.Error("top two candidates should have threads")
	}
	if inCampaign[low.ID] {
		t.Error("below-threshold candidate got a thread")
	}
	if top.Status != model.InfluencerStatusQueued || mid.Status != model.InfluencerStatusQueued {
		t.Error("selected influencers should be queued")
	}
	for _, thread := range s.threads {
		if thread.Stage != model.StageNeedsApproval {
			t.Errorf("thread stage = %q, want needs_approval", thread.Stage)
		}
	}
}

func TestFillAndDraftSkipsExistingPairs(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	top := seedInfluencer(s, "already_in", "in@example.com", 95)
	next := seedInfluencer(s, "fresh_face", "fresh@example.com", 85)
	s.CreateThread(&model.OutreachThread{CampaignID: c.ID, InfluencerID: top.ID, Stage: model.StageWaiting})

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.FillAndDraft(context.Background(), scheduler.FillParams{
		CampaignID:    c.ID,
		MinScore:      70,
		MaxNewThreads: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Created != 1 || result.SkippedExisting != 1 {
		t.Fatalf("result = %+v, want 1 created, 1 skipped existing", result)
	}
	inCampaign, _ := s.ExistingInfluencerIDs(c.ID)
	if !inCampaign[next.ID] {
		t.Error("next-best candidate should have a thread")
	}
	if len(s.threads) != 2 {
		t.Errorf("threads = %d, want 2", len(s.threads))
	}
}

func TestFillAndDraftGeneratorFailureLeavesThreadNew(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	seedInfluencer(s, "unlucky", "u@example.com", 90)

	jobs := newJobs(s, &fakeGenerator{failOutreach: true}, &fakeProvider{})
	result, err := jobs.FillAndDraft(context.Background(), scheduler.FillParams{
		CampaignID:    c.ID,
		MinScore:      70,
		MaxNewThreads: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Created != 1 || result.Drafted != 0 || result.Failed != 1 {
		t.Fatalf("result = %+v, want created without draft", result)
	}
	if s.threads[0].Stage != model.StageNew {
		t.Errorf("stage = %q, want new so the draft job retries it", s.threads[0].Stage)
	}
}

func TestApproveAndSendHappyPath(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	inf := seedInfluencer(s, "ready", "ready@example.com", 90)
	thread := &model.OutreachThread{CampaignID: c.ID, InfluencerID: inf.ID, Stage: model.StageNeedsApproval}
	s.CreateThread(thread)
	subject := "Collab with ready"
	s.CreateMessage(&model.Message{
		ThreadID: thread.ID, Channel: model.ChannelEmail,
		Direction: model.DirectionOutbound, Status: model.MessageStatusDraft,
		Subject: &subject, Body: "Hi ready",
	})

	prov := &fakeProvider{}
	jobs := newJobs(s, &fakeGenerator{}, prov)
	result, err := jobs.ApproveAndSend(context.Background(), scheduler.SendParams{
		CampaignID: c.ID, Limit: 10, FollowupDays: 4, RequireEmail: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Sent != 1 {
		t.Fatalf("Sent = %d, want 1", result.Sent)
	}
	if len(prov.sent) != 1 || prov.sent[0].ToEmail != "ready@example.com" {
		t.Fatalf("provider got %+v", prov.sent)
	}
	msg := s.messages[0]
	if msg.Status != model.MessageStatusSent || msg.ProviderMsgID == nil || msg.SentAt == nil {
		t.Errorf("message not fully marked sent: %+v", msg)
	}
	if thread.Stage != model.StageWaiting {
		t.Errorf("stage = %q, want waiting", thread.Stage)
	}
	wantFollowup := fixedNow.AddDate(0, 0, 4)
	if thread.NextFollowupAt == nil || !thread.NextFollowupAt.Equal(wantFollowup) {
		t.Errorf("NextFollowupAt = %v, want %v", thread.NextFollowupAt, wantFollowup)
	}
	if inf.Status != model.InfluencerStatusContacted {
		t.Errorf("influencer status = %q, want contacted", inf.Status)
	}
}

func TestApproveAndSendSkipsMissingEmail(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	inf := seedInfluencer(s, "no_email", "", 90)
	thread := &model.OutreachThread{CampaignID: c.ID, InfluencerID: inf.ID, Stage: model.StageNeedsApproval}
	s.CreateThread(thread)
	s.CreateMessage(&model.Message{
		ThreadID: thread.ID, Channel: model.ChannelEmail,
		Direction: model.DirectionOutbound, Status: model.MessageStatusDraft, Body: "Hi",
	})

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.ApproveAndSend(context.Background(), scheduler.SendParams{
		CampaignID: c.ID, Limit: 10, RequireEmail: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.SkippedNoEmail != 1 || result.Sent != 0 {
		t.Fatalf("result = %+v, want one skip, zero sends", result)
	}
	if s.messages[0].Status != model.MessageStatusDraft {
		t.Errorf("draft status = %q, must stay draft", s.messages[0].Status)
	}
	if thread.Stage != model.StageNeedsApproval {
		t.Errorf("stage = %q, must stay needs_approval", thread.Stage)
	}
}

func TestApproveAndSendFailureIsPerRow(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	bad := seedInfluencer(s, "bouncer", "bad@example.com", 90)
	good := seedInfluencer(s, "keeper", "good@example.com", 85)

	badThread := &model.OutreachThread{CampaignID: c.ID, InfluencerID: bad.ID, Stage: model.StageNeedsApproval}
	goodThread := &model.OutreachThread{CampaignID: c.ID, InfluencerID: good.ID, Stage: model.StageNeedsApproval}
	s.CreateThread(badThread)
	s.CreateThread(goodThread)
	s.CreateMessage(&model.Message{
		ThreadID: badThread.ID, Channel: model.ChannelEmail,
		Direction: model.DirectionOutbound, Status: model.MessageStatusDraft, Body: "Hi bad",
	})
	s.CreateMessage(&model.Message{
		ThreadID: goodThread.ID, Channel: model.ChannelEmail,
		Direction: model.DirectionOutbound, Status: model.MessageStatusDraft, Body: "Hi good",
	})

	prov := &fakeProvider{failFor: map[string]bool{"bad@example.com": true}}
	jobs := newJobs(s, &fakeGenerator{}, prov)
	result, err := jobs.ApproveAndSend(context.Background(), scheduler.SendParams{
		CampaignID: c.ID, Limit: 10, RequireEmail: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 1 sent, 1 failed", result)
	}
	if s.messages[0].Status != model.MessageStatusFailed {
		t.Errorf("failed message status = %q, want failed", s.messages[0].Status)
	}
	if badThread.Stage != model.StageNeedsApproval {
		t.Errorf("failed thread stage = %q, must not advance", badThread.Stage)
	}
	if goodThread.Stage != model.StageWaiting {
		t.Errorf("good thread stage = %q, want waiting", goodThread.Stage)
	}
}

func TestApproveAndSendRequiresSenderIdentity(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	jobs.Sender = email.Sender{}

	_, err := jobs.ApproveAndSend(context.Background(), scheduler.SendParams{CampaignID: c.ID, Limit: 10})
	if err == nil {
		t.Fatal("expected error without sender identity")
	}
}

func TestRunPipelineStopsAfterFillFailure(t *testing.T) {
	s := newMemStore()
	seedInfluencer(s, "waiting_around", "w@example.com", 90)

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.RunPipeline(context.Background(), scheduler.PipelineParams{
		CampaignID:    uuid.New(), // no such campaign
		MinScore:      70,
		MaxNewThreads: 5,
	})
	if err == nil {
		t.Fatal("expected error for missing campaign")
	}
	if !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want not-found", err)
	}
	if result.Send.Sent != 0 || len(s.messages) != 0 {
		t.Error("send stage must not run after fill failure")
	}
}

func TestRunPipelineEndToEnd(t *testing.T) {
	s := newMemStore()
	c := seedCampaign(s)
	inf := seedInfluencer(s, "full_loop", "loop@example.com", 88)

	prov := &fakeProvider{}
	jobs := newJobs(s, &fakeGenerator{}, prov)
	result, err := jobs.RunPipeline(context.Background(), scheduler.PipelineParams{
		CampaignID:    c.ID,
		MinScore:      70,
		MaxNewThreads: 5,
		RequireEmail:  true,
		FollowupDays:  3,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Fill.Created != 1 || result.Send.Sent != 1 {
		t.Fatalf("result = %+v, want one thread created and sent", result)
	}
	if s.threads[0].Stage != model.StageWaiting {
		t.Errorf("stage = %q, want waiting", s.threads[0].Stage)
	}
	if inf.Status != model.InfluencerStatusContacted {
		t.Errorf("influencer status = %q, want contacted", inf.Status)
	}
}

func TestScoreInfluencersWritesAllFields(t *testing.T) {
	s := newMemStore()
	bio := "I love natural skincare and herbal tea"
	followers := 20000
	rate := 0.05
	inf := seedInfluencer(s, "scoreme", "s@example.com", 0)
	inf.Bio = &bio
	inf.Followers = &followers
	inf.EngagementRate = &rate

	fresh := seedInfluencer(s, "fresh_score", "f@example.com", 50)
	recent := fixedNow.Add(-time.Hour)
	fresh.ScoreUpdatedAt = &recent

	jobs := newJobs(s, &fakeGenerator{}, &fakeProvider{})
	result, err := jobs.ScoreInfluencers(context.Background(), 200, 24)
	if err != nil {
		t.Fatal(err)
	}

	if result.Scored != 1 {
		t.Fatalf("Scored = %d, want 1 (fresh score must be skipped)", result.Scored)
	}
	if inf.OverallScore == nil || inf.BrandFitScore == nil || inf.RiskScore == nil {
		t.Fatal("score fields must all be set")
	}
	if *inf.OverallScore < 70 {
		t.Errorf("overall = %v, want a strong score for an on-brand micro influencer", *inf.OverallScore)
	}
	if inf.ScoreUpdatedAt == nil || !inf.ScoreUpdatedAt.Equal(fixedNow) {
		t.Errorf("ScoreUpdatedAt = %v, want the injected clock value", inf.ScoreUpdatedAt)
	}
}
