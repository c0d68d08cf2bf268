package couple_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/memstore"
	"github.com/dukerupert/lovejourney/internal/model"
)

type cyclePrompts struct {
	mu    sync.Mutex
	texts []string
	i     int
}

func (p *cyclePrompts) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.texts[p.i%len(p.texts)]
	p.i++
	return s
}

var fixedNow = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db  *memstore.DB
	svc *couple.Service
}

func newFixture(t *testing.T, opts ...couple.Option) *fixture {
	t.Helper()
	db := memstore.New()
	prompts := &cyclePrompts{texts: []string{"What made you smile today?", "Where would you like us to travel next?"}}
	opts = append([]couple.Option{couple.WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		db:  db,
		svc: couple.NewService(db.Relationships, db.Questions, db.Memories, prompts, opts...),
	}
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	u, err := f.db.Users.Create(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

func (f *fixture) pair(t *testing.T) (rel *model.Relationship, creator, partner int64) {
	t.Helper()
	ctx := context.Background()
	creator = f.user(t, "alice")
	partner = f.user(t, "bob")
	rel, err := f.svc.CreateRelationship(ctx, creator, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})
	if err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	rel, err = f.svc.LinkByCode(ctx, partner, rel.PartnerCode)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	return rel, creator, partner
}

var codePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestPairingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "alice")
	u2 := f.user(t, "bob")
	u3 := f.user(t, "carol")

	rel, err := f.svc.CreateRelationship(ctx, u1, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})
	if err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	if !codePattern.MatchString(rel.PartnerCode) {
		t.Errorf("partner code = %q, want 8 uppercase hex chars", rel.PartnerCode)
	}
	if rel.Status != model.Unlinked {
		t.Errorf("status = %q, want %q", rel.Status, model.Unlinked)
	}

	linked, err := f.svc.LinkByCode(ctx, u2, rel.PartnerCode)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked.PartnerUserID == nil || *linked.PartnerUserID != u2 {
		t.Fatalf("partner = %v, want %d", linked.PartnerUserID, u2)
	}
	if linked.Status != model.Linked {
		t.Errorf("status = %q, want %q", linked.Status, model.Linked)
	}

	if _, err := f.svc.LinkByCode(ctx, u3, rel.PartnerCode); !errors.Is(err, couple.ErrConflict) {
		t.Fatalf("third user link err = %v, want conflict", err)
	}

	for _, uid := range []int64{u1, u2} {
		got, err := f.svc.Relationship(ctx, uid)
		if err != nil {
			t.Fatalf("relationship: %v", err)
		}
		if got == nil || got.ID != rel.ID {
			t.Errorf("user %d: relationship = %+v, want %d", uid, got, rel.ID)
		}
	}
}

func TestCreateRelationshipOnePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, partner := f.pair(t)

	in := model.NewRelationship{PartnerName: "Someone", Anniversary: "2021-01-01"}
	if _, err := f.svc.CreateRelationship(ctx, creator, in); !errors.Is(err, couple.ErrAlreadyInRelationship) {
		t.Errorf("creator err = %v, want ErrAlreadyInRelationship", err)
	}
	if _, err := f.svc.CreateRelationship(ctx, partner, in); !errors.Is(err, couple.ErrAlreadyInRelationship) {
		t.Errorf("partner err = %v, want ErrAlreadyInRelationship", err)
	}
}

func TestCreateRelationshipValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")

	tests := []struct {
		name string
		in   model.NewRelationship
	}{
		{"blank partner name", model.NewRelationship{PartnerName: "  ", Anniversary: "2020-02-14"}},
		{"bad anniversary", model.NewRelationship{PartnerName: "Bob", Anniversary: "14/02/2020"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateRelationship(ctx, u, tt.in); !errors.Is(err, couple.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}

	rel, err := f.svc.CreateRelationship(ctx, u, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14T10:00:00Z"})
	if err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	if rel.Anniversary != "2020-02-14" {
		t.Errorf("anniversary = %q, want %q", rel.Anniversary, "2020-02-14")
	}
}

func TestPartnerCodeCollisionRetries(t *testing.T) {
	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	var mu sync.Mutex
	gen := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	f := newFixture(t, couple.WithPartnerCodes(gen))
	ctx := context.Background()

	first, err := f.svc.CreateRelationship(ctx, f.user(t, "alice"), model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := f.svc.CreateRelationship(ctx, f.user(t, "carol"), model.NewRelationship{PartnerName: "Dan", Anniversary: "2020-02-14"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.PartnerCode != "AAAAAAAA" {
		t.Errorf("first code = %q, want %q", first.PartnerCode, "AAAAAAAA")
	}
	if second.PartnerCode != "BBBBBBBB" {
		t.Errorf("second code = %q, want %q", second.PartnerCode, "BBBBBBBB")
	}
}

func TestPartnerCodeRetriesExhausted(t *testing.T) {
	f := newFixture(t, couple.WithPartnerCodes(func() (string, error) { return "AAAAAAAA", nil }))
	ctx := context.Background()

	if _, err := f.svc.CreateRelationship(ctx, f.user(t, "alice"), model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := f.svc.CreateRelationship(ctx, f.user(t, "carol"), model.NewRelationship{PartnerName: "Dan", Anniversary: "2020-02-14"}); err == nil {
		t.Fatal("expected error when every code is taken")
	}
}

func TestLinkErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "alice")
	u2 := f.user(t, "carol")

	rel, _ := f.svc.CreateRelationship(ctx, u1, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})
	other, _ := f.svc.CreateRelationship(ctx, u2, model.NewRelationship{PartnerName: "Dan", Anniversary: "2020-02-14"})

	if _, err := f.svc.LinkByCode(ctx, u1, rel.PartnerCode); !errors.Is(err, couple.ErrSelfLink) {
		t.Errorf("self link err = %v, want ErrSelfLink", err)
	}
	if _, err := f.svc.LinkByCode(ctx, u2, rel.PartnerCode); !errors.Is(err, couple.ErrAlreadyInRelationship) {
		t.Errorf("busy candidate err = %v, want ErrAlreadyInRelationship", err)
	}
	if _, err := f.svc.LinkByCode(ctx, u2, "00000000"); !errors.Is(err, couple.ErrInvalidPartnerCode) {
		t.Errorf("unknown code err = %v, want ErrInvalidPartnerCode", err)
	}
	if _, err := f.svc.LinkByCode(ctx, u2, "  "); !errors.Is(err, couple.ErrValidation) {
		t.Errorf("blank code err = %v, want validation", err)
	}
	if _, err := f.svc.Registry.LinkPartner(ctx, 999, u2); !errors.Is(err, couple.ErrNotFound) {
		t.Errorf("unknown relationship err = %v, want not found", err)
	}
	if other.Status != model.Unlinked {
		t.Errorf("other status = %q, want %q", other.Status, model.Unlinked)
	}
}

func TestLinkNormalizesCode(t *testing.T) {
	f := newFixture(t, couple.WithPartnerCodes(func() (string, error) { return "ABCDEF12", nil }))
	ctx := context.Background()
	u1 := f.user(t, "alice")
	u2 := f.user(t, "bob")

	if _, err := f.svc.CreateRelationship(ctx, u1, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"}); err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	if _, err := f.svc.LinkByCode(ctx, u2, " abcdef12 "); err != nil {
		t.Fatalf("link with lowercase code: %v", err)
	}
}

func TestConcurrentLinkingHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "alice")
	rel, _ := f.svc.CreateRelationship(ctx, creator, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})

	const candidates = 10
	ids := make([]int64, candidates)
	for i := range ids {
		ids[i] = f.user(t, "user"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, candidates)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.LinkByCode(ctx, id, rel.PartnerCode)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, couple.ErrAlreadyLinked):
			t.Errorf("unexpected err: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestAnswerChaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel, creator, partner := f.pair(t)

	q, err := f.svc.CreateQuestion(ctx, creator, "What made you smile today?", "2024-05-01")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	res, err := f.svc.Answer(ctx, creator, q.ID, "", "A")
	if err != nil {
		t.Fatalf("creator answer: %v", err)
	}
	if res.Outcome != couple.PartiallyAnswered {
		t.Errorf("outcome = %q, want %q", res.Outcome, couple.PartiallyAnswered)
	}
	if res.Next != nil {
		t.Error("expected no successor after one answer")
	}

	res, err = f.svc.Answer(ctx, partner, q.ID, model.RolePartner, "B")
	if err != nil {
		t.Fatalf("partner answer: %v", err)
	}
	if res.Outcome != couple.FullyAnswered {
		t.Errorf("outcome = %q, want %q", res.Outcome, couple.FullyAnswered)
	}
	if !res.Question.IsAnswered {
		t.Error("expected question answered")
	}
	if res.Next == nil {
		t.Fatal("expected successor question")
	}
	if res.Next.Date != "2024-05-02" {
		t.Errorf("successor date = %q, want %q", res.Next.Date, "2024-05-02")
	}
	if res.Next.RelationshipID != rel.ID {
		t.Errorf("successor relationship = %d, want %d", res.Next.RelationshipID, rel.ID)
	}
	if res.Next.UserAnswer != nil || res.Next.PartnerAnswer != nil {
		t.Error("expected successor with empty answers")
	}

	if _, err := f.svc.Answer(ctx, creator, q.ID, "", "again"); !errors.Is(err, couple.ErrAlreadyAnswered) {
		t.Fatalf("answer after completion err = %v, want ErrAlreadyAnswered", err)
	}

	n, _ := f.svc.Questions.Count(ctx, rel.ID)
	if n != 2 {
		t.Errorf("question count = %d, want 2", n)
	}
}

func TestAnswerOverwriteBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, partner := f.pair(t)

	q, _ := f.svc.CreateQuestion(ctx, creator, "q", "2024-05-01")
	if _, err := f.svc.Answer(ctx, creator, q.ID, "", "draft"); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	res, err := f.svc.Answer(ctx, creator, q.ID, "", "final")
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if *res.Question.UserAnswer != "final" {
		t.Errorf("user answer = %q, want %q", *res.Question.UserAnswer, "final")
	}
	if res.Outcome != couple.PartiallyAnswered || res.Next != nil {
		t.Errorf("outcome = %q next = %v, want partial without successor", res.Outcome, res.Next)
	}

	res, err = f.svc.Answer(ctx, partner, q.ID, "", "B")
	if err != nil {
		t.Fatalf("partner answer: %v", err)
	}
	if res.Outcome != couple.FullyAnswered {
		t.Errorf("outcome = %q, want %q", res.Outcome, couple.FullyAnswered)
	}
}

func TestAnswerAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, partner := f.pair(t)

	q, _ := f.svc.CreateQuestion(ctx, creator, "q", "2024-05-01")

	if _, err := f.svc.Answer(ctx, creator, q.ID, model.RolePartner, "A"); !errors.Is(err, couple.ErrForbidden) {
		t.Errorf("creator writing partner slot err = %v, want forbidden", err)
	}
	if _, err := f.svc.Answer(ctx, partner, q.ID, model.RoleSelf, "A"); !errors.Is(err, couple.ErrForbidden) {
		t.Errorf("partner writing self slot err = %v, want forbidden", err)
	}
	if _, err := f.svc.Answer(ctx, creator, q.ID, "both", "A"); !errors.Is(err, couple.ErrValidation) {
		t.Errorf("unknown role err = %v, want validation", err)
	}
	if _, err := f.svc.Answer(ctx, creator, q.ID, "", "   "); !errors.Is(err, couple.ErrValidation) {
		t.Errorf("blank answer err = %v, want validation", err)
	}
	if _, err := f.svc.Answer(ctx, creator, 999, "", "A"); !errors.Is(err, couple.ErrNotFound) {
		t.Errorf("unknown question err = %v, want not found", err)
	}

	got, _ := f.svc.Questions.Get(ctx, q.ID)
	if got.UserAnswer != nil || got.PartnerAnswer != nil {
		t.Error("rejected answers must not be stored")
	}
}

func TestAnswerForeignQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, _ := f.pair(t)

	outsider := f.user(t, "carol")
	outsiderPartner := f.user(t, "dan")
	rel, _ := f.svc.CreateRelationship(ctx, outsider, model.NewRelationship{PartnerName: "Dan", Anniversary: "2020-02-14"})
	if _, err := f.svc.LinkByCode(ctx, outsiderPartner, rel.PartnerCode); err != nil {
		t.Fatalf("link: %v", err)
	}

	q, _ := f.svc.CreateQuestion(ctx, creator, "q", "2024-05-01")
	if _, err := f.svc.Answer(ctx, outsider, q.ID, "", "A"); !errors.Is(err, couple.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestQuestionsRequirePartner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	loner := f.user(t, "carol")

	if _, err := f.svc.CreateRelationship(ctx, u, model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"}); err != nil {
		t.Fatalf("create relationship: %v", err)
	}

	if _, err := f.svc.QuestionsForDate(ctx, u, "2024-05-01"); !errors.Is(err, couple.ErrPartnerRequired) {
		t.Errorf("unlinked err = %v, want ErrPartnerRequired", err)
	}
	if _, err := f.svc.QuestionsForDate(ctx, loner, "2024-05-01"); !errors.Is(err, couple.ErrRelationshipNotFound) {
		t.Errorf("no relationship err = %v, want ErrRelationshipNotFound", err)
	}
	if _, err := f.svc.ListMemories(ctx, u); !errors.Is(err, couple.ErrPartnerRequired) {
		t.Errorf("memories unlinked err = %v, want ErrPartnerRequired", err)
	}
}

func TestQuestionsForDateSeedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel, creator, partner := f.pair(t)

	got, err := f.svc.QuestionsForDate(ctx, creator, "2024-05-01")
	if err != nil {
		t.Fatalf("questions for date: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 seeded question", len(got))
	}
	if got[0].Question != "What made you smile today?" {
		t.Errorf("question = %q, want first prompt", got[0].Question)
	}

	got, err = f.svc.QuestionsForDate(ctx, partner, "2024-05-01")
	if err != nil {
		t.Fatalf("questions for date: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 after second listing", len(got))
	}

	other, err := f.svc.QuestionsForDate(ctx, creator, "2024-05-03")
	if err != nil {
		t.Fatalf("questions for date: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("len = %d, want 0 for a day with no questions", len(other))
	}

	if n, _ := f.svc.Questions.Count(ctx, rel.ID); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestQuestionsForDateExactDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, _ := f.pair(t)

	if _, err := f.svc.CreateQuestion(ctx, creator, "q", "2024-05-01T23:30:00Z"); err != nil {
		t.Fatalf("create question: %v", err)
	}
	got, err := f.svc.QuestionsForDate(ctx, creator, "2024-05-01")
	if err != nil {
		t.Fatalf("questions for date: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if _, err := f.svc.QuestionsForDate(ctx, creator, "yesterday"); !errors.Is(err, couple.ErrValidation) {
		t.Errorf("bad date err = %v, want validation", err)
	}
}

func TestMemoryTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, partner := f.pair(t)

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m1, err := f.svc.CreateMemory(ctx, creator, model.NewMemory{Title: "M1", ImageURL: "https://img/1", Date: d1})
	if err != nil {
		t.Fatalf("create m1: %v", err)
	}
	m2, _ := f.svc.CreateMemory(ctx, partner, model.NewMemory{Title: "M2", ImageURL: "https://img/2", Date: d2})
	m3, _ := f.svc.CreateMemory(ctx, creator, model.NewMemory{Title: "M3", ImageURL: "https://img/3", Date: d1})

	got, err := f.svc.ListMemories(ctx, partner)
	if err != nil {
		t.Fatalf("list memories: %v", err)
	}
	want := []int64{m2.ID, m1.ID, m3.ID}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("memories[%d].id = %d, want %d", i, got[i].ID, id)
		}
	}

	if _, err := f.svc.DeleteMemory(ctx, creator, m1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.DeleteMemory(ctx, creator, m1.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	got, _ = f.svc.ListMemories(ctx, creator)
	if len(got) != 2 || got[0].ID != m2.ID || got[1].ID != m3.ID {
		t.Errorf("after delete = %+v, want [%d %d]", got, m2.ID, m3.ID)
	}
}

func TestMemoryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, _ := f.pair(t)

	tests := []struct {
		name string
		in   model.NewMemory
	}{
		{"missing title", model.NewMemory{ImageURL: "u", Date: fixedNow}},
		{"missing image", model.NewMemory{Title: "t", Date: fixedNow}},
		{"missing date", model.NewMemory{Title: "t", ImageURL: "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateMemory(ctx, creator, tt.in); !errors.Is(err, couple.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestDeleteMemoryOtherRelationship(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator, _ := f.pair(t)

	outsider := f.user(t, "carol")
	if _, err := f.svc.CreateRelationship(ctx, outsider, model.NewRelationship{PartnerName: "Dan", Anniversary: "2020-02-14"}); err != nil {
		t.Fatalf("create relationship: %v", err)
	}

	m, _ := f.svc.CreateMemory(ctx, creator, model.NewMemory{Title: "M", ImageURL: "u", Date: fixedNow})
	if _, err := f.svc.DeleteMemory(ctx, outsider, m.ID); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	if got, _ := f.svc.ListMemories(ctx, creator); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-02-29", "2024-02-29", false},
		{" 2024-05-01 ", "2024-05-01", false},
		{"2024-05-01T10:20:30Z", "2024-05-01", false},
		{"2024-13-01", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := couple.ParseDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDay(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeneratePartnerCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		code, err := couple.GeneratePartnerCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Fatalf("code = %q, want 8 uppercase hex chars", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct codes")
	}
}
