package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

func setupQuestionTestDB(t *testing.T) (*QuestionStore, int64) {
	t.Helper()
	db := openTestDB(t)
	us := NewUserStore(db)
	alice := mustUser(t, us, "alice")
	r, err := NewRelationshipStore(db).Create(context.Background(), alice.ID, "AAAAAAAA",
		model.NewRelationship{PartnerName: "Bob", Anniversary: "2020-02-14"})
	if err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	return NewQuestionStore(db), r.ID
}

func TestQuestionCreate(t *testing.T) {
	qs, relID := setupQuestionTestDB(t)

	q, err := qs.Create(context.Background(), relID, "What made you smile today?", "2024-05-01")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if q.UserAnswer != nil || q.PartnerAnswer != nil {
		t.Error("expected both answers empty")
	}
	if q.IsAnswered {
		t.Error("expected is_answered false")
	}
	if q.Date != "2024-05-01" {
		t.Errorf("date = %q, want %q", q.Date, "2024-05-01")
	}
}

func TestQuestionListForDate(t *testing.T) {
	qs, relID := setupQuestionTestDB(t)
	ctx := context.Background()

	first, _ := qs.Create(ctx, relID, "one", "2024-05-01")
	second, _ := qs.Create(ctx, relID, "two", "2024-05-01")
	if _, err := qs.Create(ctx, relID, "three", "2024-05-02"); err != nil {
		t.Fatalf("create question: %v", err)
	}

	got, err := qs.ListForDate(ctx, relID, "2024-05-01")
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("ids = %d,%d, want %d,%d", got[0].ID, got[1].ID, first.ID, second.ID)
	}

	n, err := qs.CountForRelationship(ctx, relID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestQuestionSetAnswer(t *testing.T) {
	qs, relID := setupQuestionTestDB(t)
	ctx := context.Background()

	q, _ := qs.Create(ctx, relID, "one", "2024-05-01")

	got, err := qs.SetAnswer(ctx, q.ID, model.RoleSelf, "A")
	if err != nil {
		t.Fatalf("set self answer: %v", err)
	}
	if got.IsAnswered {
		t.Error("expected not answered after one slot")
	}
	if got.UserAnswer == nil || *got.UserAnswer != "A" {
		t.Errorf("user answer = %v, want %q", got.UserAnswer, "A")
	}

	got, err = qs.SetAnswer(ctx, q.ID, model.RoleSelf, "A2")
	if err != nil {
		t.Fatalf("overwrite self answer: %v", err)
	}
	if *got.UserAnswer != "A2" {
		t.Errorf("user answer = %q, want %q", *got.UserAnswer, "A2")
	}

	got, err = qs.SetAnswer(ctx, q.ID, model.RolePartner, "B")
	if err != nil {
		t.Fatalf("set partner answer: %v", err)
	}
	if !got.IsAnswered {
		t.Error("expected answered after both slots")
	}

	if _, err := qs.SetAnswer(ctx, q.ID, model.RolePartner, "C"); !errors.Is(err, couple.ErrAlreadyAnswered) {
		t.Fatalf("err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestQuestionSetAnswerNotFound(t *testing.T) {
	qs, _ := setupQuestionTestDB(t)

	_, err := qs.SetAnswer(context.Background(), 999, model.RoleSelf, "A")
	if !errors.Is(err, couple.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestQuestionEmptyAnswerDoesNotComplete(t *testing.T) {
	qs, relID := setupQuestionTestDB(t)
	ctx := context.Background()

	q, _ := qs.Create(ctx, relID, "one", "2024-05-01")
	if _, err := qs.SetAnswer(ctx, q.ID, model.RolePartner, "B"); err != nil {
		t.Fatalf("set partner answer: %v", err)
	}
	got, err := qs.SetAnswer(ctx, q.ID, model.RoleSelf, "")
	if err != nil {
		t.Fatalf("set empty answer: %v", err)
	}
	if got.IsAnswered {
		t.Error("empty answer must not complete the question")
	}
}
