package repository

import (
	"strings"
	"testing"
)

func TestAgeHoursExprByDialect(t *testing.T) {
	got := ageHoursExprByDialect("sqlite", "created_at")
	want := "((julianday('now') - julianday(created_at)) * 24.0)"
	if got != want {
		t.Fatalf("sqlite age expr mismatch, want %s got %s", want, got)
	}
	got = ageHoursExprByDialect("postgres", "created_at")
	want = "(EXTRACT(EPOCH FROM (NOW() - created_at)) / 3600.0)"
	if got != want {
		t.Fatalf("postgres age expr mismatch, want %s got %s", want, got)
	}
}

func TestClampedAddExpr(t *testing.T) {
	got := clampedAddExpr("exp")
	want := "CASE WHEN exp + ? < 0 THEN 0 ELSE exp + ? END"
	if got != want {
		t.Fatalf("clamped expr mismatch, want %s got %s", want, got)
	}
}

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"title", " ", "content"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "title ILIKE ? OR content ILIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
	condition, _ = buildLikeCondition(nil, []string{"name"})
	if !strings.Contains(condition, "name LIKE ?") {
		t.Fatalf("sqlite condition should use LIKE, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%abc%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for i, arg := range args {
		if arg != "%abc%" {
			t.Fatalf("arg[%d] want %%abc%% got %v", i, arg)
		}
	}
}
