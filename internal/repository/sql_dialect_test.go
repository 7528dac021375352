package repository

import (
	"strings"
	"testing"
)

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres like operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("postgresql"); got != "ILIKE" {
		t.Fatalf("postgresql like operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite like operator want LIKE got %s", got)
	}
	if got := likeOperatorByDialect(""); got != "LIKE" {
		t.Fatalf("default like operator want LIKE got %s", got)
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}

func TestBuildLikeCondition(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"slug", "title", " ", "description"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	if !strings.Contains(condition, "slug LIKE ?") {
		t.Fatalf("condition should contain slug LIKE, got %s", condition)
	}
	if !strings.Contains(condition, "description LIKE ?") {
		t.Fatalf("condition should contain description LIKE, got %s", condition)
	}
	if strings.Count(condition, " OR ") != 2 {
		t.Fatalf("condition should join 3 columns with OR, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
