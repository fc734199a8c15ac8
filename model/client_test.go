package model

import (
	"context"
	"strings"
	"testing"
)

func TestFuncAdapter(t *testing.T) {
	var client Client = Func(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})

	out, err := client.Invoke(context.Background(), "hi")
	if err != nil || out != "echo: hi" {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestSetValidate(t *testing.T) {
	mock := &Mock{}

	cases := []struct {
		name    string
		set     Set
		missing string
	}{
		{"complete", Set{Generative: mock, Review: mock, Summary: mock}, ""},
		{"no generative", Set{Review: mock, Summary: mock}, "generative"},
		{"no review", Set{Generative: mock, Summary: mock}, "review"},
		{"no summary", Set{Generative: mock, Review: mock}, "summary"},
		{"empty", Set{}, "generative"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.set.Validate()
			if c.missing == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), c.missing) {
				t.Fatalf("err = %v, want mention of %q", err, c.missing)
			}
		})
	}
}

func TestSetForRole(t *testing.T) {
	gen, rev, sum := &Mock{}, &Mock{}, &Mock{}
	set := Set{Generative: gen, Review: rev, Summary: sum}

	if set.ForRole(RoleGenerative) != gen || set.ForRole(RoleReview) != rev || set.ForRole(RoleSummary) != sum {
		t.Error("ForRole returned the wrong client")
	}
	if set.ForRole(Role("other")) != nil {
		t.Error("unknown role must return nil")
	}
}
