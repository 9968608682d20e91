package jsonrepair

import (
	"strings"
	"testing"
)

func TestExtract_CleanObject(t *testing.T) {
	obj := Extract(`{"category": "running shoes", "is_ymyl": false}`)
	if obj["category"] != "running shoes" {
		t.Errorf("category = %v, want %q", obj["category"], "running shoes")
	}
	if obj["is_ymyl"] != false {
		t.Errorf("is_ymyl = %v, want false", obj["is_ymyl"])
	}
}

func TestExtract_FencedWithCommentary(t *testing.T) {
	raw := "Sure, here is the analysis you asked for:\n```json\n{\"category\": \"electronics\"}\n```\nLet me know if you need anything else."
	obj := Extract(raw)
	if obj["category"] != "electronics" {
		t.Errorf("category = %v, want %q", obj["category"], "electronics")
	}
}

func TestExtract_TrailingCommasAndComments(t *testing.T) {
	raw := `{
		// primary classification
		"category": "books",
		"queries": ["best bookstore", "buy novels online",],
	}`
	obj := Extract(raw)
	if obj["category"] != "books" {
		t.Errorf("category = %v, want %q", obj["category"], "books")
	}
	queries, ok := obj["queries"].([]any)
	if !ok || len(queries) != 2 {
		t.Errorf("queries = %v, want 2 items", obj["queries"])
	}
}

func TestExtract_PythonLiterals(t *testing.T) {
	raw := `{"is_ymyl": True, "subcategory": None}`
	obj := Extract(raw)
	if obj["is_ymyl"] != true {
		t.Errorf("is_ymyl = %v, want true", obj["is_ymyl"])
	}
	if v, present := obj["subcategory"]; !present || v != nil {
		t.Errorf("subcategory = %v, want null", v)
	}
}

func TestExtract_SingleQuotedAndUnquotedKeys(t *testing.T) {
	raw := `{category: 'garden tools', market: 'Spain'}`
	obj := Extract(raw)
	if obj["category"] != "garden tools" {
		t.Errorf("category = %v, want %q", obj["category"], "garden tools")
	}
	if obj["market"] != "Spain" {
		t.Errorf("market = %v, want %q", obj["market"], "Spain")
	}
}

func TestExtract_ArrayBeforeObject(t *testing.T) {
	raw := `[{"query": "a"}, {"query": "b"}] and also {"ignored": true}`
	obj := Extract(raw)
	items, ok := obj["items"].([]any)
	if !ok {
		t.Fatalf("expected items array, got %v", obj)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	raw := `{"description": "use {placeholder} syntax", "ok": true}`
	obj := Extract(raw)
	if obj["description"] != "use {placeholder} syntax" {
		t.Errorf("description = %v", obj["description"])
	}
}

func TestExtract_Unparseable(t *testing.T) {
	raw := "I could not produce any structured output, sorry."
	obj := Extract(raw)
	if obj[DefaultKey] != raw {
		t.Errorf("fallback = %v, want raw text under %q", obj, DefaultKey)
	}
}

func TestExtract_Empty(t *testing.T) {
	obj := Extract("")
	if v, present := obj[DefaultKey]; !present || v != "" {
		t.Errorf("Extract(\"\") = %v, want {%q: \"\"}", obj, DefaultKey)
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"{",
		"}{",
		"[[[",
		"```json```",
		`{"a": "\"}`,
		strings.Repeat(`{"k":`, 100),
	}
	for _, in := range inputs {
		obj := Extract(in)
		if obj == nil {
			t.Errorf("Extract(%q) returned nil", in)
		}
	}
}
