package analytics

import (
	"reflect"
	"testing"
)

func TestWordFrequencyFiltersStopwords(t *testing.T) {
	a := &Analytics{}
	freq := a.WordFrequency("The best running shoes for the best runners. Las mejores zapatillas para correr.")

	if _, ok := freq["the"]; ok {
		t.Error("English stopword survived filtering")
	}
	if _, ok := freq["las"]; ok {
		t.Error("Spanish stopword survived filtering")
	}
	if freq["best"] != 2 {
		t.Errorf("freq[best] = %d, want 2", freq["best"])
	}
	if freq["zapatillas"] != 1 {
		t.Errorf("freq[zapatillas] = %d, want 1", freq["zapatillas"])
	}
}

func TestWordFrequencyKeepsAccentedWords(t *testing.T) {
	a := &Analytics{}
	freq := a.WordFrequency("envío rápido, ¡envío garantizado!")
	if freq["envío"] != 2 {
		t.Errorf("freq[envío] = %d, want 2 (punctuation trimmed, accents kept)", freq["envío"])
	}
}

func TestTopNWordsStableOrder(t *testing.T) {
	a := &Analytics{}
	text := "zebra apple zebra apple banana"
	got := a.TopNWords(text, 3)
	want := []string{"apple", "zebra", "banana"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopNWords = %v, want %v (count desc, then alphabetical)", got, want)
	}
}

func TestTopNWordsShortText(t *testing.T) {
	a := &Analytics{}
	got := a.TopNWords("running shoes", 10)
	if len(got) != 2 {
		t.Errorf("TopNWords = %v, want 2 entries", got)
	}
}

func TestIsStopword(t *testing.T) {
	for word, want := range map[string]bool{"The": true, "para": true, "zapatillas": false, "checkout": true} {
		if IsStopword(word) != want {
			t.Errorf("IsStopword(%q) = %v, want %v", word, !want, want)
		}
	}
}
