package trainer

import (
	"strings"
	"testing"
)

func TestCorpusReaderSplitsOnEOS(t *testing.T) {
	data := "猫\tNOUN,*,*,*\nである\tAUX,*,*,*\nEOS\nは\tPART,*,*,*\nEOS\n"
	r := NewCorpusReader(strings.NewReader(data), false)

	sentences, err := r.ReadSentences()
	if err != nil {
		t.Fatalf("ReadSentences: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(sentences))
	}
	if len(sentences[0].Tokens) != 2 || sentences[0].Tokens[0].Surface != "猫" {
		t.Fatalf("sentence 0: %+v", sentences[0])
	}
	if len(sentences[1].Tokens) != 1 || sentences[1].Tokens[0].Surface != "は" {
		t.Fatalf("sentence 1: %+v", sentences[1])
	}
}

func TestCorpusReaderNormalizesCRLF(t *testing.T) {
	data := "a\tNOUN,*,*,*\r\nEOS\r\n"
	r := NewCorpusReader(strings.NewReader(data), false)

	sentences, err := r.ReadSentences()
	if err != nil {
		t.Fatalf("ReadSentences: %v", err)
	}
	if len(sentences) != 1 || sentences[0].Tokens[0].Surface != "a" {
		t.Fatalf("sentences: %+v", sentences)
	}
}

func TestCorpusReaderFlushesUnterminatedTrailingSentence(t *testing.T) {
	data := "a\tNOUN,*,*,*"
	r := NewCorpusReader(strings.NewReader(data), false)

	sentences, err := r.ReadSentences()
	if err != nil {
		t.Fatalf("ReadSentences: %v", err)
	}
	if len(sentences) != 1 || len(sentences[0].Tokens) != 1 {
		t.Fatalf("sentences: %+v", sentences)
	}
}

func TestCorpusReaderRejectsMissingTab(t *testing.T) {
	data := "no-tab-here\nEOS\n"
	r := NewCorpusReader(strings.NewReader(data), false)

	if _, err := r.ReadSentences(); err == nil {
		t.Fatal("expected InvalidPosLine error, got nil")
	}
}

func TestPosPrefixExtractsLeadingColumns(t *testing.T) {
	got := posPrefix("NOUN,GENERAL,*,*,extra", 2)
	if got != "NOUN,GENERAL" {
		t.Fatalf("got %q, want %q", got, "NOUN,GENERAL")
	}
}
