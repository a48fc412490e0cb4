package captcha

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssue_RendersAndStores(t *testing.T) {
	s := NewService(NewStore(time.Minute, 100))

	id, image, err := s.Issue()
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if id == "" {
		t.Fatal("empty captcha id")
	}
	if !strings.HasPrefix(image, "data:image/png;base64,") {
		t.Fatalf("image is not a PNG data URI: %.40q", image)
	}

	answer, err := s.store.Take(id)
	if err != nil {
		t.Fatalf("answer not stored: %v", err)
	}
	if len(answer) != answerLength {
		t.Fatalf("answer length %d, want %d", len(answer), answerLength)
	}
}

func TestValidate_CaseInsensitiveTrimmed(t *testing.T) {
	s := NewService(NewStore(time.Minute, 100))
	s.store.Put("id-1", "AbCd")

	if err := s.Validate("id-1", "  abcd "); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}

func TestValidate_ConsumesEntryOnMismatch(t *testing.T) {
	s := NewService(NewStore(time.Minute, 100))
	s.store.Put("id-1", "abcd")

	if err := s.Validate("id-1", "wrong"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("want ErrMismatch, got %v", err)
	}
	// entry gone even though the first attempt failed
	if err := s.Validate("id-1", "abcd"); !errors.Is(err, ErrExpiredOrMissing) {
		t.Fatalf("want ErrExpiredOrMissing, got %v", err)
	}
}

func TestValidate_ConsumesEntryOnMatch(t *testing.T) {
	s := NewService(NewStore(time.Minute, 100))
	s.store.Put("id-1", "abcd")

	if err := s.Validate("id-1", "abcd"); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if err := s.Validate("id-1", "abcd"); !errors.Is(err, ErrExpiredOrMissing) {
		t.Fatalf("replayed captcha must fail, got %v", err)
	}
}
