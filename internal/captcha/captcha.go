// Package captcha issues short-lived image challenges for the registration
// and login endpoints and verifies submitted answers with one-time-use
// semantics.
package captcha

import (
	"errors"
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"

	"appupdate-service/pkg/utilities"
)

// ErrMismatch is returned when the submitted code does not match the stored
// answer. The entry is consumed either way.
var ErrMismatch = errors.New("captcha code incorrect")

const (
	answerLength = 4
	imageWidth   = 130
	imageHeight  = 40
)

// characters the renderer draws from; visually ambiguous glyphs excluded.
const answerSource = base64Captcha.TxtSimpleCharaters

// Service renders captcha images and tracks their answers in a Store.
type Service struct {
	store  *Store
	driver *base64Captcha.DriverString
}

// NewService wires a Service around the given store.
func NewService(store *Store) *Service {
	driver := base64Captcha.NewDriverString(
		imageHeight, imageWidth,
		0, base64Captcha.OptionShowHollowLine,
		answerLength, answerSource,
		nil, nil, nil,
	)
	return &Service{store: store, driver: driver}
}

// Issue generates a random answer, renders it as a PNG data URI and stores
// the answer under a fresh id with the store's TTL.
func (s *Service) Issue() (id, image string, err error) {
	_, content, answer := s.driver.GenerateIdQuestionAnswer()
	item, err := s.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", err
	}
	id = utilities.NewKSUID()
	s.store.Put(id, answer)
	return id, item.EncodeB64string(), nil
}

// Validate consumes the entry for id and compares the submitted code,
// trimmed and case-insensitive. Whatever the outcome, the entry is gone
// afterwards.
func (s *Service) Validate(id, code string) error {
	answer, err := s.store.Take(id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(code)) {
		return ErrMismatch
	}
	return nil
}

// TTL exposes the store's entry lifetime, mainly for logging at startup.
func (s *Service) TTL() time.Duration { return s.store.ttl }
