// Package otp issues and verifies one-time phone confirmation codes. Codes
// live in Redis with a TTL; a per-phone cooldown throttles resends.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CodeLength  = 6
	maxAttempts = 5
)

var (
	ErrInvalidPhone    = errors.New("phone number must be in E.164 format")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrCooldown        = errors.New("a code was sent recently, try again later")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

var (
	e164Re = regexp.MustCompile(`^\+[1-9]\d{8,14}$`)
	codeRe = regexp.MustCompile(`^\d{6}$`)
)

// ValidPhone reports whether phone is E.164 with at least ten characters.
func ValidPhone(phone string) bool { return e164Re.MatchString(phone) }

// ValidCodeFormat reports whether code is exactly six digits.
func ValidCodeFormat(code string) bool { return codeRe.MatchString(code) }

type Service struct {
	rdb      redis.Cmdable
	sender   Sender
	ttl      time.Duration
	cooldown time.Duration
	logger   *slog.Logger
	generate func() (string, error)
}

func NewService(rdb redis.Cmdable, sender Sender, ttl, cooldown time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rdb:      rdb,
		sender:   sender,
		ttl:      ttl,
		cooldown: cooldown,
		logger:   logger,
		generate: randomCode,
	}
}

func codeKey(userID, phone string) string     { return "otp:code:" + userID + ":" + phone }
func attemptsKey(userID, phone string) string { return "otp:attempts:" + userID + ":" + phone }
func cooldownKey(phone string) string         { return "otp:cooldown:" + phone }

// Request generates a code for (userID, phone), stores it and sends it by SMS.
// A failed send clears the stored code and the cooldown so the caller can retry.
func (s *Service) Request(ctx context.Context, userID, phone string) error {
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}

	ok, err := s.rdb.SetNX(ctx, cooldownKey(phone), 1, s.cooldown).Result()
	if err != nil {
		return fmt.Errorf("otp cooldown: %w", err)
	}
	if !ok {
		return ErrCooldown
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("otp generate: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, codeKey(userID, phone), code, s.ttl)
	pipe.Del(ctx, attemptsKey(userID, phone))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("otp store: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s", code)
	if err := s.sender.Send(ctx, phone, body); err != nil {
		s.rdb.Del(ctx, codeKey(userID, phone), cooldownKey(phone))
		return err
	}

	s.logger.Info("otp sent", slog.String("user_id", userID))
	return nil
}

// Verify checks code against the stored one. A matching code is consumed.
func (s *Service) Verify(ctx context.Context, userID, phone, code string) error {
	if !ValidCodeFormat(code) {
		return ErrInvalidCode
	}

	stored, err := s.rdb.Get(ctx, codeKey(userID, phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		n, err := s.rdb.Incr(ctx, attemptsKey(userID, phone)).Result()
		if err != nil {
			return fmt.Errorf("otp attempts: %w", err)
		}
		s.rdb.Expire(ctx, attemptsKey(userID, phone), s.ttl)
		if n >= maxAttempts {
			s.rdb.Del(ctx, codeKey(userID, phone), attemptsKey(userID, phone))
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}

	if err := s.rdb.Del(ctx, codeKey(userID, phone), attemptsKey(userID, phone)).Err(); err != nil {
		return fmt.Errorf("otp consume: %w", err)
	}
	return nil
}

// Ping reports whether the code store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// SenderName identifies the configured SMS transport.
func (s *Service) SenderName() string {
	return s.sender.Name()
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
