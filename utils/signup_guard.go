package utils

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
)

// Per-IP signup throttling backed by Redis. Every check fails open so a
// Redis outage never blocks account creation.

func signupKey(parts ...string) string {
	return "signup:" + strings.Join(parts, ":")
}

// SignupCooldownTry enforces a short cooldown between attempts per IP.
func SignupCooldownTry(ip string) bool {
	sec := config.Get().SignupAttemptCooldownSec
	if sec <= 0 {
		return true
	}
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	ok, err := cli.SetNX(ctx, signupKey("cooldown", ip), "1", time.Duration(sec)*time.Second).Result()
	if err != nil {
		return true
	}
	return ok
}

// SignupDailyLimitCheck allows up to N successful signups per day per IP.
func SignupDailyLimitCheck(ip string) bool {
	limit := config.Get().SignupMaxPerIPPerDay
	if limit <= 0 {
		return true
	}
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := signupKey("succday", ip, time.Now().Format("20060102"))
	n, err := cli.Get(ctx, key).Int()
	if err == redis.Nil {
		n = 0
	} else if err != nil {
		return true
	}
	return n < limit
}

// SignupDailyIncrement increments the success counter for today.
func SignupDailyIncrement(ip string) {
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := signupKey("succday", ip, time.Now().Format("20060102"))
	if err := cli.Incr(ctx, key).Err(); err == nil {
		ttl := time.Until(time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour))
		_ = cli.Expire(ctx, key, ttl).Err()
	}
}

// SignupFailRecord increments the failure count per hour; returns the current count.
func SignupFailRecord(ip string) int {
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := signupKey("failhour", ip, time.Now().Format("2006010215"))
	n, err := cli.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	_ = cli.Expire(ctx, key, time.Hour).Err()
	return int(n)
}

// SignupIsBanned checks temporary ban status for an IP.
func SignupIsBanned(ip string) bool {
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	exists, err := cli.Exists(ctx, signupKey("ban", ip)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// SignupBan sets a temporary ban for an IP.
func SignupBan(ip string) {
	minutes := config.Get().SignupTempBanMinutes
	if minutes <= 0 {
		minutes = 60
	}
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = cli.Set(ctx, signupKey("ban", ip), "1", time.Duration(minutes)*time.Minute).Err()
}
