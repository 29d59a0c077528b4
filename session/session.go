// Package session holds per-connection wallet state: the signer identity and
// a periodically refreshed native balance. Sessions are created on connect
// and torn down with Close; there is no process-wide singleton.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/soroban"
)

const defaultRefreshInterval = 30 * time.Second

type Session struct {
	signer soroban.Signer
	client *soroban.Client
	log    zerolog.Logger

	mu      sync.RWMutex
	balance float64

	done      chan struct{}
	closeOnce sync.Once
}

// Open starts a session for the given signer and kicks off the balance
// refresh loop. A failed initial fetch is not fatal; the account may simply
// be unfunded until the first deposit.
func Open(ctx context.Context, client *soroban.Client, signer soroban.Signer, refreshInterval time.Duration, log zerolog.Logger) *Session {
	if refreshInterval == 0 {
		refreshInterval = defaultRefreshInterval
	}
	s := &Session{
		signer: signer,
		client: client,
		log:    log.With().Str("component", "session").Str("address", signer.Address()).Logger(),
		done:   make(chan struct{}),
	}
	s.refreshBalance()
	go s.refreshLoop(refreshInterval)
	return s
}

func (s *Session) Address() string        { return s.signer.Address() }
func (s *Session) Signer() soroban.Signer { return s.signer }

// NativeBalance returns the last observed XLM balance.
func (s *Session) NativeBalance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Close stops the refresh loop. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.refreshBalance()
		}
	}
}

func (s *Session) refreshBalance() {
	account, err := s.client.AccountDetail(s.signer.Address())
	if err != nil {
		s.log.Warn().Err(err).Msg("balance refresh failed")
		return
	}
	native, err := account.GetNativeBalance()
	if err != nil {
		s.log.Warn().Err(err).Msg("no native balance on account")
		return
	}
	balance, err := strconv.ParseFloat(native, 64)
	if err != nil {
		s.log.Warn().Err(err).Str("balance", native).Msg("unparseable native balance")
		return
	}

	s.mu.Lock()
	s.balance = balance
	s.mu.Unlock()
}
