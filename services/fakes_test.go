package services

import (
	"context"
	"errors"
	"lifeline/models"
	"sync"
)

type fakeSMSSender struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per number, -1 fails forever
	sent     map[string][]string
	calls    int
}

func newFakeSMSSender() *fakeSMSSender {
	return &fakeSMSSender{
		failures: make(map[string]int),
		sent:     make(map[string][]string),
	}
}

func (f *fakeSMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if n, ok := f.failures[to]; ok && n != 0 {
		if n > 0 {
			f.failures[to] = n - 1
		}
		return "", errors.New("gateway rejected message")
	}
	f.sent[to] = append(f.sent[to], body)
	return "SM" + to, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.CaseEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.CaseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []models.CaseEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.CaseEvent(nil), p.events...)
}

type recordingSink struct {
	ch chan models.CaseEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan models.CaseEvent, 16)}
}

func (s *recordingSink) DeliverCaseEvent(event models.CaseEvent) {
	s.ch <- event
}

type stubGeocoder struct {
	mu      sync.Mutex
	address string
	err     error
	calls   int
}

func (g *stubGeocoder) ResolveAddress(ctx context.Context, lat, long float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.address == "" {
		return models.FallbackLocation(lat, long), nil
	}
	return g.address, nil
}

func (g *stubGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
