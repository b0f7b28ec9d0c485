package census

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wardcore/internal/blob"
)

// Publisher writes rendered census reports to a blob store, one JSON and
// one text object per report, keyed by capture timestamp.
type Publisher struct {
	store  blob.Store
	prefix string
}

// NewPublisher constructs a publisher writing under prefix (default
// "census").
func NewPublisher(store blob.Store, prefix string) *Publisher {
	if prefix == "" {
		prefix = "census"
	}
	return &Publisher{store: store, prefix: strings.TrimSuffix(prefix, "/")}
}

// Publish stores the report and returns the keys written.
func (p *Publisher) Publish(ctx context.Context, report Report) ([]string, error) {
	stamp := report.TakenAt.UTC().Format("20060102T150405Z")

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	jsonKey := fmt.Sprintf("%s/%s.json", p.prefix, stamp)
	if _, err := p.store.Put(ctx, jsonKey, strings.NewReader(string(payload)), blob.PutOptions{
		ContentType: "application/json",
	}); err != nil {
		return nil, fmt.Errorf("publish %s: %w", jsonKey, err)
	}

	textKey := fmt.Sprintf("%s/%s.txt", p.prefix, stamp)
	if _, err := p.store.Put(ctx, textKey, strings.NewReader(report.Render()), blob.PutOptions{
		ContentType: "text/plain; charset=utf-8",
	}); err != nil {
		return nil, fmt.Errorf("publish %s: %w", textKey, err)
	}
	return []string{jsonKey, textKey}, nil
}
