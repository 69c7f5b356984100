package congressapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
)

// Fetcher returns the raw payload of an upstream resource.
type Fetcher interface {
	Fetch(ctx context.Context, res domain.Resource) ([]byte, error)
}

// Invalidator is implemented by caching fetchers. A payload that fails to
// decode is invalidated so the next read goes upstream.
type Invalidator interface {
	Invalidate(ctx context.Context, res domain.Resource) error
}

// Reference decodes the member and ideology reference resources. It reads
// through src, normally a cache.ReadThrough wrapping a Client.
type Reference struct {
	src Fetcher
}

// NewReference creates a Reference over src.
func NewReference(src Fetcher) *Reference {
	return &Reference{src: src}
}

// Members returns every sitting member.
func (r *Reference) Members(ctx context.Context) ([]domain.Member, error) {
	var members []domain.Member
	if err := r.decode(ctx, domain.ResourceMembers, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Proportions returns the per-member policy area proportions. Numbers are
// kept as json.Number so integer-looking columns survive unchanged.
func (r *Reference) Proportions(ctx context.Context) ([]domain.ProportionRecord, error) {
	body, err := r.src.Fetch(ctx, domain.ResourceProportions)
	if err != nil {
		return nil, &domain.LoadError{Resource: domain.ResourceProportions.Key, Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var recs []domain.ProportionRecord
	if err := dec.Decode(&recs); err != nil {
		return nil, r.decodeFailed(ctx, domain.ResourceProportions, err)
	}
	return recs, nil
}

// Topics returns the ideology topic names. Upstream answers 404 when it has
// none, which is reported as an empty list.
func (r *Reference) Topics(ctx context.Context) ([]string, error) {
	topics := []string{}
	err := r.decode(ctx, domain.ResourceTopics, &topics)
	if IsNotFound(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// LabeledRows returns the labeled rows behind the ideology aggregates.
func (r *Reference) LabeledRows(ctx context.Context) ([]domain.LabeledRow, error) {
	var raw []struct {
		State string          `json:"state"`
		Label json.RawMessage `json:"assigned_label"`
	}
	if err := r.decode(ctx, domain.ResourceLabeledRows, &raw); err != nil {
		return nil, err
	}
	rows := make([]domain.LabeledRow, 0, len(raw))
	for _, rr := range raw {
		rows = append(rows, domain.LabeledRow{State: rr.State, Labels: labels(rr.Label)})
	}
	return rows, nil
}

// labels accepts either a JSON list or the single-quoted list string the
// upstream feed stores.
func labels(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return []string{}
	}
	return domain.ParseAssignedLabel(s)
}

func (r *Reference) decode(ctx context.Context, res domain.Resource, v any) error {
	body, err := r.src.Fetch(ctx, res)
	if err != nil {
		return &domain.LoadError{Resource: res.Key, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return r.decodeFailed(ctx, res, err)
	}
	return nil
}

func (r *Reference) decodeFailed(ctx context.Context, res domain.Resource, err error) error {
	if inv, ok := r.src.(Invalidator); ok {
		if invErr := inv.Invalidate(ctx, res); invErr != nil {
			err = errors.Join(err, invErr)
		}
	}
	return &domain.LoadError{Resource: res.Key, Err: fmt.Errorf("decode: %w", err)}
}
