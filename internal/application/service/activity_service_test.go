package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		rng      string
		expected time.Time
	}{
		{"7d", now.AddDate(0, 0, -7)},
		{"30d", now.AddDate(0, 0, -30)},
		{"24h", now.Add(-24 * time.Hour)},
		{"", now.AddDate(0, 0, -7)}, // default window
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			since, err := ParseRange(tt.rng, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, since)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	now := time.Now()
	for _, rng := range []string{"d", "-7d", "0d", "7w", "week", "7"} {
		_, err := ParseRange(rng, now)
		assert.ErrorIs(t, err, entity.ErrValidation, "range %q", rng)
	}
}

func TestActivityService_SummarizeFoldsCategories(t *testing.T) {
	auditRepo := &memAuditRepo{}
	svc := NewActivityService(auditRepo, &mockLogger{})
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, 1, entity.ActionCreate, "attendance_record", 1, ""))
	require.NoError(t, svc.Append(ctx, 1, entity.ActionCreate, "payroll_record", 2, ""))
	require.NoError(t, svc.Append(ctx, 2, entity.ActionUpdate, "payroll_record", 2, ""))
	require.NoError(t, svc.Append(ctx, 3, entity.ActionOTP, "user", 3, ""))
	require.NoError(t, svc.Append(ctx, 3, entity.AuditAction("login"), "session", 4, ""))

	summary, err := svc.Summarize(ctx, "7d")
	require.NoError(t, err)

	assert.Equal(t, 2, summary[entity.ActionCreate])
	assert.Equal(t, 1, summary[entity.ActionUpdate])
	assert.Equal(t, 1, summary[entity.ActionOTP])
	assert.Equal(t, 0, summary[entity.ActionDelete])
	assert.Equal(t, 1, summary[entity.ActionOther])
}

func TestActivityService_SummarizeAlwaysReturnsAllCategories(t *testing.T) {
	svc := NewActivityService(&memAuditRepo{}, &mockLogger{})

	summary, err := svc.Summarize(context.Background(), "7d")
	require.NoError(t, err)

	assert.Len(t, summary, 5)
	for _, action := range []entity.AuditAction{entity.ActionCreate, entity.ActionOTP, entity.ActionUpdate, entity.ActionDelete, entity.ActionOther} {
		assert.Contains(t, summary, action)
	}
}

func TestActivityService_ListMostRecentFirst(t *testing.T) {
	auditRepo := &memAuditRepo{}
	svc := NewActivityService(auditRepo, &mockLogger{})
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, 1, entity.ActionCreate, "attendance_record", 1, "first"))
	require.NoError(t, svc.Append(ctx, 1, entity.ActionUpdate, "attendance_record", 1, "second"))

	events, err := svc.List(ctx, "7d", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "second", events[0].Details)
	assert.Equal(t, "first", events[1].Details)
}

func TestActivityService_ListClampsLimit(t *testing.T) {
	auditRepo := &memAuditRepo{}
	svc := NewActivityService(auditRepo, &mockLogger{})

	_, err := svc.List(context.Background(), "7d", -1)
	require.NoError(t, err)
}
