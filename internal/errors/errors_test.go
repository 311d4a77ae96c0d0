package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	reported []*EnhancedError
}

func (f *fakeReporter) ReportError(ee *EnhancedError) { f.reported = append(f.reported, ee) }
func (f *fakeReporter) IsEnabled() bool               { return true }

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderSetsFields(t *testing.T) {
	t.Parallel()

	ee := Newf("fetch %s failed", "codes").
		Component("cms").
		Category(CategoryNetwork).
		Context("status", 502).
		Build()

	assert.Equal(t, "fetch codes failed", ee.Error())
	assert.Equal(t, "cms", ee.GetComponent())
	assert.Equal(t, "network", ee.GetCategory())
	assert.Equal(t, 502, ee.GetContext()["status"])
	assert.False(t, ee.GetTimestamp().IsZero())
}

func TestCategoryDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"canceled", context.Canceled, CategoryCancellation},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"dial", fmt.Errorf("dial tcp 10.0.0.1:443: connection refused"), CategoryNetwork},
		{"wrapped enhanced", fmt.Errorf("outer: %w", New(NewStd("x")).Category(CategoryNotFound).Build()), CategoryNotFound},
		{"plain", NewStd("something odd"), CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.err).Build().Category)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	err := NotFound("cms", "snippet", "missing-slug")
	wrapped := fmt.Errorf("page: %w", err)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(NewStd("nope")))
	assert.Equal(t, CategoryNotFound, CategoryOf(wrapped))
	assert.Equal(t, CategoryGeneric, CategoryOf(NewStd("nope")))
	assert.Contains(t, err.Error(), `snippet "missing-slug" not found`)
}

func TestEnhancedErrorIsMatchesCategory(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("boom")
	a := New(sentinel).Category(CategoryHTTP).Build()
	b := New(NewStd("other")).Category(CategoryHTTP).Build()

	assert.True(t, Is(a, b))
	assert.True(t, Is(a, sentinel))
}

func TestTelemetryReporterReceivesErrors(t *testing.T) {
	reporter := &fakeReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("upstream 502")).Category(CategoryNetwork).Build()

	require.Len(t, reporter.reported, 1)
	assert.Same(t, ee, reporter.reported[0])
}

func TestBasicURLScrub(t *testing.T) {
	t.Parallel()

	got := basicURLScrub("GET https://code.amsot.net/wp-json/wp/v2/codes?search=secret failed, token=abc123")
	assert.Equal(t, "GET https://code.amsot.net/wp-json/wp/v2/codes?[REDACTED] failed, [API_KEY_REDACTED]", got)
}
