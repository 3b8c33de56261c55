package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderCarriesContext(t *testing.T) {
	ee := Newf("cannot decode %s", "take.wav").
		Component("decode").
		Category(CategoryDecode).
		Context("operation", "decode_wav").
		AudioContext("audio/wav", 16000, 128).
		Build()

	assert.Equal(t, "decode", ee.GetComponent())
	assert.Equal(t, CategoryDecode, ee.Category)

	ctx := ee.GetContext()
	assert.Equal(t, "decode_wav", ctx["operation"])
	assert.Equal(t, "audio/wav", ctx["mime_hint"])
	assert.Equal(t, 16000, ctx["sample_rate"])

	// the returned map is a copy
	ctx["operation"] = "mutated"
	assert.Equal(t, "decode_wav", ee.GetContext()["operation"])
}

func TestIsMatchesByCategory(t *testing.T) {
	sentinel := New(NewStd("nothing selected")).Category(CategoryEmptySelection).Build()
	wrapped := fmt.Errorf("export: %w", New(NewStd("0 of 4 events selected")).
		Category(CategoryEmptySelection).
		Build())

	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, IsCategory(wrapped, CategoryEmptySelection))
	assert.Equal(t, CategoryEmptySelection, CategoryOf(wrapped))

	other := New(NewStd("bad bytes")).Category(CategoryDecode).Build()
	assert.False(t, Is(other, sentinel))
	assert.Equal(t, CategoryGeneric, CategoryOf(fmt.Errorf("plain")))
}

func TestNilWrappedErrorMessage(t *testing.T) {
	ee := New(nil).Category(CategoryCaptureUnavailable).Build()
	assert.Equal(t, string(CategoryCaptureUnavailable), ee.Error())
}

func TestPriorityFallback(t *testing.T) {
	assert.Equal(t, PriorityHigh, New(NewStd("x")).Priority(PriorityHigh).Build().GetPriority())
	assert.Equal(t, PriorityMedium, New(NewStd("x")).Priority("urgent").Build().GetPriority())
	assert.Empty(t, New(NewStd("x")).Build().GetPriority())
}

func TestErrorHooksEnableDetection(t *testing.T) {
	var seen []*EnhancedError
	AddErrorHook(func(ee *EnhancedError) { seen = append(seen, ee) })
	t.Cleanup(ClearErrorHooks)

	ee := New(NewStd("unsupported audio format: video/mp4")).Build()

	require.Len(t, seen, 1)
	assert.Same(t, ee, seen[0])
	assert.Equal(t, CategoryUnsupportedFormat, ee.Category)
}

func TestDetectCategoryHeuristics(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		component string
		want      ErrorCategory
	}{
		{"unsupported format", NewStd("unsupported container format"), "", CategoryUnsupportedFormat},
		{"decode", NewStd("failed to decode flac frame"), "", CategoryDecode},
		{"device", NewStd("no capture device found"), "", CategoryCaptureUnavailable},
		{"component fallback", NewStd("boom"), "export", CategoryExport},
		{"nil", nil, "", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(tt.err, tt.component))
		})
	}
}

func TestLookupComponentPrefersLongestPattern(t *testing.T) {
	got := lookupComponent("github.com/tphakala/keyclip/internal/audiocore/decode.(*Decoder).Decode")
	assert.Equal(t, "decode", got)
}

func TestBasicPathScrub(t *testing.T) {
	msg := "open /home/alice/takes/take.wav failed, see https://example.com/x?token=abc"
	scrubbed := basicPathScrub(msg)

	assert.NotContains(t, scrubbed, "alice")
	assert.NotContains(t, scrubbed, "token=abc")
	assert.True(t, strings.Contains(scrubbed, "/home/[USER]"))
}

func TestGenerateErrorTitle(t *testing.T) {
	ee := New(NewStd("x")).
		Component("capture").
		Category(CategoryCaptureUnavailable).
		Context("operation", "init_device").
		Build()

	assert.Equal(t, "Capture Capture Unavailable Init Device", generateErrorTitle(ee))
}
