package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextVersion(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "nil context", ctx: nil, want: UnknownValue},
		{name: "empty version", ctx: NewContext("", "2026-01-01"), want: UnknownValue},
		{name: "valid version", ctx: NewContext("1.0.0", "2026-01-01"), want: "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.GetVersion())
		})
	}
}

func TestContextBuildDate(t *testing.T) {
	var nilCtx *Context
	assert.Equal(t, UnknownValue, nilCtx.GetBuildDate())
	assert.Equal(t, UnknownValue, NewContext("1.0.0", "").GetBuildDate())
	assert.Equal(t, "2026-01-01", NewContext("1.0.0", "2026-01-01").GetBuildDate())
}

func TestContextFormatting(t *testing.T) {
	ctx := NewContext("1.2.3", "2026-10-01")
	assert.Equal(t, "keyclip@1.2.3", ctx.Release())
	assert.Equal(t, "keyclip 1.2.3 (built 2026-10-01)", ctx.String())

	var nilCtx *Context
	assert.Equal(t, "keyclip@unknown", nilCtx.Release())
}

func TestContextImplementsBuildInfo(t *testing.T) {
	var info BuildInfo = NewContext("1.0.0", "2026-01-01")
	assert.Equal(t, "1.0.0", info.GetVersion())
}
