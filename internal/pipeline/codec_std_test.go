//go:build !govips || !cgo

package pipeline

import (
	"context"
	"testing"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdlibCodecSelected(t *testing.T) {
	assert.Equal(t, "stdlib", CodecName())
}

func TestStdlibExportWebPIsEncodeError(t *testing.T) {
	processor := newTestProcessor(t)
	surface := renderTestSurface(t, processor)

	download, err := processor.Export(context.Background(), surface, domain.ExportSettings{Format: domain.FormatWebP, Quality: 80})
	require.ErrorIs(t, err, domain.ErrEncode)
	assert.Empty(t, download.Data)
}
