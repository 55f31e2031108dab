package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithRunIDAndStage(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithStage(ctx, "searchResources")

	lc := GetContext(ctx)
	require.Equal(t, "run-1", lc.RunID)
	require.Equal(t, "searchResources", lc.Stage)
}

func TestGetContext_EmptyWithoutValues(t *testing.T) {
	lc := GetContext(context.Background())
	require.Empty(t, lc.RunID)
	require.Empty(t, lc.Stage)
}

func TestInfoContext_EmitsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := WithStage(WithRunID(context.Background(), "run-42"), "assemblePptData")
	InfoContext(ctx, "stage completed", slog.String("extra", "value"))

	out := buf.String()
	require.Contains(t, out, "run-42")
	require.Contains(t, out, "assemblePptData")
	require.Contains(t, out, "stage completed")
	require.Contains(t, out, "extra=value")
}
