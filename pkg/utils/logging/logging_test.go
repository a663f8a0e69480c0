package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

type credential struct {
	User     string
	Password string `masq:"secret"`
}

func TestNew_JSONRedactsSecret(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	logger.Info("login", "cred", credential{User: "alice", Password: "hunter2"})

	out := buf.String()
	gt.B(t, strings.Contains(out, "alice")).True()
	gt.B(t, strings.Contains(out, "hunter2")).False()
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON)

	logger.Info("ignored")
	gt.Number(t, buf.Len()).Equal(0)

	logger.Warn("kept")
	gt.B(t, strings.Contains(buf.String(), "kept")).True()
}

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	logging.SetDefault(logging.New(&buf, slog.LevelInfo, logging.FormatJSON))
	logging.From(context.Background()).Info("from default")
	gt.B(t, strings.Contains(buf.String(), "from default")).True()

	var ctxBuf bytes.Buffer
	ctx := logging.With(context.Background(), logging.New(&ctxBuf, slog.LevelInfo, logging.FormatJSON))
	logging.From(ctx).Info("from context")
	gt.B(t, strings.Contains(ctxBuf.String(), "from context")).True()
	gt.B(t, strings.Contains(buf.String(), "from context")).False()
}
