package health

import (
	"context"
	"errors"
	"testing"

	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubInfo struct {
	ids []string
	err error
}

func (s *stubInfo) Info(ctx context.Context, _ ...string) *redis.StringCmd {
	if s.err != nil {
		return redis.NewStringResult("", s.err)
	}
	id := s.ids[0]
	if len(s.ids) > 1 {
		s.ids = s.ids[1:]
	}
	return redis.NewStringResult("# Server\r\nredis_version:7.2.0\r\nrun_id:"+id+"\r\ntcp_port:6379\r\n", nil)
}

func TestParseRunID(t *testing.T) {
	id, err := parseRunID("redis_version:7.2.0\r\nrun_id:4f1ab2c3\r\n")
	if err != nil || id != "4f1ab2c3" {
		t.Fatalf("parseRunID = %q, %v", id, err)
	}
	if _, err := parseRunID("redis_version:7.2.0\r\n"); err == nil {
		t.Fatal("missing run_id must fail")
	}
}

func TestPerformCheck(t *testing.T) {
	ctx := context.Background()
	rebuilds := 0
	rebuild := func(context.Context) error { rebuilds++; return nil }

	stub := &stubInfo{ids: []string{"aaa"}}
	c := NewChecker(stub, rebuild, logger.Nop(), 0)
	if err := c.InitializeRunID(ctx); err != nil {
		t.Fatal(err)
	}

	c.PerformCheck(ctx)
	if !database.IsRedisHealthy() || rebuilds != 0 {
		t.Fatalf("same run id: healthy=%v rebuilds=%d", database.IsRedisHealthy(), rebuilds)
	}

	stub.err = errors.New("connection refused")
	c.PerformCheck(ctx)
	if database.IsRedisHealthy() {
		t.Fatal("unreachable redis must be marked unhealthy")
	}

	// restarted instance: rebuild, then trust it again
	stub.err = nil
	stub.ids = []string{"bbb"}
	c.PerformCheck(ctx)
	if !database.IsRedisHealthy() || rebuilds != 1 || database.GetLastKnownRunID() != "bbb" {
		t.Fatalf("after restart: healthy=%v rebuilds=%d run_id=%s", database.IsRedisHealthy(), rebuilds, database.GetLastKnownRunID())
	}

	// restarted again during the rebuild: stay unhealthy
	stub.ids = []string{"ccc", "ddd"}
	c.PerformCheck(ctx)
	if database.IsRedisHealthy() {
		t.Fatal("a rebuild racing a restart must not be trusted")
	}
	if database.GetLastKnownRunID() != "bbb" {
		t.Fatalf("run id moved while unhealthy: %s", database.GetLastKnownRunID())
	}
}

func TestHealthFlipsAreLogged(t *testing.T) {
	ctx := context.Background()
	database.UpdateStatus(true, "aaa")
	t.Cleanup(func() { database.OnStatusChange(nil) })

	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	stub := &stubInfo{ids: []string{"aaa"}}
	c := NewChecker(stub, func(context.Context) error { return nil }, log, 0)
	if err := c.InitializeRunID(ctx); err != nil {
		t.Fatal(err)
	}

	c.PerformCheck(ctx)
	if n := logs.FilterMessageSnippet("redis health changed").Len(); n != 0 {
		t.Fatalf("steady state logged %d flips", n)
	}

	stub.err = errors.New("connection refused")
	c.PerformCheck(ctx)
	c.PerformCheck(ctx)
	flips := logs.FilterMessageSnippet("redis health changed").All()
	if len(flips) != 1 || flips[0].ContextMap()["healthy"] != false {
		t.Fatalf("flips after outage = %+v", flips)
	}

	stub.err = nil
	c.PerformCheck(ctx)
	flips = logs.FilterMessageSnippet("redis health changed").All()
	if len(flips) != 2 || flips[1].ContextMap()["healthy"] != true {
		t.Fatalf("flips after recovery = %+v", flips)
	}
}
