package stats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/test"
)

func TestStatsServerServesMetrics(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stats.ListenAddr = fmt.Sprintf("127.0.0.1:%d", test.RandomPort())
	ctx := config.WithContext(context.TODO(), cfg)

	s, err := NewStatsServer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	go s.ListenAndServe() // nolint: errcheck
	defer s.Close()       // nolint: errcheck

	var res *http.Response
	url := fmt.Sprintf("http://%s/metrics", cfg.Stats.ListenAddr)
	for i := 0; i < 50; i++ {
		res, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}
