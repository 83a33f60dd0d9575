//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package syncengine_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/quickcopy/internal/detector"
	"github.com/joe/quickcopy/internal/syncengine"
)

func TestTargetLocker(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	locker, err := syncengine.NewTargetLocker(t.TempDir())
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(locker.Path("/a")).To(Equal(locker.Path("/a")))
	g.Expect(locker.Path("/a")).ToNot(Equal(locker.Path("/b")))

	unlock, err := locker.Lock("/a")
	g.Expect(err).ShouldNot(HaveOccurred())

	_, err = locker.Lock("/a")
	g.Expect(errors.Is(err, syncengine.ErrTargetLocked)).To(BeTrue())

	unlock()

	again, err := locker.Lock("/a")
	g.Expect(err).ShouldNot(HaveOccurred())
	again()
}

func TestLogEmitter_TracesEventsAtDebug(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var buf bytes.Buffer

	emitter := syncengine.LogEmitter{
		Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	emitter.Emit(syncengine.ScanComplete{Side: detector.SourceSide, Root: "/src", Count: 3})
	emitter.Emit(syncengine.PlanReady{Target: "/dst", Creates: 2})
	emitter.Emit(syncengine.TargetFailed{Target: "/dst", Err: errors.New("boom")})

	out := buf.String()
	g.Expect(out).To(ContainSubstring(`"type":"scan_complete"`))
	g.Expect(out).To(ContainSubstring(`"count":3`))
	g.Expect(out).To(ContainSubstring(`"type":"plan_ready"`))
	g.Expect(out).To(ContainSubstring(`"error":"boom"`))

	var quiet bytes.Buffer

	syncengine.LogEmitter{Logger: slog.New(slog.NewJSONHandler(&quiet, nil))}.
		Emit(syncengine.PlanReady{Target: "/dst"})
	g.Expect(quiet.String()).To(BeEmpty())
}

func TestEmitters_FanOut(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	first, second := &testEventEmitter{}, &testEventEmitter{}
	syncengine.Emitters{first, nil, second}.Emit(syncengine.CycleStarted{RunID: "r"})

	g.Expect(first.types()).To(Equal([]string{"syncengine.CycleStarted"}))
	g.Expect(second.types()).To(Equal([]string{"syncengine.CycleStarted"}))
}

func TestManualClock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := syncengine.NewManualClock(mtime)
	ticker := clock.NewTicker(time.Minute)

	clock.Tick(time.Minute)
	clock.Tick(time.Minute)
	g.Expect(clock.Now()).To(Equal(mtime.Add(2 * time.Minute)))

	// The second tick is dropped while the first is pending.
	g.Expect(<-ticker.C()).To(Equal(mtime.Add(time.Minute)))
	g.Consistently(ticker.C(), 20*time.Millisecond).ShouldNot(Receive())

	ticker.Stop()
	clock.Tick(time.Minute)
	g.Consistently(ticker.C(), 20*time.Millisecond).ShouldNot(Receive())
}
