package loader

import (
	"os"
	"testing"
	"time"

	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

// startWorker runs a worker over fresh channels and returns them. The
// worker goroutine exits when requests is closed.
func startWorker(t *testing.T, opts Options) (chan<- Request, <-chan Signal) {
	t.Helper()
	requests := make(chan Request, 1)
	signals := make(chan Signal, 1)
	w := NewWorker(opts, requests, signals)
	go w.Run()
	t.Cleanup(func() { close(requests) })
	return requests, signals
}

func recvSignal(t *testing.T, signals <-chan Signal) Signal {
	t.Helper()
	select {
	case sig, ok := <-signals:
		if !ok {
			t.Fatal("signal channel closed unexpectedly")
		}
		return sig
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for worker signal")
		return Signal{}
	}
}

func TestWorkerAlternatesReadyAndResult(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 20, 10)
	requests, signals := startWorker(t, Options{ThumbnailSize: 8})

	for i := 0; i < 3; i++ {
		ready := recvSignal(t, signals)
		if !ready.Ready || ready.Result != nil {
			t.Fatalf("iteration %d: expected readiness signal, got %+v", i, ready)
		}

		requests <- Request{Kind: KindFull, Index: i, Path: path}

		done := recvSignal(t, signals)
		if done.Ready || done.Result == nil {
			t.Fatalf("iteration %d: expected result signal, got %+v", i, done)
		}
		if done.Result.Index != i || done.Result.Err != nil {
			t.Fatalf("iteration %d: result = %+v", i, done.Result)
		}
	}
}

func TestWorkerClosesSignalsOnShutdown(t *testing.T) {
	requests := make(chan Request, 1)
	signals := make(chan Signal, 1)
	go NewWorker(Options{ThumbnailSize: 8}, requests, signals).Run()

	sig := recvSignal(t, signals)
	if !sig.Ready {
		t.Fatalf("expected readiness signal, got %+v", sig)
	}
	close(requests)

	select {
	case _, ok := <-signals:
		if ok {
			t.Fatal("expected signal channel to close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for signal channel close")
	}
}

func TestWorkerFullLoad(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 64, 32)
	requests, signals := startWorker(t, Options{ThumbnailSize: 8})

	recvSignal(t, signals)
	requests <- Request{Kind: KindFull, Index: 0, Path: path}
	res := recvSignal(t, signals).Result

	if res.Err != nil {
		t.Fatalf("full load failed: %v", res.Err)
	}
	if w, h := res.Frame.Size(); w != 64 || h != 32 {
		t.Errorf("full frame size %dx%d, want 64x32", w, h)
	}
	if res.Meta.Width != 64 || res.Meta.Height != 32 {
		t.Errorf("meta = %+v, want 64x32", res.Meta)
	}
}

func TestWorkerReportsLoadError(t *testing.T) {
	requests, signals := startWorker(t, Options{ThumbnailSize: 8})

	recvSignal(t, signals)
	requests <- Request{Kind: KindFull, Index: 3, Path: "/nonexistent/zzz.png"}
	res := recvSignal(t, signals).Result

	if res.Err == nil {
		t.Fatal("expected error result for missing file")
	}
	if res.Index != 3 || res.Frame != nil {
		t.Errorf("error result = %+v", res)
	}
}

func TestWorkerThumbnailGeneratesAndCaches(t *testing.T) {
	cache, err := thumbcache.New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("thumbcache.New: %v", err)
	}
	path := writePNG(t, t.TempDir(), "a.png", 100, 50)
	requests, signals := startWorker(t, Options{Cache: cache, ThumbnailSize: 10, Save: true})

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	res := recvSignal(t, signals).Result

	if res.Err != nil {
		t.Fatalf("thumbnail load failed: %v", res.Err)
	}
	if w, h := res.Frame.Size(); w != 10 || h != 5 {
		t.Errorf("thumbnail size %dx%d, want 10x5", w, h)
	}
	// Metadata describes the source, not the thumbnail.
	if res.Meta.Width != 100 || res.Meta.Height != 50 {
		t.Errorf("meta = %+v, want source dimensions 100x50", res.Meta)
	}

	canonical, err := thumbcache.Canonicalize(path)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if _, err := os.Stat(cache.ArtifactPath(canonical)); err != nil {
		t.Errorf("expected cached artifact after load: %v", err)
	}
}

func TestWorkerThumbnailServesFromCache(t *testing.T) {
	cache, err := thumbcache.New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("thumbcache.New: %v", err)
	}
	srcDir := t.TempDir()
	path := writePNG(t, srcDir, "a.png", 100, 50)
	requests, signals := startWorker(t, Options{Cache: cache, ThumbnailSize: 10, Save: true})

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	if res := recvSignal(t, signals).Result; res.Err != nil {
		t.Fatalf("first load: %v", res.Err)
	}

	// Replace the source with a different image, but keep the
	// artifact strictly newer so the cache still counts as fresh. The
	// served frame must be the cached 10x5 rendition, while metadata
	// reflects the current source.
	canonical, err := thumbcache.Canonicalize(path)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	writePNG(t, srcDir, "a.png", 40, 40)
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cache.ArtifactPath(canonical), future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	res := recvSignal(t, signals).Result

	if res.Err != nil {
		t.Fatalf("second load: %v", res.Err)
	}
	if w, h := res.Frame.Size(); w != 10 || h != 5 {
		t.Errorf("frame size %dx%d, want cached 10x5", w, h)
	}
	if res.Meta.Width != 40 || res.Meta.Height != 40 {
		t.Errorf("meta = %+v, want current source 40x40", res.Meta)
	}
}

func TestWorkerThumbnailRegeneratesWhenStale(t *testing.T) {
	cache, err := thumbcache.New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("thumbcache.New: %v", err)
	}
	srcDir := t.TempDir()
	path := writePNG(t, srcDir, "a.png", 100, 50)
	requests, signals := startWorker(t, Options{Cache: cache, ThumbnailSize: 10, Save: true})

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	if res := recvSignal(t, signals).Result; res.Err != nil {
		t.Fatalf("first load: %v", res.Err)
	}

	// Rewrite the source newer than the artifact: the stale artifact
	// must be ignored and the thumbnail regenerated from the new
	// content.
	canonical, err := thumbcache.Canonicalize(path)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(cache.ArtifactPath(canonical), past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	writePNG(t, srcDir, "a.png", 40, 80)

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	res := recvSignal(t, signals).Result

	if res.Err != nil {
		t.Fatalf("second load: %v", res.Err)
	}
	if w, h := res.Frame.Size(); w != 5 || h != 10 {
		t.Errorf("frame size %dx%d, want regenerated 5x10", w, h)
	}
}

func TestWorkerThumbnailWithoutCache(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 100, 50)
	requests, signals := startWorker(t, Options{ThumbnailSize: 10})

	recvSignal(t, signals)
	requests <- Request{Kind: KindThumbnail, Index: 0, Path: path}
	res := recvSignal(t, signals).Result

	if res.Err != nil {
		t.Fatalf("cacheless thumbnail load: %v", res.Err)
	}
	if w, h := res.Frame.Size(); w != 10 || h != 5 {
		t.Errorf("thumbnail size %dx%d, want 10x5", w, h)
	}
}
