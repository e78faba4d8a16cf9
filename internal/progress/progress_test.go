package progress

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func frozen(b *Bar) {
	t0 := time.Unix(0, 0)
	b.now = func() time.Time { return t0 }
}

func frames(out string) []string {
	return strings.Split(out, "\r")[1:]
}

func TestBar_StartAndFinish(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)

	bar.Start(4)
	for i := 0; i < 4; i++ {
		bar.FileDone("a/b/f.txt")
	}
	bar.Finish()

	if bar.Done() != 4 {
		t.Errorf("Expected 4 done, got %d", bar.Done())
	}

	out := buf.String()
	if !strings.Contains(out, "  0% (0/4)") {
		t.Errorf("Expected an empty first frame, got %q", out)
	}
	if !strings.Contains(out, "100% (4/4) | a/b") {
		t.Errorf("Expected final 100%% frame, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestBar_ThrottlesRedraws(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)
	frozen(bar)

	bar.Start(1000)
	for i := 0; i < 1000; i++ {
		bar.FileDone(fmt.Sprintf("d%03d/f%d", i/200, i))
	}

	// The start frame and the final frame; everything in between falls
	// inside the throttle window of the frozen clock.
	if got := len(frames(buf.String())); got != 2 {
		t.Errorf("Expected 2 frames, got %d", got)
	}
}

func TestBar_RedrawsAfterThrottle(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)
	clock := time.Unix(0, 0)
	bar.now = func() time.Time { return clock }

	bar.Start(10)
	bar.FileDone("a/1")
	clock = clock.Add(throttle)
	bar.FileDone("b/2")

	got := frames(buf.String())
	if len(got) != 2 {
		t.Fatalf("Expected 2 frames, got %q", got)
	}
	if !strings.HasSuffix(got[1], "(2/10) | b") {
		t.Errorf("Unexpected frame %q", got[1])
	}
}

func TestBar_LabelFollowsLatestDirectory(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)
	frozen(bar)

	bar.Start(1000)
	for i := 0; i < 1000; i++ {
		bar.FileDone(fmt.Sprintf("d%03d/f%d", i/200, i))
	}
	bar.Finish()

	all := frames(buf.String())
	last := strings.TrimSuffix(all[len(all)-1], "\n")
	if !strings.HasSuffix(last, "100% (1000/1000) | d004") {
		t.Errorf("Final frame should name the directory being hashed, got %q", last)
	}
}

func TestBar_ZeroTotalDrawsNothing(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)
	bar.Start(0)
	bar.Finish()

	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestBar_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf)
	bar.Start(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bar.FileDone("dir/file")
		}()
	}
	wg.Wait()

	if bar.Done() != 100 {
		t.Errorf("Expected 100 done, got %d", bar.Done())
	}
}
