package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSafeFileWriterConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "launchpilot.log")

	writer, err := NewSafeFileWriter(testFile, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Failed to create safe file writer: %v", err)
	}

	var wg sync.WaitGroup
	numGoroutines := 10
	linesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < linesPerGoroutine; j++ {
				line := fmt.Sprintf("goroutine %d line %d\n", id, j)
				if _, err := writer.Write([]byte(line)); err != nil {
					t.Errorf("Failed to write line: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	got := strings.Count(string(data), "\n")
	want := numGoroutines * linesPerGoroutine
	if got != want {
		t.Errorf("Expected %d lines, got %d", want, got)
	}

	lines, _ := writer.GetStats()
	if lines != uint64(want) {
		t.Errorf("Expected %d written lines in stats, got %d", want, lines)
	}
}

func TestSafeFileWriterPeriodicFlush(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "flush.log")

	writer, err := NewSafeFileWriter(testFile, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Failed to create safe file writer: %v", err)
	}
	defer writer.Close()

	if _, err := writer.Write([]byte("buffered line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	// The background ticker should land the data on disk without Close.
	deadline := time.After(2 * time.Second)
	for {
		data, err := os.ReadFile(testFile)
		if err == nil && len(data) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Periodic flush never wrote buffered data")
		case <-time.After(10 * time.Millisecond):
		}
	}

	_, flushes := writer.GetStats()
	if flushes == 0 {
		t.Error("Expected at least one periodic flush")
	}
}

func TestNewBuildsFileSink(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "out", "app.log")

	log, closeFn, err := New(Options{Level: "debug", File: logFile})
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	log.Info("hello from test")
	closeFn()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("Log file missing entry, got: %s", string(data))
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "shouting"}); err == nil {
		t.Fatal("Expected error for unknown level")
	}
}
