package uciengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/discochess/sieve/internal/engine"
)

func TestGoCmd(t *testing.T) {
	tests := []struct {
		name      string
		limit     engine.Limit
		wantDepth int
		wantTime  time.Duration
	}{
		{"time", engine.Limit{Time: 500 * time.Millisecond}, 0, 500 * time.Millisecond},
		{"depth", engine.Limit{Depth: 20}, 20, 0},
		{"depth wins", engine.Limit{Time: time.Second, Depth: 12}, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := goCmd(tt.limit)
			if cmd.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", cmd.Depth, tt.wantDepth)
			}
			if cmd.MoveTime != tt.wantTime {
				t.Errorf("MoveTime = %v, want %v", cmd.MoveTime, tt.wantTime)
			}
		})
	}
}

func TestNew_MissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-engine")
	if _, err := New(path); err == nil {
		t.Error("New() with a missing binary should fail")
	}
}

func TestLauncher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	launch := Launcher(filepath.Join(t.TempDir(), "no-such-engine"))
	if _, err := launch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("launch() error = %v, want context.Canceled", err)
	}
}

const fakeEngineScript = `#!/bin/sh
while read -r line; do
	case "$line" in
	uci) echo "id name fake"; echo "uciok" ;;
	isready) echo "readyok" ;;
	setoption*) echo "$line" >> %q ;;
	go*)
%s		echo "bestmove a2a3" ;;
	quit) exit 0 ;;
	esac
done
`

// fakeEngine writes a UCI engine script that answers every "go" with info
// and returns the script path and the file receiving setoption commands.
func fakeEngine(t *testing.T, info ...string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a shell script")
	}

	dir := t.TempDir()
	options := filepath.Join(dir, "setoption.log")
	var out strings.Builder
	for _, line := range info {
		fmt.Fprintf(&out, "\t\techo %q\n", line)
	}

	path := filepath.Join(dir, "engine.sh")
	script := fmt.Sprintf(fakeEngineScript, options, out.String())
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path, options
}

const rookEndgame = "8/5k2/8/3r4/8/2R5/5PPK/8 b - - 0 40"

func TestEngine_Analyze(t *testing.T) {
	tests := []struct {
		name    string
		info    []string
		want    engine.Score
		wantErr error
	}{
		{
			name: "centipawns",
			info: []string{
				"info depth 1 seldepth 1 multipv 1 score cp 12 nodes 20 pv a2a3",
				"info depth 2 seldepth 3 multipv 1 score cp -35 nodes 80 time 3 pv a2a3",
			},
			want: engine.Centipawns(-35),
		},
		{
			name: "mate for the side to move",
			info: []string{"info depth 5 seldepth 6 multipv 1 score mate 3 nodes 900 pv a2a3"},
			want: engine.MateIn(3),
		},
		{
			name: "mated",
			info: []string{"info depth 5 seldepth 6 multipv 1 score mate -2 nodes 900 pv a2a3"},
			want: engine.MateIn(-2),
		},
		{
			name: "trailing lines without a score",
			info: []string{
				"info depth 5 seldepth 7 multipv 1 score mate 3 nodes 1200 pv a2a3",
				"info depth 6 currmove a2a3 currmovenumber 1",
				"info nodes 5000 time 3001",
				"info string search finished",
			},
			want: engine.MateIn(3),
		},
		{
			name:    "no score",
			info:    []string{"info depth 1 currmove a2a3 currmovenumber 1"},
			wantErr: engine.ErrNoScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, _ := fakeEngine(t, tt.info...)
			eng, err := New(path)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer eng.Close()

			got, err := eng.Analyze(context.Background(), rookEndgame, engine.Limit{Depth: 6})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Analyze() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Analyze() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEngine_ScoresEachSearchSeparately(t *testing.T) {
	path, _ := fakeEngine(t, "info depth 3 score cp 40 pv a2a3")
	eng, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer eng.Close()

	for i := 0; i < 2; i++ {
		got, err := eng.Analyze(context.Background(), rookEndgame, engine.DefaultLimit)
		if err != nil {
			t.Fatalf("Analyze() #%d error = %v", i+1, err)
		}
		if got != engine.Centipawns(40) {
			t.Errorf("Analyze() #%d = %s, want %s", i+1, got, engine.Centipawns(40))
		}
	}
}

func TestEngine_SetThreads(t *testing.T) {
	path, options := fakeEngine(t)
	eng, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer eng.Close()

	if err := eng.SetThreads(4); err != nil {
		t.Fatalf("SetThreads() error = %v", err)
	}
	data, err := os.ReadFile(options)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "setoption name Threads value 4" {
		t.Errorf("engine received %q", got)
	}
}

func TestEngine_Close(t *testing.T) {
	path, _ := fakeEngine(t)
	eng, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := eng.Close(); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if _, err := eng.Analyze(context.Background(), rookEndgame, engine.DefaultLimit); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("Analyze() after Close error = %v, want ErrClosed", err)
	}
	if err := eng.SetThreads(2); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("SetThreads() after Close error = %v, want ErrClosed", err)
	}
}
