package archive

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/discochess/sieve/internal/store"
)

// Separator ends every game block in a snapshot: two blank lines.
const Separator = "\n\n\n"

// Split breaks data into game blocks. Outer whitespace is trimmed first and
// blocks that are only whitespace are dropped.
func Split(data string) []string {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}

	parts := strings.Split(data, Separator)
	blocks := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, p)
	}
	return blocks
}

// Join writes each block followed by Separator. Split(Join(b)) returns b for
// any blocks produced by Split.
func Join(blocks []string) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b)
		sb.WriteString(Separator)
	}
	return sb.String()
}

// SaveToFile overwrites path with the joined blocks.
func SaveToFile(path string, blocks []string) error {
	if err := os.WriteFile(path, []byte(Join(blocks)), 0644); err != nil {
		return fmt.Errorf("saving games: %w", err)
	}
	return nil
}

// LoadFromFile reads the blocks saved at path.
func LoadFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}
	return Split(string(data)), nil
}

// Save writes the joined blocks as the named snapshot in st.
func Save(ctx context.Context, st store.Store, name string, blocks []string) error {
	if err := st.Write(ctx, name, []byte(Join(blocks))); err != nil {
		return fmt.Errorf("saving games to %s: %w", name, err)
	}
	return nil
}

// Load reads the named snapshot from st and splits it into blocks.
func Load(ctx context.Context, st store.Store, name string) ([]string, error) {
	data, err := st.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading games from %s: %w", name, err)
	}
	return Split(string(data)), nil
}
