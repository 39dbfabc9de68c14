package theme

import (
	"math/rand"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
)

func TestPalettesParse(t *testing.T) {
	for _, p := range Palettes() {
		for _, hex := range []string{p.Background, p.Foreground, p.Accent, p.Muted()} {
			if _, err := colorful.Hex(hex); err != nil {
				t.Fatalf("palette %s: invalid colour %q: %v", p.Name, hex, err)
			}
		}
	}
}

func TestRandomCoversEveryPalette(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	seen := map[string]int{}
	for i := 0; i < 2000; i++ {
		seen[Random(r).Name]++
	}
	for _, p := range Palettes() {
		if seen[p.Name] < 300 {
			t.Fatalf("palette %s picked %d times, selection looks skewed: %v", p.Name, seen[p.Name], seen)
		}
	}
}

func TestMutedSitsBetween(t *testing.T) {
	p := Palettes()[0]
	muted := p.Muted()
	if muted == p.Foreground || muted == p.Background {
		t.Fatalf("muted colour %s should differ from both ends", muted)
	}
}

func TestPalettesReturnsCopy(t *testing.T) {
	ps := Palettes()
	ps[0].Name = "changed"
	if Palettes()[0].Name == "changed" {
		t.Fatalf("palette list mutated through returned slice")
	}
}
