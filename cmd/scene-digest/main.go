package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
	"campfire/internal/world"
	pcore "campfire/pkg/core"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	verbose := flag.Bool("v", false, "print placement counts with each digest")
	var overrides kvList
	flag.Var(&overrides, "set", "world parameter override in key=value form (repeatable, local only)")
	flag.Parse()

	seeds := flag.Args()
	if len(seeds) == 0 {
		seeds = []string{strconv.FormatInt(pcore.DefaultSeed, 10)}
	}

	params := make(map[string]string, len(overrides))
	for _, kv := range overrides {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			fmt.Fprintf(os.Stderr, "ignoring override %q\n", kv)
			continue
		}
		params[parts[0]] = parts[1]
	}

	if err := digest(os.Stdout, world.FromMap(params), seeds, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// digest builds the forest for each seed and prints one line per seed.
func digest(w io.Writer, cfg world.Config, seeds []string, verbose bool) error {
	arena := gfx.NewArena()
	builder := world.NewBuilder(cfg, arena, world.NewMaterials(arena))
	for _, s := range seeds {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("seed %q: %w", s, err)
		}
		b := builder.Build(seed, core.ModePublic, time.Time{})
		fmt.Fprintf(w, "%d %s\n", b.Seed, b.Digest())
		if verbose {
			fmt.Fprintf(w, "  trees=%d grass=%d boulders=%d moss=%d litter=%d mist=%d stars=%d fireflies=%d\n",
				len(b.Trees), len(b.Grass), len(b.Boulders), len(b.Moss), len(b.Litter), len(b.Mist), len(b.Stars), len(b.Fireflies))
		}
		b.Dispose()
	}
	return nil
}
