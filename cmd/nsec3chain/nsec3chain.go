/*
Copyright (c) Zoneforge, Inc. and affiliates.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/eclesh/welford"
	"github.com/fsnotify/fsnotify"
	"github.com/segmentio/fasthash/fnv1a"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/zoneforge/nsec3data/dnsname"
	"github.com/zoneforge/nsec3data/nsec3"
)

// chainConfig holds the chain parameters. Flags fill it first, a TOML
// config file given with -config overrides the keys it sets.
type chainConfig struct {
	Zone       string   `toml:"zone"`
	Salt       string   `toml:"salt"`
	Iterations uint     `toml:"iterations"`
	OptOut     bool     `toml:"optout"`
	Types      []string `toml:"types"`
}

type runConfig struct {
	workers   int
	multiline bool
	width     int
	stats     bool
	noParam   bool
}

func getWorkers(workers int) (int, error) {
	if workers < 0 {
		return workers, fmt.Errorf("bad number of workers %d", workers)
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return workers, nil
}

func progressLine(format string, args ...any) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	fmt.Fprintf(os.Stderr, "\u001b[1000D")
	fmt.Fprintf(os.Stderr, format, args...)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func readNames(r io.Reader) ([]dnsname.Name, error) {
	var names []dnsname.Name
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, err := dnsname.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func buildParams(cfg chainConfig, annotate bool) (nsec3.ChainParams, error) {
	var params nsec3.ChainParams
	if cfg.Zone == "" {
		return params, errors.New("no zone name given")
	}
	zone, err := dnsname.Parse(cfg.Zone)
	if err != nil {
		return params, fmt.Errorf("zone %q: %w", cfg.Zone, err)
	}
	salt, err := nsec3.ParseSalt(cfg.Salt)
	if err != nil {
		return params, err
	}
	if cfg.Iterations > nsec3.MaxIterations {
		return params, fmt.Errorf("iteration count %d out of range", cfg.Iterations)
	}
	types := make([]uint16, 0, len(cfg.Types))
	for _, s := range cfg.Types {
		t, err := nsec3.ParseType(s)
		if err != nil {
			return params, err
		}
		types = append(types, t)
	}
	return nsec3.ChainParams{
		Zone:       zone,
		Algorithm:  nsec3.SHA1,
		Iterations: uint32(cfg.Iterations),
		Salt:       salt,
		OptOut:     cfg.OptOut,
		Types:      types,
		Annotate:   annotate,
	}, nil
}

// hashAll warms the hasher cache in parallel so that building the chain
// afterwards finds every hash already computed. Names are sharded with
// fnv1a so the same name always lands in the same bucket and equal names
// are hashed once.
func hashAll(params nsec3.ChainParams, names []dnsname.Name, hasher *nsec3.Hasher, workers int) (*welford.Stats, error) {
	timing := welford.New()
	var mu sync.Mutex

	buckets := make([][]dnsname.Name, workers)
	for _, name := range names {
		i := fnv1a.HashBytes32(name.Canonical()) % uint32(len(buckets))
		buckets[i] = append(buckets[i], name)
	}

	total := len(names)
	done := make(chan bool, workers)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		cur := 0
		for <-done {
			cur++
			progressLine("hashed name %d/%d", cur, total)
		}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			fmt.Fprintln(os.Stderr)
		}
	}()

	var g errgroup.Group
	for _, bucket := range buckets {
		bucket := bucket
		g.Go(func() error {
			for _, name := range bucket {
				start := time.Now()
				if _, err := hasher.HashName(name, params.Algorithm, params.Iterations, params.Salt); err != nil {
					return err
				}
				elapsed := time.Since(start)
				mu.Lock()
				timing.Add(float64(elapsed))
				mu.Unlock()
				done <- true
			}
			return nil
		})
	}
	err := g.Wait()
	close(done)
	<-stopped
	return timing, err
}

func generate(w io.Writer, params nsec3.ChainParams, inputFile string, run runConfig) error {
	in := os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	names, err := readNames(in)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no names in input")
	}

	hasher := nsec3.NewHasher(len(names))
	timing, err := hashAll(params, names, hasher, run.workers)
	if err != nil {
		return err
	}
	records, err := nsec3.BuildChain(params, names, hasher)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(w)
	if !run.noParam {
		param, err := params.Param()
		if err != nil {
			log.Warningf("Skipping NSEC3PARAM record: %v", err)
		} else {
			fmt.Fprintf(out, "%s\tIN\tNSEC3PARAM\t%s\n", params.Zone, param)
		}
	}
	for _, rec := range records {
		if run.multiline {
			fmt.Fprintf(out, "%s\tIN\tNSEC3\t%s\n", rec.Owner(), rec.FormatText(run.width))
		} else {
			fmt.Fprintf(out, "%s\tIN\tNSEC3\t%s\n", rec.Owner(), rec)
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	if run.stats && timing.Count() > 0 {
		fmt.Fprintf(os.Stderr, "hashed %d names: min=%v mean=%v max=%v stddev=%v\n",
			timing.Count(),
			time.Duration(timing.Min()),
			time.Duration(timing.Mean()),
			time.Duration(timing.Max()),
			time.Duration(timing.Stddev()))
	}
	return nil
}

func filterEvent(op fsnotify.Op) bool {
	return op&fsnotify.Create != 0 ||
		op&fsnotify.Write != 0 ||
		op&fsnotify.Rename != 0 ||
		op&fsnotify.Chmod != 0
}

func watchLoop(inputFile string, params nsec3.ChainParams, run runConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("setting up fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file so rewrites that replace
	// the file, a rename followed by a create, keep being seen.
	dir := filepath.Dir(inputFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("adding %q to fsnotify watcher: %w", dir, err)
	}
	target := path.Clean(inputFile)
	log.Infof("Watching %s for changes", inputFile)
	for {
		select {
		case err := <-watcher.Errors:
			if err == nil {
				return nil
			}
			return fmt.Errorf("fsnotify watcher error: %w", err)
		case ev := <-watcher.Events:
			if filterEvent(ev.Op) && path.Clean(ev.Name) == target {
				log.Infof("Input %s changed, rebuilding chain", inputFile)
				if err := generate(os.Stdout, params, inputFile, run); err != nil {
					log.Errorf("Rebuilding chain: %v", err)
				}
			}
		}
	}
}

func main() {
	var cfg chainConfig
	flag.StringVar(&cfg.Zone, "zone", "", "Zone apex the chain belongs to")
	flag.StringVar(&cfg.Salt, "salt", "-", "Salt as hex digits, - for none")
	flag.UintVar(&cfg.Iterations, "iterations", 0, "Extra hash iterations")
	flag.BoolVar(&cfg.OptOut, "optout", false, "Set the opt-out flag on every record")
	typeList := flag.String("types", "", "Comma separated record types every chain record carries, e.g. A,RRSIG")
	configPath := flag.String("config", "", "TOML file overriding the chain flags")
	input := flag.String("i", "", "File with one domain name per line, empty means stdin")
	numCPU := flag.Int("numcpu", 0, "Number of hashing workers, 0 means one per CPU")
	multiline := flag.Bool("multiline", false, "Emit records in the parenthesized multi line form")
	width := flag.Int("width", 40, "Hash line width of the multi line form")
	stats := flag.Bool("stats", false, "Print hash timing statistics to stderr")
	annotate := flag.Bool("annotate", false, "Append the source name of each record as a comment")
	noParam := flag.Bool("noparam", false, "Do not emit the NSEC3PARAM record")
	watch := flag.Bool("watch", false, "Keep running and rebuild the chain when the input file changes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Build a complete NSEC3 chain from a list of domain names.\n")
		fmt.Fprintf(os.Stderr, "Usage: %s -zone example.com -salt AABBCCDD -iterations 12 < names.txt\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg.Types = splitList(*typeList)
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			log.Fatalf("Reading %s: %v", *configPath, err)
		}
	}
	params, err := buildParams(cfg, *annotate)
	if err != nil {
		log.Fatalf("Bad chain parameters: %v", err)
	}
	workers, err := getWorkers(*numCPU)
	if err != nil {
		log.Fatalf("%v", err)
	}
	run := runConfig{
		workers:   workers,
		multiline: *multiline,
		width:     *width,
		stats:     *stats,
		noParam:   *noParam,
	}
	if *watch && *input == "" {
		log.Fatal("-watch needs an input file, stdin cannot be watched")
	}
	if err := generate(os.Stdout, params, *input, run); err != nil {
		log.Fatalf("Building chain: %v", err)
	}
	if *watch {
		if err := watchLoop(*input, params, run); err != nil {
			log.Fatalf("Watching %s: %v", *input, err)
		}
	}
}
