package codeobject

import (
	"bufio"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// sourceCacheSize bounds the process-wide file->lines cache. The original
// agent's get_source_file_index() caches every file it has ever opened for
// the life of the process, append-only; we deliberately diverge and bound
// it with an evicting LRU instead, sized like the teacher's own default
// symbol-lookup caches. Eviction only costs a re-read of an unchanged source
// file on a later cache miss, so it is functionally equivalent for this use.
const sourceCacheSize = 128

var (
	sourceCacheOnce sync.Once
	sourceCache     *lru.Cache
)

func getSourceCache() *lru.Cache {
	sourceCacheOnce.Do(func() {
		c, err := lru.New(sourceCacheSize)
		if err != nil {
			// Only fails for a non-positive size, which is a constant above.
			panic(err)
		}
		sourceCache = c
	})
	return sourceCache
}

// sourceLine returns the 1-based source line from file. ok reports whether
// the file could be opened at all; an out-of-range line within an opened
// file yields ("", true), matching the original's "line && line <=
// lines.size()" guard (print nothing, not an error).
func sourceLine(file string, line int) (string, bool) {
	cache := getSourceCache()

	var lines []string
	if cached, hit := cache.Get(file); hit {
		lines = cached.([]string)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return "", false
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		cache.Add(file, lines)
	}

	if line <= 0 || line > len(lines) {
		return "", true
	}
	return lines[line-1], true
}
