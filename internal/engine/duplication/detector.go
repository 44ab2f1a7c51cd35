package duplication

import (
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
)

// FileSource is the raw input of one file. Detection deliberately takes
// text instead of parsed models.
type FileSource struct {
	Path   string
	Source string
}

// Block is one occurrence of a duplicated token range.
type Block struct {
	Path       string `json:"path"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	TokenCount int    `json:"token_count"`
}

// Pair is two blocks whose normalized token streams are identical.
type Pair struct {
	BlockA     Block `json:"block_a"`
	BlockB     Block `json:"block_b"`
	TokenCount int   `json:"token_count"`
	LineCount  int   `json:"line_count"`
}

// Result is the project-wide duplication summary.
type Result struct {
	TotalFiles       int                `json:"total_files"`
	TotalTokens      int                `json:"total_tokens"`
	DuplicatedTokens int                `json:"duplicated_tokens"`
	DuplicationPct   float64            `json:"duplication_pct"`
	Pairs            []Pair             `json:"duplicate_pairs"`
	PerFile          map[string]float64 `json:"per_file"`
	Truncated        bool               `json:"truncated"`
}

// Detector holds the configured match thresholds.
type Detector struct {
	minTokens int
	minLines  int
	maxPairs  int
}

func NewDetector(cfg config.Duplication) *Detector {
	return &Detector{
		minTokens: cfg.MinTokens,
		minLines:  cfg.MinLines,
		maxPairs:  cfg.MaxPairs,
	}
}

// occurrence is one qualifying hash window inside a file.
type occurrence struct {
	file  int
	start int
}

// matchKey identifies a file pair plus window alignment; consecutive
// window starts under the same key form one contiguous match.
type matchKey struct {
	fileA, fileB int
	delta        int
}

// Detect runs the full pipeline over all files. The result is always
// usable; a DUPLICATE_OVERFLOW error alongside it signals that the pair
// list was deterministically truncated to the configured cap.
func (d *Detector) Detect(files []FileSource) (*Result, error) {
	sorted := make([]FileSource, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	res := &Result{TotalFiles: len(sorted), PerFile: map[string]float64{}}

	fileTokens := make([][]Token, len(sorted))
	for i, f := range sorted {
		fileTokens[i] = Tokenize(f.Source)
		res.TotalTokens += len(fileTokens[i])
	}

	index := d.buildIndex(fileTokens)
	runs := d.collectRuns(index)

	covered := make([]map[int]bool, len(sorted))
	pairs := d.collapse(runs, sorted, fileTokens, covered)

	fillDuplicationStats(res, covered, sorted, fileTokens)

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.TokenCount != b.TokenCount {
			return a.TokenCount > b.TokenCount
		}
		if a.BlockA.Path != b.BlockA.Path {
			return a.BlockA.Path < b.BlockA.Path
		}
		if a.BlockA.LineStart != b.BlockA.LineStart {
			return a.BlockA.LineStart < b.BlockA.LineStart
		}
		if a.BlockB.Path != b.BlockB.Path {
			return a.BlockB.Path < b.BlockB.Path
		}
		return a.BlockB.LineStart < b.BlockB.LineStart
	})

	var err error
	if len(pairs) > d.maxPairs {
		pairs = pairs[:d.maxPairs]
		res.Truncated = true
		err = errors.Newf(errors.CodeDuplicateOverflow,
			"duplicate pairs truncated to %d", d.maxPairs)
	}
	res.Pairs = pairs
	return res, err
}

// buildIndex hashes every window of minTokens tokens that also spans
// minLines source lines.
func (d *Detector) buildIndex(fileTokens [][]Token) map[uint64][]occurrence {
	index := make(map[uint64][]occurrence)
	var sb strings.Builder

	for fi, tokens := range fileTokens {
		n := len(tokens)
		if n < d.minTokens {
			continue
		}
		for i := 0; i+d.minTokens <= n; i++ {
			last := i + d.minTokens - 1
			if tokens[last].Line-tokens[i].Line+1 < d.minLines {
				continue
			}
			sb.Reset()
			for k := i; k <= last; k++ {
				if k > i {
					sb.WriteByte(' ')
				}
				sb.WriteString(tokens[k].Value)
			}
			h := xxhash.Sum64String(sb.String())
			index[h] = append(index[h], occurrence{file: fi, start: i})
		}
	}
	return index
}

// collectRuns pairs colliding windows, normalizes each pair's orientation
// and groups them by alignment so overlapping windows can collapse.
func (d *Detector) collectRuns(index map[uint64][]occurrence) map[matchKey][]int {
	runs := make(map[matchKey][]int)
	for _, occs := range index {
		if len(occs) < 2 {
			continue
		}
		for i := 0; i < len(occs); i++ {
			for j := i + 1; j < len(occs); j++ {
				a, b := occs[i], occs[j]
				if a.file == b.file {
					if abs(a.start-b.start) < d.minTokens {
						continue
					}
					if a.start > b.start {
						a, b = b, a
					}
				} else if a.file > b.file {
					a, b = b, a
				}
				key := matchKey{fileA: a.file, fileB: b.file, delta: a.start - b.start}
				runs[key] = append(runs[key], a.start)
			}
		}
	}
	return runs
}

// collapse merges consecutive window starts into one maximal pair each,
// marking the covered token indices of both sides as it goes.
func (d *Detector) collapse(runs map[matchKey][]int, files []FileSource, fileTokens [][]Token, covered []map[int]bool) []Pair {
	var pairs []Pair
	for key, starts := range runs {
		sort.Ints(starts)
		runStart := starts[0]
		prev := starts[0]
		for i := 1; i <= len(starts); i++ {
			if i < len(starts) && starts[i] == prev {
				continue
			}
			if i < len(starts) && starts[i] == prev+1 {
				prev = starts[i]
				continue
			}
			pairs = append(pairs, d.makePair(key, runStart, prev, files, fileTokens, covered))
			if i < len(starts) {
				runStart = starts[i]
				prev = starts[i]
			}
		}
	}
	return pairs
}

func (d *Detector) makePair(key matchKey, runStart, runEnd int, files []FileSource, fileTokens [][]Token, covered []map[int]bool) Pair {
	tokenCount := runEnd - runStart + d.minTokens
	startA := runStart
	startB := runStart - key.delta

	blockA := makeBlock(files[key.fileA].Path, fileTokens[key.fileA], startA, tokenCount)
	blockB := makeBlock(files[key.fileB].Path, fileTokens[key.fileB], startB, tokenCount)
	markCovered(covered, key.fileA, startA, tokenCount)
	markCovered(covered, key.fileB, startB, tokenCount)

	lineCount := max(
		blockA.LineEnd-blockA.LineStart+1,
		blockB.LineEnd-blockB.LineStart+1,
	)
	return Pair{BlockA: blockA, BlockB: blockB, TokenCount: tokenCount, LineCount: lineCount}
}

func markCovered(covered []map[int]bool, file, start, count int) {
	if covered[file] == nil {
		covered[file] = make(map[int]bool)
	}
	for k := 0; k < count; k++ {
		covered[file][start+k] = true
	}
}

func makeBlock(path string, tokens []Token, start, count int) Block {
	end := start + count - 1
	if end >= len(tokens) {
		end = len(tokens) - 1
	}
	return Block{
		Path:       path,
		LineStart:  tokens[start].Line,
		LineEnd:    tokens[end].Line,
		TokenCount: count,
	}
}

// fillDuplicationStats derives the per-file duplicated-token percentages
// and the project-wide ratio from the coverage sets, before any truncation.
func fillDuplicationStats(res *Result, covered []map[int]bool, files []FileSource, fileTokens [][]Token) {
	total := 0
	for i, f := range files {
		if len(covered[i]) == 0 {
			continue
		}
		total += len(covered[i])
		if n := len(fileTokens[i]); n > 0 {
			pct := float64(len(covered[i])) / float64(n) * 100
			res.PerFile[f.Path] = math.Round(pct*100) / 100
		}
	}
	res.DuplicatedTokens = total
	if res.TotalTokens > 0 {
		res.DuplicationPct = float64(total) / float64(res.TotalTokens) * 100
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
