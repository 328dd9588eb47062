package search

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/jbr/ferritin-sub001/internal/rustdoc"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// Posting records one item's occurrences of one token.
type Posting struct {
	IDPath   string `json:"id_path"`
	TermFreq int    `json:"tf"`
}

// Index is one package's inverted index: hashed lowercase token →
// postings, plus the per-document lengths BM25 needs.
type Index struct {
	Postings map[uint64][]Posting `json:"postings"`
	Lengths  map[string]int       `json:"lengths"`
	AvgLen   float64              `json:"avg_len"`
	Docs     int                  `json:"docs"`
}

// Build indexes every item reachable from the package root, tokenizing its
// name and documentation prose. The id path recorded for each posting is
// the colon-joined walk from the root.
func Build(pkg *source.Package) *Index {
	idx := &Index{
		Postings: make(map[uint64][]Posting),
		Lengths:  make(map[string]int),
	}

	visited := make(map[int]bool)
	walkItems(pkg, pkg.Crate.Root, "", visited, func(idPath string, item *rustdoc.Item) {
		freqs := make(map[uint64]int)
		total := 0
		if item.Name != nil {
			for _, tok := range Tokenize(*item.Name) {
				freqs[HashToken(tok)]++
				total++
			}
		}
		for _, tok := range Tokenize(item.DocText()) {
			freqs[HashToken(tok)]++
			total++
		}
		if total == 0 {
			return
		}

		idx.Lengths[idPath] = total
		for hash, tf := range freqs {
			idx.Postings[hash] = append(idx.Postings[hash], Posting{IDPath: idPath, TermFreq: tf})
		}
	})

	idx.Docs = len(idx.Lengths)
	if idx.Docs > 0 {
		sum := 0
		for _, l := range idx.Lengths {
			sum += l
		}
		idx.AvgLen = float64(sum) / float64(idx.Docs)
	}
	return idx
}

// walkItems visits every item reachable from id, depth-first. Re-exports
// are followed when the target lives in the same package; cross-package
// targets are out of this index's corpus.
func walkItems(pkg *source.Package, id int, prefix string, visited map[int]bool, fn func(idPath string, item *rustdoc.Item)) {
	if visited[id] {
		return
	}
	visited[id] = true

	item := pkg.ItemRef(strconv.Itoa(id))
	if item == nil {
		return
	}

	idPath := strconv.Itoa(id)
	if prefix != "" {
		idPath = prefix + ":" + idPath
	}
	fn(idPath, item)

	for _, child := range childIDs(pkg, item) {
		walkItems(pkg, child, idPath, visited, fn)
	}
}

func childIDs(pkg *source.Package, item *rustdoc.Item) []int {
	switch item.InnerKind() {
	case rustdoc.KindModule:
		var mod rustdoc.Module
		if !item.DecodeInner(rustdoc.KindModule, &mod) {
			return nil
		}
		var out []int
		for _, id := range mod.Items {
			child := pkg.ItemRef(strconv.Itoa(id))
			if child == nil {
				continue
			}
			if child.InnerKind() == rustdoc.KindUse {
				var use rustdoc.Use
				if child.DecodeInner(rustdoc.KindUse, &use) && use.ID != nil {
					if pkg.ItemRef(strconv.Itoa(*use.ID)) != nil {
						out = append(out, *use.ID)
					}
				}
				continue
			}
			out = append(out, id)
		}
		return out
	case rustdoc.KindStruct:
		var s rustdoc.Struct
		if !item.DecodeInner(rustdoc.KindStruct, &s) {
			return nil
		}
		return append(append([]int{}, s.Fields()...), implItemIDs(pkg, s.Impls)...)
	case rustdoc.KindEnum:
		var e rustdoc.Enum
		if !item.DecodeInner(rustdoc.KindEnum, &e) {
			return nil
		}
		return append(append([]int{}, e.Variants...), implItemIDs(pkg, e.Impls)...)
	case rustdoc.KindTrait:
		var tr rustdoc.Trait
		if !item.DecodeInner(rustdoc.KindTrait, &tr) {
			return nil
		}
		return tr.Items
	}
	return nil
}

func implItemIDs(pkg *source.Package, implIDs []int) []int {
	var out []int
	for _, implID := range implIDs {
		implItem := pkg.ItemRef(strconv.Itoa(implID))
		if implItem == nil {
			continue
		}
		var impl rustdoc.Impl
		if implItem.DecodeInner(rustdoc.KindImpl, &impl) {
			out = append(out, impl.Items...)
		}
	}
	return out
}

// cachePath keys an index file by package name, version, and content hash,
// so a changed bundle invalidates the cached index.
func cachePath(dir string, pkg *source.Package) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%016x.idx.zst", pkg.Name, pkg.Version, pkg.ContentHash))
}

// LoadOrBuild returns the package's index, preferring the disk cache. A
// cache miss (or unreadable entry) builds and best-effort persists; a
// failed write is not an error, just a rebuild next time.
func LoadOrBuild(pkg *source.Package, cacheDir string) (*Index, error) {
	if cacheDir != "" {
		if idx, err := loadIndex(cachePath(cacheDir, pkg)); err == nil {
			return idx, nil
		}
	}

	idx := Build(pkg)

	if cacheDir != "" {
		if err := saveIndex(cachePath(cacheDir, pkg), idx); err != nil {
			return idx, nil
		}
	}
	return idx, nil
}

func saveIndex(path string, idx *Index) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(idx); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func loadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	if idx.Postings == nil {
		idx.Postings = make(map[uint64][]Posting)
	}
	if idx.Lengths == nil {
		idx.Lengths = make(map[string]int)
	}
	return &idx, nil
}
