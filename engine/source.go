package engine

import (
	"path"
	"sort"
	"strings"
)

// Span is a half-open byte range in the offset space of a SourceMap.
type Span struct {
	Lo int
	Hi int
}

// SourceFile is a (name, contents) pair handed to NewSourceMap.
type SourceFile struct {
	Name     string
	Contents string
}

// Source is one file placed in a SourceMap at a fixed offset.
type Source struct {
	Name     string
	Contents string
	Offset   int
}

/*
SourceMap lays a set of in-memory files out in a single offset space, so a
diagnostic span can be traced back to the file and position it came from
without touching the filesystem.
*/
type SourceMap struct {
	sources []*Source
	prefix  string
}

// NewSourceMap places the files back to back, in order, under a shared prefix.
func NewSourceMap(files []SourceFile, prefix string) *SourceMap {
	sm := &SourceMap{prefix: prefix}
	offset := 0

	for _, file := range files {
		sm.sources = append(sm.sources, &Source{
			Name:     file.Name,
			Contents: file.Contents,
			Offset:   offset,
		})
		// One byte gap keeps an end-of-file span inside its own source.
		offset += len(file.Contents) + 1
	}

	return sm
}

func (sm *SourceMap) Sources() []*Source {
	return sm.sources
}

// DisplayName joins the map prefix with the source name.
func (sm *SourceMap) DisplayName(src *Source) string {
	if sm.prefix == "" {
		return src.Name
	}
	return path.Join(sm.prefix, src.Name)
}

// Find returns the source whose range contains offset.
func (sm *SourceMap) Find(offset int) (*Source, bool) {
	if offset < 0 || len(sm.sources) == 0 {
		return nil, false
	}

	idx := sort.Search(len(sm.sources), func(i int) bool {
		return sm.sources[i].Offset > offset
	}) - 1

	if idx < 0 {
		return nil, false
	}

	src := sm.sources[idx]
	if offset > src.Offset+len(src.Contents) {
		return nil, false
	}

	return src, true
}

// FindByDiagnostic resolves an engine error to the source it points into.
// Errors without a span never resolve.
func (sm *SourceMap) FindByDiagnostic(err *Error) (*Source, bool) {
	if err == nil || !err.HasSpan() {
		return nil, false
	}
	return sm.Find(err.Span.Lo)
}

// Position converts an absolute offset into a 1-based line and column.
func (src *Source) Position(offset int) (line, column int) {
	local := offset - src.Offset
	if local < 0 {
		local = 0
	}
	if local > len(src.Contents) {
		local = len(src.Contents)
	}

	prefix := src.Contents[:local]
	line = strings.Count(prefix, "\n") + 1
	column = local - strings.LastIndex(prefix, "\n")

	return line, column
}
