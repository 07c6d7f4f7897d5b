package rowan

import (
	"fmt"
	"log"
)

// LoadStatus is the per-file processing state reported to the host.
type LoadStatus int

const (
	// StatusUnknown: the file was never submitted.
	StatusUnknown LoadStatus = iota
	// StatusPending: submitted, waiting for its imports to process.
	StatusPending
	// StatusProcessed: definitions exported, commands and scenes extracted.
	StatusProcessed
	// StatusFailed: parse, resolution, or dependency failure; retried only
	// when the file's content is submitted again.
	StatusFailed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessed:
		return "processed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PreprocessedFile is a parsed document waiting on its imports.
type PreprocessedFile struct {
	File string
	Doc  *Document
}

// ProcessedFile is a fully promoted document: its exported definition
// tables, merged from its dependencies and its own #defs, ready for
// consumption by dependents and by extraction.
type ProcessedFile struct {
	File    string
	Doc     *Document
	Imports []ImportEntry
	Consts  *ConstantsBuffer
	Specs   *SpecsMap
	Macros  *SceneMacrosMap
}

// resolver returns a resolver over the file's merged tables.
func (p *ProcessedFile) resolver(templates bool) *resolver {
	return &resolver{file: p.File, consts: p.Consts, specs: p.Specs, templates: templates}
}

// importFiles resolves the file's import keys to files.
func (p *ProcessedFile) importFiles(manifest *ManifestMap) []string {
	var out []string
	for _, imp := range p.Imports {
		if f, ok := manifest.File(imp.Key); ok {
			out = append(out, f)
		}
	}
	return out
}

// DocumentCache drives files from raw text to processed definition tables.
// Files queue as preprocessed until every import is processed, then promote
// in a fix-point loop; an unproductive full pass means the remainder has a
// cycle or a missing import and is discarded with a diagnostic per file.
type DocumentCache struct {
	manifest     *ManifestMap
	preprocessed []*PreprocessedFile
	processed    map[string]*ProcessedFile
	status       map[string]LoadStatus
}

func NewDocumentCache(manifest *ManifestMap) *DocumentCache {
	return &DocumentCache{
		manifest:  manifest,
		processed: make(map[string]*ProcessedFile),
		status:    make(map[string]LoadStatus),
	}
}

// Status returns a file's current load state.
func (c *DocumentCache) Status(file string) LoadStatus {
	return c.status[file]
}

// Progress counts files by state.
func (c *DocumentCache) Progress() (pending, processed, failed int) {
	for _, s := range c.status {
		switch s {
		case StatusPending:
			pending++
		case StatusProcessed:
			processed++
		case StatusFailed:
			failed++
		}
	}
	return pending, processed, failed
}

// Processed returns a promoted file's tables.
func (c *DocumentCache) Processed(file string) (*ProcessedFile, bool) {
	p, ok := c.processed[file]
	return p, ok
}

// AddRaw submits one file's source text. The document is parsed, its
// manifest entries registered, and the file queued for promotion. If the
// file was already processed, every processed dependent is demoted so the
// whole affected subgraph reprocesses with the new definitions.
func (c *DocumentCache) AddRaw(file, src string) error {
	doc, err := Parse(file, src)
	if err != nil {
		log.Printf("rowan: failed to load %s: %v", file, err)
		c.status[file] = StatusFailed
		return err
	}

	for _, e := range doc.ManifestEntries() {
		target := e.SourceFile()
		if e.IsSelf() {
			target = file
		}
		c.manifest.Insert(e.Key, target)
	}

	c.demote(file)
	c.enqueue(&PreprocessedFile{File: file, Doc: doc})
	return nil
}

// enqueue replaces any queued entry for the same file.
func (c *DocumentCache) enqueue(pre *PreprocessedFile) {
	for i, p := range c.preprocessed {
		if p.File == pre.File {
			c.preprocessed[i] = pre
			c.status[pre.File] = StatusPending
			return
		}
	}
	c.preprocessed = append(c.preprocessed, pre)
	c.status[pre.File] = StatusPending
}

// demote pushes a processed file back to the queue along with, transitively,
// every processed file that imports it, so dependents re-merge its exports.
func (c *DocumentCache) demote(file string) {
	pf, ok := c.processed[file]
	if !ok {
		return
	}
	delete(c.processed, file)
	if pf.Doc != nil {
		c.enqueue(&PreprocessedFile{File: pf.File, Doc: pf.Doc})
	}
	for depFile, dep := range c.processed {
		for _, imp := range dep.importFiles(c.manifest) {
			if imp == file {
				c.demote(depFile)
				break
			}
		}
	}
}

// extractFunc runs command and scene extraction for one promoted file.
type extractFunc func(*ProcessedFile)

// Process runs the promotion fix-point: each pass promotes every queued file
// whose imports are all processed, until a pass promotes none. Files still
// queued after an unproductive pass are discarded as failed, one diagnostic
// each; they are retried only on their next AddRaw.
func (c *DocumentCache) Process(extract extractFunc) {
	for {
		progressed := false
		kept := c.preprocessed[:0]
		for _, pre := range c.preprocessed {
			if !c.importsSatisfied(pre.Doc) {
				kept = append(kept, pre)
				continue
			}
			progressed = true
			pf, err := c.promote(pre)
			if err != nil {
				log.Printf("rowan: failed to process %s: %v", pre.File, err)
				c.status[pre.File] = StatusFailed
				continue
			}
			c.processed[pre.File] = pf
			c.status[pre.File] = StatusProcessed
			if extract != nil {
				extract(pf)
			}
		}
		c.preprocessed = kept
		if !progressed {
			break
		}
	}

	for _, pre := range c.preprocessed {
		log.Printf("rowan: discarding %s: %s", pre.File, c.stallReason(pre.Doc))
		c.status[pre.File] = StatusFailed
	}
	c.preprocessed = c.preprocessed[:0]
}

func (c *DocumentCache) importsSatisfied(doc *Document) bool {
	for _, imp := range doc.ImportEntries() {
		f, ok := c.manifest.File(imp.Key)
		if !ok {
			return false
		}
		if _, ok := c.processed[f]; !ok {
			return false
		}
	}
	return true
}

// stallReason names the import that kept a discarded file from promoting.
func (c *DocumentCache) stallReason(doc *Document) string {
	for _, imp := range doc.ImportEntries() {
		f, ok := c.manifest.File(imp.Key)
		if !ok {
			return fmt.Sprintf("manifest key %s is not registered", imp.Key)
		}
		if _, ok := c.processed[f]; !ok {
			return fmt.Sprintf("import %s (%s) never processed (cycle or failed dependency)", imp.Key, f)
		}
	}
	return "unresolved dependency"
}

// promote merges dependency exports and the file's own #defs into fresh
// tables. Definitions resolve in declaration order, so later defs may use
// earlier ones. The parsed document is never mutated; promotion works on
// clones so hot reload can re-promote from the same parse.
func (c *DocumentCache) promote(pre *PreprocessedFile) (*ProcessedFile, error) {
	pf := &ProcessedFile{
		File:    pre.File,
		Doc:     pre.Doc,
		Imports: pre.Doc.ImportEntries(),
		Consts:  NewConstantsBuffer(),
		Specs:   NewSpecsMap(),
		Macros:  NewSceneMacrosMap(),
	}
	for _, imp := range pf.Imports {
		f, _ := c.manifest.File(imp.Key)
		dep := c.processed[f]
		pf.Consts.AddFrom(imp.Alias, dep.Consts)
		pf.Specs.AddFrom(imp.Alias, dep.Specs)
		pf.Macros.AddFrom(imp.Alias, dep.Macros)
	}

	for _, def := range pre.Doc.DefEntries() {
		switch d := def.(type) {
		case *ConstantDef:
			v, err := pf.resolver(false).resolveValue(d.Value.Clone())
			if err != nil {
				return nil, fmt.Errorf("in constant $%s: %w", d.Name, err)
			}
			pf.Consts.Set(d.Name, v)
		case *SpecDef:
			body, err := pf.resolver(true).resolveValue(d.Body.Clone())
			if err != nil {
				return nil, fmt.Errorf("in spec *%s: %w", d.Name, err)
			}
			resolved := *d
			resolved.Body = body.(*Map)
			if err := pf.Specs.AddDef(&resolved); err != nil {
				return nil, err
			}
		case *SceneMacroDef:
			if err := pf.Macros.AddDef(d, pf.resolver(false)); err != nil {
				return nil, err
			}
		}
	}
	return pf, nil
}
